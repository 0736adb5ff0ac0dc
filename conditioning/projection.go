package conditioning

// projection hard-enforces measurement consistency by delegating to the
// operator's Projector capability.
//
// Required: XT, NoisyMeasurement. Norm is always 0.
type projection struct{ base }

// Kind reports Projection.
func (projection) Kind() Kind { return Projection }

// Conditioning returns operator.Project(x_t, noisy_measurement) with norm 0.
func (m projection) Conditioning(req Request) (Result, error) {
	if req.XT == nil {
		return Result{}, missing("x_t")
	}
	if req.NoisyMeasurement == nil {
		return Result{}, missing("noisy_measurement")
	}

	state, err := m.Project(req.XT, req.NoisyMeasurement)
	if err != nil {
		return Result{}, err
	}

	return Result{State: state, Norm: 0}, nil
}

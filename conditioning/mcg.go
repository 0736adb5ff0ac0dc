package conditioning

// manifoldConstraint is the manifold-constrained-gradient method: a guided
// gradient step on the residual norm followed by a hard projection back onto
// the noisy measurement.
//
// Required: XPrev, XT, X0Hat, Measurement, NoisyMeasurement, Denoise.
type manifoldConstraint struct{ base }

// Kind reports ManifoldConstraintGradient.
func (manifoldConstraint) Kind() Kind { return ManifoldConstraintGradient }

// Conditioning applies x_t ← project(x_t − scale·∇norm, noisy_measurement).
func (m manifoldConstraint) Conditioning(req Request) (Result, error) {
	switch {
	case req.XPrev == nil:
		return Result{}, missing("x_prev")
	case req.XT == nil:
		return Result{}, missing("x_t")
	case req.X0Hat == nil:
		return Result{}, missing("x_0_hat")
	case req.Measurement == nil:
		return Result{}, missing("measurement")
	case req.NoisyMeasurement == nil:
		return Result{}, missing("noisy_measurement")
	case req.Denoise == nil:
		return Result{}, missing("denoise")
	}

	g, norm, err := m.GradientAndValue(req.XPrev, req.Denoise, req.X0Hat, req.Measurement)
	if err != nil {
		return Result{}, err
	}

	state, err := m.Project(m.guidedStep(req.XT, g), req.NoisyMeasurement)
	if err != nil {
		return Result{}, err
	}

	return Result{State: state, Norm: norm}, nil
}

package conditioning

// posteriorSampling is diffusion posterior sampling (DPS): one gradient step
// on the measurement-residual norm, scaled by the configured factor.
//
// Required: XPrev, XT, X0Hat, Measurement, Denoise.
type posteriorSampling struct{ base }

// Kind reports PosteriorSampling.
func (posteriorSampling) Kind() Kind { return PosteriorSampling }

// Conditioning applies x_t ← x_t − scale·∇norm.
func (m posteriorSampling) Conditioning(req Request) (Result, error) {
	switch {
	case req.XPrev == nil:
		return Result{}, missing("x_prev")
	case req.XT == nil:
		return Result{}, missing("x_t")
	case req.X0Hat == nil:
		return Result{}, missing("x_0_hat")
	case req.Measurement == nil:
		return Result{}, missing("measurement")
	case req.Denoise == nil:
		return Result{}, missing("denoise")
	}

	g, norm, err := m.GradientAndValue(req.XPrev, req.Denoise, req.X0Hat, req.Measurement)
	if err != nil {
		return Result{}, err
	}

	return Result{State: m.guidedStep(req.XT, g), Norm: norm}, nil
}

package conditioning

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// defaultPerturbSeed is the fixed seed used when a Request carries no Rand.
// Arbitrary but stable: calls without an explicit source stay reproducible.
const defaultPerturbSeed int64 = 1

// posteriorSamplingPlus is the stochastic DPS variant: the residual norm is
// averaged over numSampling uniformly perturbed clean estimates before the
// gradient step. The perturbations are drawn once per call, then held fixed
// through differentiation.
//
// Required: XPrev, XT, X0Hat, Measurement, Denoise. Optional: Rand.
type posteriorSamplingPlus struct{ base }

// Kind reports PosteriorSamplingPlus.
func (posteriorSamplingPlus) Kind() Kind { return PosteriorSamplingPlus }

// Conditioning applies x_t ← x_t − scale·∇avgNorm, where
// avgNorm(x0) = mean_k ‖measurement − A(x0 + perturbation·U_k)‖₂ and each
// U_k is a fixed standard-uniform draw.
func (m posteriorSamplingPlus) Conditioning(req Request) (Result, error) {
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

	rng := req.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(defaultPerturbSeed))
	}

	perturbs := make([][]float64, m.numSampling)
	for k := range perturbs {
		p := make([]float64, len(req.X0Hat))
		for i := range p {
			p[i] = m.perturbation * rng.Float64()
		}
		perturbs[k] = p
	}

	avgNorm := func(x0 []float64) float64 {
		shifted := make([]float64, len(x0))
		var sum float64
		for _, p := range perturbs {
			floats.AddTo(shifted, x0, p)
			sum += floats.Distance(req.Measurement, m.op.Forward(shifted), 2)
		}

		return sum / float64(len(perturbs))
	}

	norm := avgNorm(req.X0Hat)

	g, err := m.engine.Gradient(func(x []float64) float64 {
		return avgNorm(req.Denoise(x))
	}, req.XPrev)
	if err != nil {
		return Result{}, err
	}

	return Result{State: m.guidedStep(req.XT, g), Norm: norm}, nil
}

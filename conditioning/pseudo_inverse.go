package conditioning

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/bd3dowling/diffusionlib/grad"
)

// pigPrecondition derives the scalar preconditioner shared by the
// pseudo-inverse-guided variants:
//
//	r = v·scale/(v+scale)
//	C = 1 + noiseStd²/r
//
// The moment ratio r is always derived here; a caller cannot override it
// (the original surface accepted one and immediately discarded it).
func pigPrecondition(v, scale, noiseStd float64) float64 {
	r := v * scale / (v + scale)

	return 1 + noiseStd*noiseStd/r
}

// linearizeEstimate runs one combined forward+backward pass over
// x_t ↦ operator.Forward(estimate(x_t)), yielding h = A(x0(x_t)) and its
// vector-Jacobian pullback simultaneously.
func (b base) linearizeEstimate(xt []float64, estimate grad.VectorFunc) ([]float64, grad.VJPFunc, error) {
	return b.engine.Linearize(func(x []float64) []float64 {
		return b.op.Forward(estimate(x))
	}, xt)
}

// pseudoInverseGuided is ΠGDM-style guidance: the measurement residual is
// scaled by the pseudo-inverse preconditioner and pulled back through the
// denoiser-operator composition. The correction is returned unapplied —
// the sampling loop adds it to X0 itself.
//
// Required: XT, Measurement, EstimateX0, V (positive). Gaussian only.
type pseudoInverseGuided struct{ base }

// Kind reports PseudoInverseGuided.
func (pseudoInverseGuided) Kind() Kind { return PseudoInverseGuided }

// Conditioning returns (x0, eps, ls, norm) with ls = VJP((y−h)/C).
func (m pseudoInverseGuided) Conditioning(req Request) (Result, error) {
	switch {
	case req.XT == nil:
		return Result{}, missing("x_t")
	case req.Measurement == nil:
		return Result{}, missing("measurement")
	case req.EstimateX0 == nil:
		return Result{}, missing("estimate_x_0")
	case req.V == 0:
		return Result{}, missing("v")
	case req.V < 0:
		return Result{}, invalid("v")
	}
	if kind := m.noiser.Kind(); kind != Gaussian {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedLikelihood, kind)
	}

	h, vjp, err := m.linearizeEstimate(req.XT, func(x []float64) []float64 {
		x0, _ := req.EstimateX0(x)
		return x0
	})
	if err != nil {
		return Result{}, err
	}
	x0, eps := req.EstimateX0(req.XT)

	c := pigPrecondition(req.V, m.scale, req.NoiseStd)

	diff := make([]float64, len(req.Measurement))
	floats.SubTo(diff, req.Measurement, h)
	norm := floats.Norm(diff, 2)

	seed := cloneSlice(diff)
	floats.Scale(1/c, seed)

	return Result{
		X0:         cloneSlice(x0),
		Eps:        cloneSlice(eps),
		Correction: vjp(seed),
		Norm:       norm,
	}, nil
}

// altPseudoInverseGuided is the numerically steadier ΠGDM rendition: same
// preconditioner, but the estimator returns only x0 and the correction is
// folded into it before returning.
//
// Required: XT, Measurement, Denoise, V (positive). Gaussian only.
type altPseudoInverseGuided struct{ base }

// Kind reports AltPseudoInverseGuided.
func (altPseudoInverseGuided) Kind() Kind { return AltPseudoInverseGuided }

// Conditioning returns (x0 + ls, norm) with ls = VJP((y−h)/C).
func (m altPseudoInverseGuided) Conditioning(req Request) (Result, error) {
	switch {
	case req.XT == nil:
		return Result{}, missing("x_t")
	case req.Measurement == nil:
		return Result{}, missing("measurement")
	case req.Denoise == nil:
		return Result{}, missing("denoise")
	case req.V == 0:
		return Result{}, missing("v")
	case req.V < 0:
		return Result{}, invalid("v")
	}
	if kind := m.noiser.Kind(); kind != Gaussian {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedLikelihood, kind)
	}

	h, vjp, err := m.linearizeEstimate(req.XT, req.Denoise)
	if err != nil {
		return Result{}, err
	}

	c := pigPrecondition(req.V, m.scale, req.NoiseStd)

	diff := make([]float64, len(req.Measurement))
	floats.SubTo(diff, req.Measurement, h)
	norm := floats.Norm(diff, 2)

	seed := cloneSlice(diff)
	floats.Scale(1/c, seed)

	x0 := cloneSlice(req.Denoise(req.XT))
	floats.Add(x0, vjp(seed))

	return Result{X0: x0, Norm: norm}, nil
}

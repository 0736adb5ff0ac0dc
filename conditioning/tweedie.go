package conditioning

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// tweedieMomentProjection preconditions the residual with an
// operator-consistent variance estimate instead of the scalar C used by the
// pseudo-inverse variants:
//
//	C = A(VJP(A(1))) + noiseStd²/r   (elementwise over measurement space)
//	ls = VJP((y − h)/C)
//
// The correction ls is applied to x0 before returning: TMP exposes only
// (x0, norm), so an unapplied correction would be unreachable and the
// method would degenerate to unconditional sampling.
//
// Required: XT, Measurement, Denoise, R (positive). Gaussian only.
type tweedieMomentProjection struct{ base }

// Kind reports TweedieMomentProjection.
func (tweedieMomentProjection) Kind() Kind { return TweedieMomentProjection }

// Conditioning returns (x0 + ls, norm).
func (m tweedieMomentProjection) Conditioning(req Request) (Result, error) {
	switch {
	case req.XT == nil:
		return Result{}, missing("x_t")
	case req.Measurement == nil:
		return Result{}, missing("measurement")
	case req.Denoise == nil:
		return Result{}, missing("denoise")
	case req.R == 0:
		return Result{}, missing("r")
	case req.R < 0:
		return Result{}, invalid("r")
	}
	if kind := m.noiser.Kind(); kind != Gaussian {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedLikelihood, kind)
	}

	h, vjp, err := m.linearizeEstimate(req.XT, req.Denoise)
	if err != nil {
		return Result{}, err
	}

	x0 := cloneSlice(req.Denoise(req.XT))

	ones := make([]float64, len(x0))
	for i := range ones {
		ones[i] = 1
	}
	cvec := cloneSlice(m.op.Forward(vjp(m.op.Forward(ones))))
	shift := req.NoiseStd * req.NoiseStd / req.R
	for i := range cvec {
		cvec[i] += shift
	}

	diff := make([]float64, len(req.Measurement))
	floats.SubTo(diff, req.Measurement, h)
	norm := floats.Norm(diff, 2)

	seed := make([]float64, len(diff))
	floats.DivTo(seed, diff, cvec)

	floats.Add(x0, vjp(seed))

	return Result{X0: x0, Norm: norm}, nil
}

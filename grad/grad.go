package grad

import (
	"errors"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNilFunc is returned when a nil function is handed to the engine.
	ErrNilFunc = errors.New("grad: nil function")

	// ErrEmptyPoint is returned when the evaluation point has zero length.
	ErrEmptyPoint = errors.New("grad: empty evaluation point")

	// ErrEmptyOutput is returned when the vector function produces no output.
	ErrEmptyOutput = errors.New("grad: vector function produced empty output")
)

// ScalarFunc maps a latent state to a scalar loss.
type ScalarFunc func(x []float64) float64

// VectorFunc maps a latent state to a vector (e.g. operator ∘ denoiser).
type VectorFunc func(x []float64) []float64

// VJPFunc pulls a seed vector back through a linearized VectorFunc,
// returning seedᵀ·J evaluated at the linearization point.
type VJPFunc func(seed []float64) []float64

// Engine computes gradients and vector-Jacobian products over latent states.
// Implementations must be pure: same inputs, same outputs, no retained state.
type Engine interface {
	// Gradient returns ∇f(x). The input slice is not mutated on return.
	Gradient(f ScalarFunc, x []float64) ([]float64, error)

	// Linearize evaluates f at x and returns its value together with a
	// pullback computing vector-Jacobian products at x. Value and pullback
	// come from one combined pass; the returned VJPFunc never re-evaluates f
	// beyond that linearization.
	Linearize(f VectorFunc, x []float64) ([]float64, VJPFunc, error)
}

// FD is the finite-difference Engine backed by gonum's diff/fd, using
// central differences. It is the default backend for conditioning methods.
type FD struct {
	step float64
}

// FDOption customizes an FD engine.
type FDOption func(*FD)

// WithStep overrides the finite-difference step size. Non-positive values
// keep the formula's default step.
func WithStep(step float64) FDOption {
	return func(e *FD) { e.step = step }
}

// NewFD returns a central-difference engine with the formula's default step.
func NewFD(opts ...FDOption) *FD {
	e := &FD{}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Gradient approximates ∇f(x) with central differences.
func (e *FD) Gradient(f ScalarFunc, x []float64) ([]float64, error) {
	if f == nil {
		return nil, ErrNilFunc
	}
	if len(x) == 0 {
		return nil, ErrEmptyPoint
	}

	// fd perturbs the point in place and restores it; work on a copy so the
	// caller's slice is untouched even if f panics mid-evaluation.
	pt := make([]float64, len(x))
	copy(pt, x)

	dst := make([]float64, len(x))
	fd.Gradient(dst, f, pt, &fd.Settings{Formula: fd.Central, Step: e.step})

	return dst, nil
}

// Linearize evaluates f at x and builds its Jacobian once; the returned
// pullback multiplies seeds against the transposed Jacobian.
func (e *FD) Linearize(f VectorFunc, x []float64) ([]float64, VJPFunc, error) {
	if f == nil {
		return nil, nil, ErrNilFunc
	}
	if len(x) == 0 {
		return nil, nil, ErrEmptyPoint
	}

	pt := make([]float64, len(x))
	copy(pt, x)

	y := f(pt)
	if len(y) == 0 {
		return nil, nil, ErrEmptyOutput
	}
	val := make([]float64, len(y))
	copy(val, y)

	jac := mat.NewDense(len(y), len(x), nil)
	fd.Jacobian(jac, func(dst, xx []float64) {
		copy(dst, f(xx))
	}, pt, &fd.JacobianSettings{
		Formula:     fd.Central,
		Step:        e.step,
		OriginValue: val,
	})

	vjp := func(seed []float64) []float64 {
		out := mat.NewVecDense(len(x), nil)
		out.MulVec(jac.T(), mat.NewVecDense(len(val), seed))

		return out.RawVector().Data
	}

	return val, vjp, nil
}

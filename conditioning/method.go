package conditioning

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/bd3dowling/diffusionlib/grad"
	"github.com/bd3dowling/diffusionlib/registry"
)

// Method is a conditioning strategy: immutable after construction, stateless
// across calls. Conditioning computes the variant-specific correction for
// its required Request subset; Project and GradientAndValue expose the
// shared building blocks for callers that compose their own loops.
type Method interface {
	// Kind identifies the variant.
	Kind() Kind

	// Project delegates to the operator's projection capability
	// (ErrNotProjectable when the operator lacks it).
	Project(data, noisyMeasurement []float64) ([]float64, error)

	// GradientAndValue returns the residual norm at x0Hat and its gradient
	// with respect to xPrev through denoise, under the noiser's likelihood.
	GradientAndValue(xPrev []float64, denoise grad.VectorFunc, x0Hat, measurement []float64) ([]float64, float64, error)

	// Conditioning applies the variant's update rule. Inputs are never
	// mutated; returned slices are freshly allocated.
	Conditioning(req Request) (Result, error)
}

// Factory builds a Method over an operator and a noiser.
type Factory func(op Operator, noiser Noiser, opts ...Option) (Method, error)

// New constructs the requested conditioning method.
//
// Contracts:
//   - op and noiser must be non-nil.
//   - Projection and ManifoldConstraintGradient require op to implement
//     Projector (ErrNotProjectable otherwise).
//   - kind must be a member of the closed enumeration (ErrUnknownKind).
func New(kind Kind, op Operator, noiser Noiser, opts ...Option) (Method, error) {
	if op == nil {
		return nil, ErrNilOperator
	}
	if noiser == nil {
		return nil, ErrNilNoiser
	}

	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	b := base{op: op, noiser: noiser, settings: cfg}

	switch kind {
	case Vanilla:
		return vanilla{b}, nil
	case Projection:
		if _, ok := op.(Projector); !ok {
			return nil, ErrNotProjectable
		}
		return projection{b}, nil
	case ManifoldConstraintGradient:
		if _, ok := op.(Projector); !ok {
			return nil, ErrNotProjectable
		}
		return manifoldConstraint{b}, nil
	case PosteriorSampling:
		return posteriorSampling{b}, nil
	case PosteriorSamplingPlus:
		return posteriorSamplingPlus{b}, nil
	case PseudoInverseGuided:
		return pseudoInverseGuided{b}, nil
	case AltPseudoInverseGuided:
		return altPseudoInverseGuided{b}, nil
	case TweedieMomentProjection:
		return tweedieMomentProjection{b}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
}

// NewRegistry returns a registry pre-populated with every builtin variant,
// keyed by Kind.String(). Population happens here, once, explicitly; there
// is no package-level table.
func NewRegistry() *registry.Registry[Factory] {
	reg := registry.New[Factory]()
	for _, kind := range Kinds() {
		k := kind
		// Names come from the closed enum, so collisions cannot happen.
		_ = reg.Register(k.String(), func(op Operator, noiser Noiser, opts ...Option) (Method, error) {
			return New(k, op, noiser, opts...)
		})
	}

	return reg
}

// Get resolves name in reg and constructs the method with the supplied
// collaborators. Unknown names fail with registry.ErrUnknownName.
func Get(reg *registry.Registry[Factory], name string, op Operator, noiser Noiser, opts ...Option) (Method, error) {
	factory, err := reg.Get(name)
	if err != nil {
		return nil, err
	}

	return factory(op, noiser, opts...)
}

// base carries the collaborators and hyperparameters shared by all variants.
type base struct {
	op     Operator
	noiser Noiser
	settings
}

// missing wraps ErrMissingArgument with the offending field name.
func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingArgument, field)
}

// invalid wraps ErrInvalidArgument with the offending field name.
func invalid(field string) error {
	return fmt.Errorf("%w: %s must be positive", ErrInvalidArgument, field)
}

func cloneSlice(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)

	return out
}

// Project delegates to the operator's projection capability.
func (b base) Project(data, noisyMeasurement []float64) ([]float64, error) {
	p, ok := b.op.(Projector)
	if !ok {
		return nil, ErrNotProjectable
	}

	return p.Project(data, noisyMeasurement), nil
}

// normFunc returns the residual-norm formula selected by the likelihood tag:
//
//	gaussian: ‖y − A(x0)‖₂
//	poisson:  mean_i( ‖y − A(x0)‖₂ / |yᵢ| )
//
// Any other tag fails with ErrUnsupportedLikelihood.
func (b base) normFunc(measurement []float64) (func(x0 []float64) float64, error) {
	switch kind := b.noiser.Kind(); kind {
	case Gaussian:
		return func(x0 []float64) float64 {
			return floats.Distance(measurement, b.op.Forward(x0), 2)
		}, nil
	case Poisson:
		return func(x0 []float64) float64 {
			n := floats.Distance(measurement, b.op.Forward(x0), 2)
			var sum float64
			for _, y := range measurement {
				sum += n / math.Abs(y)
			}

			return sum / float64(len(measurement))
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLikelihood, kind)
	}
}

// GradientAndValue computes the residual norm at x0Hat and its gradient with
// respect to xPrev, differentiating through denoise (x_prev ↦ x0_hat).
func (b base) GradientAndValue(xPrev []float64, denoise grad.VectorFunc, x0Hat, measurement []float64) ([]float64, float64, error) {
	normAt, err := b.normFunc(measurement)
	if err != nil {
		return nil, 0, err
	}
	norm := normAt(x0Hat)

	g, err := b.engine.Gradient(func(x []float64) float64 {
		return normAt(denoise(x))
	}, xPrev)
	if err != nil {
		return nil, 0, err
	}

	return g, norm, nil
}

// guidedStep returns x_t − scale·grad on a fresh slice. A zero scale skips
// the update so the state stays bit-identical regardless of the gradient.
func (b base) guidedStep(xt, g []float64) []float64 {
	out := cloneSlice(xt)
	if b.scale != 0 {
		floats.AddScaled(out, -b.scale, g)
	}

	return out
}

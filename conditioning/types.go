package conditioning

import (
	"errors"
	"math/rand"

	"github.com/bd3dowling/diffusionlib/grad"
)

// Sentinel errors. Tests match these via errors.Is; wrapping adds the field
// or tag that triggered them.
var (
	// ErrUnsupportedLikelihood signals a likelihood family no norm/gradient
	// formula exists for. Never retried: there is no numeric fallback.
	ErrUnsupportedLikelihood = errors.New("conditioning: unsupported likelihood")

	// ErrMissingArgument signals a variant was called without an argument its
	// update rule requires (caller contract violation).
	ErrMissingArgument = errors.New("conditioning: missing required argument")

	// ErrInvalidArgument signals a supplied argument whose value is outside
	// the variant's domain, such as a negative variance-like scalar.
	ErrInvalidArgument = errors.New("conditioning: invalid argument value")

	// ErrNotProjectable signals a projection-style variant was built over an
	// operator that does not implement Projector.
	ErrNotProjectable = errors.New("conditioning: operator does not support projection")

	// ErrNilOperator signals a nil operator at construction.
	ErrNilOperator = errors.New("conditioning: nil operator")

	// ErrNilNoiser signals a nil noiser at construction.
	ErrNilNoiser = errors.New("conditioning: nil noiser")

	// ErrUnknownKind signals a Kind value outside the closed enumeration.
	ErrUnknownKind = errors.New("conditioning: unknown method kind")
)

// Likelihood is the closed measurement-likelihood enumeration. Conditioning
// methods branch on it exhaustively; anything else is ErrUnsupportedLikelihood.
type Likelihood int

const (
	// Gaussian likelihood: residual norm is the plain Euclidean distance.
	Gaussian Likelihood = iota

	// Poisson likelihood: residual norm is normalized elementwise by the
	// measurement magnitude before mean reduction.
	Poisson
)

// String returns the canonical lowercase tag for the likelihood.
func (l Likelihood) String() string {
	switch l {
	case Gaussian:
		return "gaussian"
	case Poisson:
		return "poisson"
	default:
		return "unknown"
	}
}

// Noiser identifies the measurement likelihood family. It is an external
// capability; this package only consumes the discriminator.
type Noiser interface {
	Kind() Likelihood
}

// Operator models the physical forward/measurement process y = A(x).
// Implementations live outside this library.
type Operator interface {
	Forward(x []float64) []float64
}

// Projector is the optional projection capability some operators carry,
// hard-enforcing measurement consistency. Projection-style variants require
// their operator to implement it.
type Projector interface {
	Project(data, measurement []float64) []float64
}

// Kind is the closed conditioning-method enumeration.
type Kind int

const (
	// Vanilla passes the state through untouched.
	Vanilla Kind = iota

	// Projection hard-projects the state onto the noisy measurement.
	Projection

	// ManifoldConstraintGradient takes a gradient step then projects.
	ManifoldConstraintGradient

	// PosteriorSampling takes a gradient step on the residual norm.
	PosteriorSampling

	// PosteriorSamplingPlus averages the residual over stochastic draws
	// before differentiating.
	PosteriorSamplingPlus

	// PseudoInverseGuided computes a VJP-preconditioned correction and
	// leaves applying it to the caller.
	PseudoInverseGuided

	// AltPseudoInverseGuided applies the same correction to x0 internally.
	AltPseudoInverseGuided

	// TweedieMomentProjection preconditions with an operator-consistent
	// variance estimate instead of a scalar.
	TweedieMomentProjection
)

// String returns the registry name of the kind.
func (k Kind) String() string {
	switch k {
	case Vanilla:
		return "vanilla"
	case Projection:
		return "projection"
	case ManifoldConstraintGradient:
		return "mcg"
	case PosteriorSampling:
		return "ps"
	case PosteriorSamplingPlus:
		return "ps+"
	case PseudoInverseGuided:
		return "pig"
	case AltPseudoInverseGuided:
		return "altpig"
	case TweedieMomentProjection:
		return "tmp"
	default:
		return "unknown"
	}
}

// Kinds lists every member of the closed enumeration in declaration order.
func Kinds() []Kind {
	return []Kind{
		Vanilla,
		Projection,
		ManifoldConstraintGradient,
		PosteriorSampling,
		PosteriorSamplingPlus,
		PseudoInverseGuided,
		AltPseudoInverseGuided,
		TweedieMomentProjection,
	}
}

// EstimateFunc maps a latent state to a clean estimate and the predicted
// noise (PseudoInverseGuided consumes both outputs).
type EstimateFunc func(x []float64) (x0, eps []float64)

// Request carries the per-call arguments of Conditioning. Each variant
// requires its own subset (documented on the variant); a missing required
// field fails with ErrMissingArgument. Scalar fields R and V must be
// positive where a variant consumes them: zero reads as absent
// (ErrMissingArgument), a negative value fails with ErrInvalidArgument.
type Request struct {
	// XPrev is the previous latent state; gradients of the residual norm
	// are taken with respect to it, through Denoise.
	XPrev []float64

	// XT is the latent state being corrected.
	XT []float64

	// X0Hat is the denoiser's clean estimate at the current step.
	X0Hat []float64

	// Measurement is the observed tensor conditioning guides toward.
	Measurement []float64

	// NoisyMeasurement is the measurement used by projection steps.
	NoisyMeasurement []float64

	// Denoise maps a latent state to its clean estimate. The gradient
	// variants differentiate through it at XPrev; AltPseudoInverseGuided
	// and TweedieMomentProjection linearize it at XT instead (the one-output
	// counterpart of EstimateX0).
	Denoise grad.VectorFunc

	// EstimateX0 is the two-output estimator used by PseudoInverseGuided.
	EstimateX0 EstimateFunc

	// R is the moment ratio consumed by TweedieMomentProjection.
	R float64

	// V is the posterior variance consumed by the pseudo-inverse variants.
	V float64

	// NoiseStd is the measurement noise standard deviation (may be zero).
	NoiseStd float64

	// Rand drives the stochastic draws of PosteriorSamplingPlus. When nil a
	// fixed-seed source is used so calls stay reproducible.
	Rand *rand.Rand
}

// Result is the outcome of a Conditioning call. Gradient- and
// projection-style variants fill State; the pseudo-inverse family fills X0
// (and, for PseudoInverseGuided, Eps plus the unapplied Correction).
type Result struct {
	// State is the corrected latent state x_t.
	State []float64

	// X0 is the (possibly corrected) clean estimate.
	X0 []float64

	// Eps is the predicted noise returned alongside X0.
	Eps []float64

	// Correction is the preconditioned update ls the caller applies to X0.
	Correction []float64

	// Norm is the scalar measurement-residual value.
	Norm float64
}

// Option customizes method construction.
type Option func(*settings)

type settings struct {
	scale        float64
	numSampling  int
	perturbation float64
	engine       grad.Engine
}

func defaultSettings() settings {
	return settings{
		scale:        1.0,
		numSampling:  5,
		perturbation: 0.05,
		engine:       grad.NewFD(),
	}
}

// WithScale sets the guidance scale factor (default 1.0). Zero disables the
// gradient update entirely while still reporting the residual norm.
func WithScale(scale float64) Option {
	return func(s *settings) { s.scale = scale }
}

// WithNumSampling sets the Monte-Carlo draw count of stochastic variants
// (default 5). Values below 1 are ignored.
func WithNumSampling(n int) Option {
	return func(s *settings) {
		if n >= 1 {
			s.numSampling = n
		}
	}
}

// WithPerturbation sets the uniform-perturbation magnitude of
// PosteriorSamplingPlus (default 0.05). Zero collapses it to plain
// PosteriorSampling behavior.
func WithPerturbation(eps float64) Option {
	return func(s *settings) { s.perturbation = eps }
}

// WithEngine swaps the differentiation backend (default grad.NewFD()).
func WithEngine(e grad.Engine) Option {
	return func(s *settings) {
		if e != nil {
			s.engine = e
		}
	}
}

package smc

import "errors"

// Sentinel errors. Matched with errors.Is; no algorithm in this package
// panics on user-triggered conditions.
var (
	// ErrNilModel indicates a nil state-space model was passed to Run.
	ErrNilModel = errors.New("smc: nil state-space model")

	// ErrNilSampler indicates a nil base sampler was passed to an adapter.
	ErrNilSampler = errors.New("smc: nil base sampler")

	// ErrNoTimesteps indicates the base sampler exposes an empty timestep
	// sequence, leaving the filter nothing to iterate.
	ErrNoTimesteps = errors.New("smc: sampler has no timesteps")

	// ErrBadParticles indicates a non-positive particle count.
	ErrBadParticles = errors.New("smc: particle count must be positive")

	// ErrBadThreshold indicates an ESS threshold outside [0, 1].
	ErrBadThreshold = errors.New("smc: ESS threshold must be in [0,1]")

	// ErrBadStd indicates a non-positive standard deviation.
	ErrBadStd = errors.New("smc: standard deviation must be positive")

	// ErrBadCovariance indicates a covariance that is not positive definite.
	ErrBadCovariance = errors.New("smc: covariance is not positive definite")

	// ErrDimensionMismatch indicates incompatible shapes between the model,
	// the operator matrix, or the data.
	ErrDimensionMismatch = errors.New("smc: dimension mismatch")

	// ErrSingularPrecision indicates the proposal precision could not be
	// inverted.
	ErrSingularPrecision = errors.New("smc: proposal precision is singular")
)

// Options configures a Filter run.
//
// Fields:
//   - Particles    — ensemble size N (default 1000).
//   - ESSThreshold — resample when ESS < ESSThreshold·N (default 0.5).
//     0 disables resampling entirely; 1 resamples every step.
//   - StoreHistory — retain a snapshot of the ensemble at every step.
//   - Seed         — drives all randomness; 0 selects DefaultSeed.
type Options struct {
	Particles    int
	ESSThreshold float64
	StoreHistory bool
	Seed         uint64
}

// DefaultOptions returns the canonical configuration.
func DefaultOptions() Options {
	return Options{
		Particles:    1000,
		ESSThreshold: 0.5,
	}
}

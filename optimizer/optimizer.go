package optimizer

import (
	"errors"

	"golang.org/x/exp/rand"

	"github.com/bd3dowling/diffusionlib/registry"
	"github.com/bd3dowling/diffusionlib/smc"
)

var (
	// ErrNilObjective indicates a nil objective function.
	ErrNilObjective = errors.New("optimizer: nil objective")

	// ErrNilRNG indicates a nil random source; seeding is caller-supplied
	// by contract, so there is no fallback.
	ErrNilRNG = errors.New("optimizer: nil rng")

	// ErrNilSchedule indicates a nil gamma schedule.
	ErrNilSchedule = errors.New("optimizer: nil gamma schedule")
)

// Objective is the scalar function the particle ensemble is steered by.
type Objective func(x []float64) float64

// Optimizer runs a one-shot stateless optimization pass and returns the
// particle ensemble (full history when stackSamples is set).
type Optimizer interface {
	Optimize(rng *rand.Rand, f Objective, stackSamples bool) (*smc.Result, error)
}

// Config carries the constructor arguments shared by optimizer factories.
type Config struct {
	// Sampler is the external base diffusion sampler.
	Sampler smc.PosteriorSampler

	// GammaT is the step-dependent weighting schedule γ(k).
	GammaT func(step int) float64

	// NumParticles is the ensemble size (default 1000 when zero).
	NumParticles int

	// ESSThreshold triggers resampling below this fraction of NumParticles
	// (default 0.5 when zero).
	ESSThreshold float64
}

// Factory builds an Optimizer from a Config.
type Factory func(cfg Config) (Optimizer, error)

// SMCDiffOptName is the registry name of the SMC diffusion optimizer.
const SMCDiffOptName = "smc_diff_opt"

// NewRegistry returns a registry pre-populated with the builtin optimizers.
func NewRegistry() *registry.Registry[Factory] {
	reg := registry.New[Factory]()
	// The builtin name set is closed, so registration cannot collide.
	_ = reg.Register(SMCDiffOptName, func(cfg Config) (Optimizer, error) {
		return NewSMCDiffOpt(cfg)
	})

	return reg
}

// Get resolves name in reg and constructs the optimizer from cfg.
func Get(reg *registry.Registry[Factory], name string, cfg Config) (Optimizer, error) {
	factory, err := reg.Get(name)
	if err != nil {
		return nil, err
	}

	return factory(cfg)
}

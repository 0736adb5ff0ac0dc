package smc

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// PosteriorSampler is the external base sampler: an ordered timestep
// sequence, a batched reverse-posterior query, and the latent
// dimensionality. The sampler runs in reverse (T → 0); adapters handle the
// index flip.
type PosteriorSampler interface {
	// Timesteps returns the sampler's ordered timestep sequence.
	Timesteps() []float64

	// Posterior returns the reverse-transition mean for each row of x at
	// timestep t, plus the scalar standard deviation shared by the batch.
	// The std must be strictly positive; deterministic final steps (a DDIM
	// run with eta=0 reports std 0) cannot drive a stochastic filter and
	// are rejected with ErrBadStd by the adapters.
	Posterior(x *mat.Dense, t float64) (mean *mat.Dense, std float64)

	// Dim is the latent dimensionality.
	Dim() int
}

// StateSpaceModel specifies the latent Markov chain the filter propagates:
// PX0 and PX must together define a proper chain consistent with the base
// sampler's reverse process.
type StateSpaceModel interface {
	// Dim is the state dimensionality.
	Dim() int

	// Steps is the number of filter steps T.
	Steps() int

	// PX0 is the initial distribution (the diffusion prior at the final
	// reverse step).
	PX0() Distribution

	// PX is the transition distribution at filter step t (1-based) given
	// the previous ensemble xp. t must lie in [1, Steps()]. An invalid
	// transition (non-positive posterior std) is an error, never a nil
	// distribution.
	PX(t int, xp *mat.Dense) (Distribution, error)
}

// ObservationModel extends the chain with a measurement density.
type ObservationModel interface {
	StateSpaceModel

	// PY is the distribution of the observation given state ensemble x.
	PY(t int, xp, x *mat.Dense) Distribution
}

// Proposer supplies an importance proposal fusing the transition prior with
// the measurement; the filter corrects weights by prior−proposal.
type Proposer interface {
	// Proposal0 proposes the initial ensemble given the data.
	Proposal0(data []float64) (Distribution, error)

	// Proposal proposes step t given the previous ensemble and the data.
	Proposal(t int, xp *mat.Dense, data []float64) (Distribution, error)
}

// DiffusionSSM adapts a base sampler's reverse transitions into a
// StateSpaceModel. One instance serves one filter run.
type DiffusionSSM struct {
	sampler PosteriorSampler
	ts      []float64
}

// NewDiffusionSSM wraps sampler; it must be non-nil with at least one
// timestep.
func NewDiffusionSSM(sampler PosteriorSampler) (*DiffusionSSM, error) {
	if sampler == nil {
		return nil, ErrNilSampler
	}
	ts := sampler.Timesteps()
	if len(ts) == 0 {
		return nil, ErrNoTimesteps
	}
	if sampler.Dim() <= 0 {
		return nil, ErrDimensionMismatch
	}

	return &DiffusionSSM{sampler: sampler, ts: ts}, nil
}

// Dim returns the latent dimensionality.
func (m *DiffusionSSM) Dim() int { return m.sampler.Dim() }

// Steps returns the filter horizon T = len(ts).
func (m *DiffusionSSM) Steps() int { return len(m.ts) }

// timestep maps filter step t (1-based) to the reverse-diffusion timestep:
// the sampler counts down while the filter counts up, hence ts[len(ts)−t].
func (m *DiffusionSSM) timestep(t int) float64 { return m.ts[len(m.ts)-t] }

// PX0 returns the zero-mean unit Gaussian prior over the latent space.
func (m *DiffusionSSM) PX0() Distribution {
	prior, _ := NewIsoNormal(nil, 1, m.Dim())

	return prior
}

// PX queries the base sampler's posterior at the reversed timestep and
// returns a Gaussian with that batch mean and the batch-shared scalar std.
// A sampler reporting a non-positive std fails with ErrBadStd.
func (m *DiffusionSSM) PX(t int, xp *mat.Dense) (Distribution, error) {
	mean, std := m.sampler.Posterior(xp, m.timestep(t))
	if std <= 0 {
		return nil, fmt.Errorf("%w: posterior std %v at step %d", ErrBadStd, std, t)
	}

	return NewIsoNormal(mean, std, m.Dim())
}

// ObservationSSM extends DiffusionSSM with a linear-Gaussian measurement
// model y = A·x + ε, ε ~ N(0, sigmaY²·I). SigmaY is a standard deviation.
type ObservationSSM struct {
	*DiffusionSSM
	a      *mat.Dense
	sigmaY float64
}

// NewObservationSSM wraps sampler with measurement matrix a (obsDim × dim)
// and noise std sigmaY.
func NewObservationSSM(sampler PosteriorSampler, a *mat.Dense, sigmaY float64) (*ObservationSSM, error) {
	base, err := NewDiffusionSSM(sampler)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrDimensionMismatch
	}
	if _, cols := a.Dims(); cols != base.Dim() {
		return nil, ErrDimensionMismatch
	}
	if sigmaY <= 0 {
		return nil, ErrBadStd
	}

	return &ObservationSSM{DiffusionSSM: base, a: a, sigmaY: sigmaY}, nil
}

// PY returns N(x·Aᵀ, sigmaY²·I) row-wise: the measurement likelihood of
// each particle.
func (m *ObservationSSM) PY(_ int, _, x *mat.Dense) Distribution {
	rows, _ := x.Dims()
	obsDim, _ := m.a.Dims()
	means := mat.NewDense(rows, obsDim, nil)
	means.Mul(x, m.a.T())

	py, _ := NewIsoNormal(means, m.sigmaY, obsDim)

	return py
}

// FPSSSM is the filtering-posterior-sampling model: ObservationSSM plus a
// closed-form Gaussian-conjugate proposal that fuses the transition prior
// with the measurement likelihood, yielding a lower-variance importance
// proposal than blind transition sampling. cT scales the likelihood
// precision per step.
type FPSSSM struct {
	*ObservationSSM
	cT func(t int) float64
}

// NewFPSSSM wraps sampler with the measurement model and the per-step
// likelihood scaling cT.
func NewFPSSSM(sampler PosteriorSampler, a *mat.Dense, sigmaY float64, cT func(t int) float64) (*FPSSSM, error) {
	base, err := NewObservationSSM(sampler, a, sigmaY)
	if err != nil {
		return nil, err
	}
	if cT == nil {
		return nil, ErrDimensionMismatch
	}

	return &FPSSSM{ObservationSSM: base, cT: cT}, nil
}

// Proposal0 falls back to the prior: no state to fuse with yet.
func (m *FPSSSM) Proposal0(_ []float64) (Distribution, error) {
	return m.PX0(), nil
}

// Proposal returns the precision-weighted fusion
//
//	Σ* = inv((1/std)·I + (1/(sigmaY²·c(t)²))·AᵀA)
//	μ*ᵢ = Σ*·((1/std)·meanᵢ + (1/(sigmaY²·c(t)²))·Aᵀ·data)
//
// The scalar std is replicated across the state dimension through the
// (1/std)·I term before entering the proposal covariance.
func (m *FPSSSM) Proposal(t int, xp *mat.Dense, data []float64) (Distribution, error) {
	obsDim, _ := m.a.Dims()
	if len(data) != obsDim {
		return nil, ErrDimensionMismatch
	}

	mean, std := m.sampler.Posterior(xp, m.timestep(t))
	if std <= 0 {
		return nil, fmt.Errorf("%w: posterior std %v at step %d", ErrBadStd, std, t)
	}
	d := m.Dim()

	lam := 1 / (m.sigmaY * m.sigmaY * m.cT(t) * m.cT(t))

	// Precision: (1/std)·I + lam·AᵀA.
	var prec mat.Dense
	prec.Mul(m.a.T(), m.a)
	prec.Scale(lam, &prec)
	for i := 0; i < d; i++ {
		prec.Set(i, i, prec.At(i, i)+1/std)
	}

	var sigmaStar mat.Dense
	if err := sigmaStar.Inverse(&prec); err != nil {
		return nil, ErrSingularPrecision
	}
	// Symmetrize the inverse before handing it to the Gaussian.
	cov := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			cov.SetSym(i, j, 0.5*(sigmaStar.At(i, j)+sigmaStar.At(j, i)))
		}
	}

	// Likelihood pull: lam·Aᵀ·data, shared by every particle.
	pull := mat.NewVecDense(d, nil)
	pull.MulVec(m.a.T(), mat.NewVecDense(obsDim, data))
	pull.ScaleVec(lam, pull)

	rows, _ := xp.Dims()
	means := mat.NewDense(rows, d, nil)
	v := mat.NewVecDense(d, nil)
	mu := mat.NewVecDense(d, nil)
	for i := 0; i < rows; i++ {
		v.ScaleVec(1/std, mat.NewVecDense(d, mean.RawRowView(i)))
		v.AddVec(v, pull)
		mu.MulVec(&sigmaStar, v)
		means.SetRow(i, mu.RawVector().Data)
	}

	return NewRowNormal(means, cov)
}

package smc

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Potential is an optional per-step log-weight increment evaluated on the
// previous and current ensembles. xp is nil at the initial step. The
// returned slice holds one increment per particle.
type Potential func(t int, xp, x *mat.Dense) []float64

// Result is the outcome of a filter run. The ensemble and its history are
// owned exclusively by the caller once returned.
type Result struct {
	// Particles is the final ensemble (N × dim).
	Particles *mat.Dense

	// LogWeights are the final per-particle log weights, normalized so
	// their LogSumExp is zero.
	LogWeights []float64

	// History holds a snapshot of the ensemble at every step when
	// Options.StoreHistory is set; nil otherwise.
	History []*mat.Dense

	// ESS records the effective sample size after each reweighting.
	ESS []float64
}

// Run executes sequential importance resampling over the model's horizon:
// propagate → reweight → normalize → conditionally resample (systematic).
//
// When model implements Proposer and data is non-nil, particles are drawn
// from the proposal with the standard prior−proposal weight correction;
// otherwise they bootstrap from the transition prior. When model implements
// ObservationModel and data is non-nil, the measurement log-likelihood
// joins the weights. potential (may be nil) contributes on top either way.
//
// Contracts:
//   - model non-nil with Steps() ≥ 1 (ErrNilModel / ErrNoTimesteps).
//   - Options validated: Particles ≥ 1, ESSThreshold ∈ [0,1].
//   - Deterministic: all randomness flows from Options.Seed.
//
// Complexity: O(T·N·dim) plus the model's own per-step cost.
func Run(model StateSpaceModel, potential Potential, data []float64, opts Options) (*Result, error) {
	if model == nil {
		return nil, ErrNilModel
	}
	if opts.Particles <= 0 {
		return nil, ErrBadParticles
	}
	if opts.ESSThreshold < 0 || opts.ESSThreshold > 1 {
		return nil, ErrBadThreshold
	}
	steps := model.Steps()
	if steps <= 0 {
		return nil, ErrNoTimesteps
	}

	var (
		n   = opts.Particles
		dim = model.Dim()
		src = NewSource(opts.Seed)
		rng = rand.New(NewSource(DeriveSeed(opts.Seed, 0x9d)))
	)

	proposer, hasProposer := model.(Proposer)
	guided := hasProposer && data != nil
	observer, hasObserver := model.(ObservationModel)
	observed := hasObserver && data != nil

	var dataRow *mat.Dense
	if observed {
		dataRow = mat.NewDense(1, len(data), data)
	}

	x := mat.NewDense(n, dim, nil)
	logW := make([]float64, n)
	weights := make([]float64, n)

	var result Result
	if opts.StoreHistory {
		result.History = make([]*mat.Dense, 0, steps)
	}
	result.ESS = make([]float64, 0, steps)

	// Initial draw (filter step 0).
	if guided {
		q, err := proposer.Proposal0(data)
		if err != nil {
			return nil, err
		}
		q.Sample(src, x)
		floats.Add(logW, model.PX0().LogProb(x))
		floats.Sub(logW, q.LogProb(x))
	} else {
		model.PX0().Sample(src, x)
	}
	if observed {
		floats.Add(logW, observer.PY(0, nil, x).LogProb(dataRow))
	}
	if potential != nil {
		floats.Add(logW, potential(0, nil, x))
	}

	record := func() {
		result.ESS = append(result.ESS, normalizeWeights(logW, weights))
		if opts.StoreHistory {
			result.History = append(result.History, mat.DenseCopyOf(x))
		}
	}
	resampleIfNeeded := func() {
		if result.ESS[len(result.ESS)-1] < opts.ESSThreshold*float64(n) {
			reindex(x, systematic(weights, rng))
			for i := range logW {
				logW[i] = 0
			}
		}
	}

	record()
	resampleIfNeeded()

	next := mat.NewDense(n, dim, nil)
	for t := 1; t < steps; t++ {
		xp := x

		px, err := model.PX(t, xp)
		if err != nil {
			return nil, err
		}
		if guided {
			q, err := proposer.Proposal(t, xp, data)
			if err != nil {
				return nil, err
			}
			q.Sample(src, next)
			floats.Add(logW, px.LogProb(next))
			floats.Sub(logW, q.LogProb(next))
		} else {
			px.Sample(src, next)
		}
		if observed {
			floats.Add(logW, observer.PY(t, xp, next).LogProb(dataRow))
		}
		if potential != nil {
			floats.Add(logW, potential(t, xp, next))
		}

		x, next = next, xp
		record()
		resampleIfNeeded()
	}

	// Renormalize so the reported weights have LogSumExp zero even when the
	// last step resampled.
	normalizeWeights(logW, weights)

	result.Particles = x
	result.LogWeights = logW

	return &result, nil
}

// normalizeWeights shifts logW so its LogSumExp is zero, fills weights with
// the normalized probabilities, and returns the effective sample size
// 1/Σwᵢ².
func normalizeWeights(logW, weights []float64) float64 {
	lse := floats.LogSumExp(logW)
	var sumSq float64
	for i, lw := range logW {
		logW[i] = lw - lse
		weights[i] = math.Exp(logW[i])
		sumSq += weights[i] * weights[i]
	}

	return 1 / sumSq
}

// reindex overwrites the ensemble rows with the resampled index set.
func reindex(x *mat.Dense, idx []int) {
	rows, cols := x.Dims()
	resampled := mat.NewDense(rows, cols, nil)
	for i, j := range idx {
		resampled.SetRow(i, x.RawRowView(j))
	}
	x.Copy(resampled)
}

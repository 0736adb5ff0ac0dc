package smc

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution is a batch distribution over particle ensembles: one row per
// particle. LogProb broadcasts when either side has a single row, which is
// how an observation density with per-particle means is evaluated at one
// shared data vector.
type Distribution interface {
	// Sample draws into dst (rows × dim) and returns it. dst may be nil only
	// when the distribution carries row-shaped means that fix the ensemble
	// size; mean-free distributions need dst to size the draw.
	Sample(src rand.Source, dst *mat.Dense) *mat.Dense

	// LogProb returns the per-row log density of x.
	LogProb(x *mat.Dense) []float64
}

// IsoNormal is an isotropic Gaussian batch: per-row means (nil for zero
// mean) and one scalar standard deviation shared by the whole batch, the
// shape the base sampler's posterior produces.
type IsoNormal struct {
	mean *mat.Dense
	std  float64
	dim  int
}

// NewIsoNormal builds an isotropic batch normal. mean may be nil, in which
// case dim fixes the state dimensionality and draws are zero-centered.
func NewIsoNormal(mean *mat.Dense, std float64, dim int) (*IsoNormal, error) {
	if std <= 0 {
		return nil, ErrBadStd
	}
	if mean != nil {
		_, dim = mean.Dims()
	}
	if dim <= 0 {
		return nil, ErrDimensionMismatch
	}

	return &IsoNormal{mean: mean, std: std, dim: dim}, nil
}

// Mean returns the per-row mean matrix (nil when zero-centered).
func (n *IsoNormal) Mean() *mat.Dense { return n.mean }

// Std returns the shared scalar standard deviation.
func (n *IsoNormal) Std() float64 { return n.std }

// Sample draws rows of mean + std·ε with ε standard normal.
func (n *IsoNormal) Sample(src rand.Source, dst *mat.Dense) *mat.Dense {
	rows := 0
	if n.mean != nil {
		rows, _ = n.mean.Dims()
	}
	if dst == nil {
		dst = mat.NewDense(rows, n.dim, nil)
	} else {
		rows, _ = dst.Dims()
	}

	eps := distuv.Normal{Mu: 0, Sigma: n.std, Src: src}
	for i := 0; i < rows; i++ {
		for j := 0; j < n.dim; j++ {
			v := eps.Rand()
			if n.mean != nil {
				v += n.mean.At(i, j)
			}
			dst.Set(i, j, v)
		}
	}

	return dst
}

// LogProb evaluates the isotropic Gaussian density row-wise, broadcasting
// single-row inputs against multi-row means and vice versa.
func (n *IsoNormal) LogProb(x *mat.Dense) []float64 {
	xRows, _ := x.Dims()
	meanRows := 0
	if n.mean != nil {
		meanRows, _ = n.mean.Dims()
	}

	rows := xRows
	if meanRows > rows {
		rows = meanRows
	}

	logZ := float64(n.dim) * (0.5*math.Log(2*math.Pi) + math.Log(n.std))
	out := make([]float64, rows)
	diff := make([]float64, n.dim)
	for i := 0; i < rows; i++ {
		xi := x.RawRowView(min(i, xRows-1))
		copy(diff, xi)
		if n.mean != nil {
			floats.Sub(diff, n.mean.RawRowView(min(i, meanRows-1)))
		}
		out[i] = -logZ - floats.Dot(diff, diff)/(2*n.std*n.std)
	}

	return out
}

// RowNormal is a Gaussian batch with per-row means and one full covariance
// shared across rows, the shape of the conjugate importance proposal.
type RowNormal struct {
	means *mat.Dense
	cov   *mat.SymDense
	dim   int
}

// NewRowNormal builds the batch normal; cov must be positive definite and
// match the column count of means.
func NewRowNormal(means *mat.Dense, cov *mat.SymDense) (*RowNormal, error) {
	if means == nil || cov == nil {
		return nil, ErrDimensionMismatch
	}
	_, dim := means.Dims()
	if cov.SymmetricDim() != dim {
		return nil, ErrDimensionMismatch
	}
	// Validate positive definiteness up front so Sample/LogProb cannot fail.
	if _, ok := distmv.NewNormal(make([]float64, dim), cov, nil); !ok {
		return nil, ErrBadCovariance
	}

	return &RowNormal{means: means, cov: cov, dim: dim}, nil
}

// Mean returns the per-row mean matrix.
func (n *RowNormal) Mean() *mat.Dense { return n.means }

// Sample draws each row from N(meanᵢ, cov).
func (n *RowNormal) Sample(src rand.Source, dst *mat.Dense) *mat.Dense {
	rows, _ := n.means.Dims()
	if dst == nil {
		dst = mat.NewDense(rows, n.dim, nil)
	}

	nrm, _ := distmv.NewNormal(make([]float64, n.dim), n.cov, src)
	draw := make([]float64, n.dim)
	for i := 0; i < rows; i++ {
		nrm.Rand(draw)
		floats.AddTo(dst.RawRowView(i), draw, n.means.RawRowView(i))
	}

	return dst
}

// LogProb evaluates N(xᵢ; meanᵢ, cov) row-wise with single-row broadcast.
func (n *RowNormal) LogProb(x *mat.Dense) []float64 {
	xRows, _ := x.Dims()
	meanRows, _ := n.means.Dims()
	rows := xRows
	if meanRows > rows {
		rows = meanRows
	}

	nrm, _ := distmv.NewNormal(make([]float64, n.dim), n.cov, nil)
	out := make([]float64, rows)
	diff := make([]float64, n.dim)
	for i := 0; i < rows; i++ {
		floats.SubTo(diff, x.RawRowView(min(i, xRows-1)), n.means.RawRowView(min(i, meanRows-1)))
		out[i] = nrm.LogProb(diff)
	}

	return out
}

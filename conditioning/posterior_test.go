package conditioning_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bd3dowling/diffusionlib/conditioning"
)

// recordingProjector captures the data argument handed to Project so tests
// can observe the state entering the projection step.
type recordingProjector struct {
	identityOp
	captured []float64
}

func (p *recordingProjector) Project(data, measurement []float64) []float64 {
	p.captured = make([]float64, len(data))
	copy(p.captured, data)

	out := make([]float64, len(measurement))
	copy(out, measurement)

	return out
}

// TestScaleZero_LeavesStateUnchanged verifies that with scale = 0 every
// gradient-guidance variant leaves x_t bit-identical, whatever the gradient.
func TestScaleZero_LeavesStateUnchanged(t *testing.T) {
	xt := []float64{1, 2, 3}
	req := conditioning.Request{
		XPrev:            []float64{0, 0, 0},
		XT:               xt,
		X0Hat:            []float64{0, 0, 0},
		Measurement:      []float64{100, -50, 25}, // large residual, large gradient
		NoisyMeasurement: []float64{100, -50, 25},
		Denoise:          identityDenoise,
	}

	for _, kind := range []conditioning.Kind{
		conditioning.PosteriorSampling,
		conditioning.PosteriorSamplingPlus,
	} {
		m, err := conditioning.New(kind, identityOp{}, gaussianNoiser(), conditioning.WithScale(0))
		require.NoError(t, err)

		res, err := m.Conditioning(req)
		require.NoError(t, err)
		assert.Equalf(t, xt, res.State, "%s with scale=0 must not move x_t", kind)
	}

	// MCG still projects afterwards; the state entering projection must be
	// bit-identical to x_t.
	proj := &recordingProjector{}
	m, err := conditioning.New(conditioning.ManifoldConstraintGradient, proj, gaussianNoiser(),
		conditioning.WithScale(0))
	require.NoError(t, err)

	res, err := m.Conditioning(req)
	require.NoError(t, err)
	assert.Equal(t, xt, proj.captured, "mcg with scale=0 must project the untouched x_t")
	assert.Equal(t, req.NoisyMeasurement, res.State, "mcg output is the projection result")
}

// TestMCG_GradientThenProjection verifies the two-stage update: the norm is
// reported from the gradient stage while the state is the projection output.
func TestMCG_GradientThenProjection(t *testing.T) {
	proj := &recordingProjector{}
	m, err := conditioning.New(conditioning.ManifoldConstraintGradient, proj, gaussianNoiser(),
		conditioning.WithScale(0.5))
	require.NoError(t, err)

	res, err := m.Conditioning(conditioning.Request{
		XPrev:            []float64{0},
		XT:               []float64{10},
		X0Hat:            []float64{0},
		Measurement:      []float64{3},
		NoisyMeasurement: []float64{4},
		Denoise:          identityDenoise,
	})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, res.Norm, tol, "norm comes from the gradient stage")
	assert.InDelta(t, 10.5, proj.captured[0], 1e-4, "projection sees the gradient-stepped state")
	assert.Equal(t, []float64{4}, res.State, "state is the projection output")
}

// TestPSPlus_ReducesToPS checks that num_sampling = 1 with zero perturbation
// reproduces the PosteriorSampling norm for the same inputs.
func TestPSPlus_ReducesToPS(t *testing.T) {
	req := conditioning.Request{
		XPrev:       []float64{1, 1},
		XT:          []float64{2, 2},
		X0Hat:       []float64{1, 1},
		Measurement: []float64{4, 5},
		Denoise:     identityDenoise,
		Rand:        rand.New(rand.NewSource(7)),
	}

	ps, err := conditioning.New(conditioning.PosteriorSampling, identityOp{}, gaussianNoiser())
	require.NoError(t, err)
	psPlus, err := conditioning.New(conditioning.PosteriorSamplingPlus, identityOp{}, gaussianNoiser(),
		conditioning.WithNumSampling(1), conditioning.WithPerturbation(0))
	require.NoError(t, err)

	want, err := ps.Conditioning(req)
	require.NoError(t, err)
	got, err := psPlus.Conditioning(req)
	require.NoError(t, err)

	assert.InDelta(t, want.Norm, got.Norm, tol, "degenerate ps+ must match ps norm")
	for i := range want.State {
		assert.InDelta(t, want.State[i], got.State[i], tol, "degenerate ps+ must match ps state")
	}
}

// TestPSPlus_DeterministicWithSeed verifies two calls with equally seeded
// sources agree exactly.
func TestPSPlus_DeterministicWithSeed(t *testing.T) {
	m, err := conditioning.New(conditioning.PosteriorSamplingPlus, identityOp{}, gaussianNoiser(),
		conditioning.WithNumSampling(3))
	require.NoError(t, err)

	req := conditioning.Request{
		XPrev:       []float64{0.5, 0.5},
		XT:          []float64{1, 1},
		X0Hat:       []float64{0.5, 0.5},
		Measurement: []float64{2, 3},
		Denoise:     identityDenoise,
	}

	req.Rand = rand.New(rand.NewSource(42))
	a, err := m.Conditioning(req)
	require.NoError(t, err)

	req.Rand = rand.New(rand.NewSource(42))
	b, err := m.Conditioning(req)
	require.NoError(t, err)

	assert.Equal(t, a.Norm, b.Norm, "same seed must give the same norm")
	assert.Equal(t, a.State, b.State, "same seed must give the same state")
}

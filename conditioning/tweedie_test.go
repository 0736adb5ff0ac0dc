package conditioning_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/bd3dowling/diffusionlib/conditioning"
)

// TestTMP_IdentityChain pins the operator-consistent preconditioner on an
// identity chain: C = 1 + noiseStd²/r elementwise, x0 = x_t + (y−x_t)/C.
func TestTMP_IdentityChain(t *testing.T) {
	m, err := conditioning.New(conditioning.TweedieMomentProjection, identityOp{}, gaussianNoiser())
	require.NoError(t, err)

	xt := []float64{1, 2}
	y := []float64{3, 8}
	res, err := m.Conditioning(conditioning.Request{
		XT:          xt,
		Measurement: y,
		Denoise:     identityDenoise,
		R:           1,
		NoiseStd:    1, // C = 1 + 1/1 = 2 per element
	})
	require.NoError(t, err)

	assert.InDelta(t, floats.Distance(y, xt, 2), res.Norm, tol)
	for i := range xt {
		assert.InDelta(t, xt[i]+(y[i]-xt[i])/2, res.X0[i], 1e-4,
			"tmp applies the preconditioned correction to x0")
	}
}

// TestTMP_NoiselessRecoversMeasurement: zero noise ⇒ C = 1 ⇒ the corrected
// x0 lands exactly on the measurement.
func TestTMP_NoiselessRecoversMeasurement(t *testing.T) {
	m, err := conditioning.New(conditioning.TweedieMomentProjection, identityOp{}, gaussianNoiser())
	require.NoError(t, err)

	res, err := m.Conditioning(conditioning.Request{
		XT:          []float64{1, 1, 1},
		Measurement: []float64{2, 4, 6},
		Denoise:     identityDenoise,
		R:           1,
		NoiseStd:    0,
	})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, res.X0[0], 1e-4)
	assert.InDelta(t, 4.0, res.X0[1], 1e-4)
	assert.InDelta(t, 6.0, res.X0[2], 1e-4)
}

// TestTMP_ZeroResidualLeavesX0 verifies the applied-correction decision is a
// no-op exactly when the residual vanishes.
func TestTMP_ZeroResidualLeavesX0(t *testing.T) {
	m, err := conditioning.New(conditioning.TweedieMomentProjection, identityOp{}, gaussianNoiser())
	require.NoError(t, err)

	x := []float64{4, -4}
	res, err := m.Conditioning(conditioning.Request{
		XT:          x,
		Measurement: x,
		Denoise:     identityDenoise,
		R:           2,
		NoiseStd:    0.5,
	})
	require.NoError(t, err)
	assert.Zero(t, res.Norm)
	for i := range x {
		assert.InDelta(t, x[i], res.X0[i], tol, "zero residual must leave x0 untouched")
	}
}

// TestTMP_RequiresR ensures the moment ratio is a genuine input here
// (unlike the pseudo-inverse variants, which derive theirs).
func TestTMP_RequiresR(t *testing.T) {
	m, err := conditioning.New(conditioning.TweedieMomentProjection, identityOp{}, gaussianNoiser())
	require.NoError(t, err)

	_, err = m.Conditioning(conditioning.Request{
		XT:          []float64{1},
		Measurement: []float64{1},
		Denoise:     identityDenoise,
	})
	assert.ErrorIs(t, err, conditioning.ErrMissingArgument)
}

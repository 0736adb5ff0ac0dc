package conditioning_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/bd3dowling/diffusionlib/conditioning"
)

// identityEstimate is the two-output estimator stub: x0 = x, eps = 0.
func identityEstimate(x []float64) ([]float64, []float64) {
	x0 := make([]float64, len(x))
	copy(x0, x)

	return x0, make([]float64, len(x))
}

// TestPig_IdentityChain pins the full update on an identity chain:
// h = x_t, C = 1 + noiseStd²/r with r = v·scale/(v+scale), ls = (y−h)/C.
func TestPig_IdentityChain(t *testing.T) {
	m, err := conditioning.New(conditioning.PseudoInverseGuided, identityOp{}, gaussianNoiser(),
		conditioning.WithScale(1))
	require.NoError(t, err)

	xt := []float64{1, 2}
	y := []float64{3, 6}
	res, err := m.Conditioning(conditioning.Request{
		XT:          xt,
		Measurement: y,
		EstimateX0:  identityEstimate,
		V:           1,
		NoiseStd:    1,
	})
	require.NoError(t, err)

	// r = 1·1/(1+1) = 0.5, C = 1 + 1/0.5 = 3.
	assert.InDelta(t, floats.Distance(y, xt, 2), res.Norm, tol)
	for i := range xt {
		assert.InDelta(t, xt[i], res.X0[i], tol, "x0 passes through uncorrected")
		assert.InDelta(t, 0.0, res.Eps[i], tol, "eps comes straight from the estimator")
		assert.InDelta(t, (y[i]-xt[i])/3, res.Correction[i], 1e-4,
			"correction is the preconditioned pullback, left unapplied")
	}
}

// TestPig_RequiredArguments walks the required subset.
func TestPig_RequiredArguments(t *testing.T) {
	m, err := conditioning.New(conditioning.PseudoInverseGuided, identityOp{}, gaussianNoiser())
	require.NoError(t, err)

	base := conditioning.Request{
		XT:          []float64{1},
		Measurement: []float64{1},
		EstimateX0:  identityEstimate,
		V:           1,
	}

	for name, mutate := range map[string]func(*conditioning.Request){
		"x_t":          func(r *conditioning.Request) { r.XT = nil },
		"measurement":  func(r *conditioning.Request) { r.Measurement = nil },
		"estimate_x_0": func(r *conditioning.Request) { r.EstimateX0 = nil },
		"v":            func(r *conditioning.Request) { r.V = 0 },
	} {
		req := base
		mutate(&req)
		_, err := m.Conditioning(req)
		assert.ErrorIsf(t, err, conditioning.ErrMissingArgument, "dropping %s must fail", name)
	}
}

// TestPig_NegativeScalarsAreInvalid distinguishes the two failure shapes of
// the variance-like scalars: zero reads as absent, a negative value is a
// domain violation reported as ErrInvalidArgument.
func TestPig_NegativeScalarsAreInvalid(t *testing.T) {
	for _, kind := range []conditioning.Kind{
		conditioning.PseudoInverseGuided,
		conditioning.AltPseudoInverseGuided,
		conditioning.TweedieMomentProjection,
	} {
		m, err := conditioning.New(kind, identityOp{}, gaussianNoiser())
		require.NoError(t, err)

		_, err = m.Conditioning(conditioning.Request{
			XT:          []float64{1},
			Measurement: []float64{1},
			EstimateX0:  identityEstimate,
			Denoise:     identityDenoise,
			R:           -1,
			V:           -1,
		})
		assert.ErrorIsf(t, err, conditioning.ErrInvalidArgument,
			"%s must reject a negative scalar distinctly", kind)
		assert.NotErrorIsf(t, err, conditioning.ErrMissingArgument,
			"%s must not report a supplied negative as missing", kind)
	}
}

// TestPig_GaussianOnly ensures the pseudo-inverse family rejects non-Gaussian
// likelihoods outright.
func TestPig_GaussianOnly(t *testing.T) {
	for _, kind := range []conditioning.Kind{
		conditioning.PseudoInverseGuided,
		conditioning.AltPseudoInverseGuided,
		conditioning.TweedieMomentProjection,
	} {
		m, err := conditioning.New(kind, identityOp{}, stubNoiser{kind: conditioning.Poisson})
		require.NoError(t, err)

		_, err = m.Conditioning(conditioning.Request{
			XT:          []float64{1},
			Measurement: []float64{1},
			EstimateX0:  identityEstimate,
			Denoise:     identityDenoise,
			R:           1,
			V:           1,
		})
		assert.ErrorIsf(t, err, conditioning.ErrUnsupportedLikelihood,
			"%s must reject the poisson likelihood", kind)
	}
}

// TestAltPig_AppliesCorrection verifies altpig folds ls into x0:
// identity chain ⇒ x0 = x_t + (y−x_t)/C.
func TestAltPig_AppliesCorrection(t *testing.T) {
	m, err := conditioning.New(conditioning.AltPseudoInverseGuided, identityOp{}, gaussianNoiser(),
		conditioning.WithScale(1))
	require.NoError(t, err)

	xt := []float64{0, 0}
	y := []float64{3, -3}
	res, err := m.Conditioning(conditioning.Request{
		XT:          xt,
		Measurement: y,
		Denoise:     identityDenoise,
		V:           1,
		NoiseStd:    1,
	})
	require.NoError(t, err)

	// Same preconditioner as pig: C = 3 for v = scale = noiseStd = 1.
	for i := range xt {
		assert.InDelta(t, xt[i]+(y[i]-xt[i])/3, res.X0[i], 1e-4)
	}
	assert.InDelta(t, floats.Distance(y, xt, 2), res.Norm, tol)
}

// TestAltPig_NoiselessRecoversMeasurement checks that with zero measurement
// noise the correction carries x0 all the way to the measurement.
func TestAltPig_NoiselessRecoversMeasurement(t *testing.T) {
	m, err := conditioning.New(conditioning.AltPseudoInverseGuided, identityOp{}, gaussianNoiser())
	require.NoError(t, err)

	res, err := m.Conditioning(conditioning.Request{
		XT:          []float64{1, 1},
		Measurement: []float64{5, -2},
		Denoise:     identityDenoise,
		V:           1,
		NoiseStd:    0, // C = 1
	})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, res.X0[0], 1e-4)
	assert.InDelta(t, -2.0, res.X0[1], 1e-4)
}

// Package conditioning implements the per-step correction strategies that
// steer a reverse diffusion trajectory toward an observed measurement.
//
// 🚀 What is a conditioning method?
//
//	Each diffusion step, the outer sampling loop holds the current latent
//	state x_t, the previous state x_prev, a denoiser-produced clean
//	estimate x0_hat, and the measurement y. A conditioning method turns
//	those into a corrected state plus a scalar residual norm used for
//	diagnostics or importance weighting.
//
// ✨ Variants (closed Kind enumeration):
//
//   - Vanilla                    — pass-through, norm 0
//   - Projection                 — hard projection onto the measurement
//   - ManifoldConstraintGradient — gradient step, then projection (MCG)
//   - PosteriorSampling          — gradient step on the residual norm (DPS)
//   - PosteriorSamplingPlus      — stochastic multi-draw variant of DPS
//   - PseudoInverseGuided        — ΠGDM-style VJP correction, caller-applied
//   - AltPseudoInverseGuided     — ΠGDM variant applying its own correction
//   - TweedieMomentProjection    — operator-consistent variance preconditioner
//
// ⚙️ Usage:
//
//	reg := conditioning.NewRegistry()
//	m, err := conditioning.Get(reg, "ps", op, noiser, conditioning.WithScale(0.3))
//	res, err := m.Conditioning(conditioning.Request{
//	  XPrev: xPrev, XT: xt, X0Hat: x0Hat, Measurement: y, Denoise: denoise,
//	})
//
// Contracts:
//   - Methods are immutable after construction and stateless across calls.
//   - Input slices are never mutated; corrected states are fresh slices.
//   - Missing required arguments fail with ErrMissingArgument; an
//     unrecognized likelihood tag fails with ErrUnsupportedLikelihood.
//     Fail-fast, no retries (numeric-backend errors propagate as-is).
//
// The differentiation backend is pluggable via WithEngine; the default is
// grad.NewFD() (central finite differences over gonum diff/fd).
package conditioning

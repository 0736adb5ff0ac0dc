// Package optimizer re-casts reverse diffusion as a sequential-Monte-Carlo
// run over an arbitrary scalar objective: SMCDiffOpt wraps the base
// sampler's reverse chain in a state-space model, attaches a telescoping
// potential built from the objective and a step-dependent weighting
// schedule, and lets the particle filter do the optimizing.
//
// Per-step log-potential, with T the horizon and γ the schedule:
//
//	logG(0,  _, x) = −γ(T)·f(x)
//	logG(t, xp, x) = −γ(T−t)·f(x) + γ(T−t+1)·f(xp)    for t ≥ 1
//
// so the accumulated weight of a surviving particle telescopes to
// −γ(T−t)·f(x_t): at every step the ensemble is importance-weighted toward
// low objective values at the current temperature.
//
// ⚙️ Usage:
//
//	reg := optimizer.NewRegistry()
//	opt, err := optimizer.Get(reg, optimizer.SMCDiffOptName, optimizer.Config{
//	  Sampler:      sampler,
//	  GammaT:       func(k int) float64 { return 0.5 },
//	  NumParticles: 500,
//	})
//	res, err := opt.Optimize(rng, f, false)
//
// Determinism: Optimize splits one sub-seed from the caller's rng and hands
// it to the filter; two calls with equally seeded rngs return identical
// ensembles. The optimizer itself is a one-shot stateless call.
package optimizer

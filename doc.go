// Package diffusionlib steers trained diffusion models toward observed
// measurements: posterior sampling for inverse problems (inpainting,
// deblurring, super-resolution style tasks) without retraining anything.
//
// 🚀 What is diffusionlib?
//
//	A pure in-process library that brings together:
//		• Conditioning methods: gradient guidance (DPS/MCG-style) and
//		  pseudo-inverse guidance (ΠGDM/TMP-style) corrections per step
//		• A pluggable differentiation capability (VJP through opaque
//		  denoiser + forward-operator compositions)
//		• State-space-model adapters over a base sampler's reverse process
//		• A sequential-Monte-Carlo particle filter with systematic
//		  resampling, and an SMC-based optimizer built on top of it
//
// ✨ Why choose diffusionlib?
//
//   - Deterministic – every random draw is driven by a caller-supplied seed
//   - Fail-fast – strict sentinel errors, no retries, no silent fallbacks
//   - Composable – operators, noisers, samplers and denoisers plug in as
//     small capability interfaces; nothing here trains or owns a model
//
// Everything is organized under five subpackages:
//
//	registry/     — explicit name→factory registries with strict sentinels
//	grad/         — gradient & vector-Jacobian-product engine (gonum diff/fd)
//	conditioning/ — the conditioning-method family and its call surface
//	smc/          — distributions, SSM adapters & the particle-filter engine
//	optimizer/    — SMCDiffOpt: reverse diffusion as a particle-filter run
//
// Data flow, per diffusion step:
//
//	sampler.Posterior ──► SSM.PX ──► Filter (propagate/reweight/resample)
//	denoiser estimate ──► conditioning.Method ──► corrected state + norm
//
// See each subpackage's doc.go and example_test.go for walkthroughs.
package diffusionlib

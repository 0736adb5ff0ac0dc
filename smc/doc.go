// Package smc recasts a diffusion sampler's reverse process as a state-space
// model and evaluates it with a sequential-Monte-Carlo particle filter.
//
// 🚀 What lives here?
//
//	• Batch distributions over particle ensembles (rows = particles):
//	  IsoNormal (shared scalar std) and RowNormal (shared full covariance)
//	• StateSpaceModel / ObservationModel / Proposer interfaces
//	• Adapters over an external base sampler:
//	    DiffusionSSM    — reverse transitions as a Markov chain
//	    ObservationSSM  — adds a linear-Gaussian measurement model
//	    FPSSSM          — adds a conjugate Gaussian importance proposal
//	• Filter: propagate → reweight → normalize → conditionally resample
//	  (systematic), with optional per-step ensemble history
//
// ⚙️ Usage:
//
//	ssm, err := smc.NewDiffusionSSM(sampler)
//	opts := smc.DefaultOptions()
//	opts.Particles = 500
//	res, err := smc.Run(ssm, potential, nil, opts)
//
// Time indexing: filter step t (1-based past the initial draw) maps to the
// reverse-diffusion timestep ts[len(ts)−t]; the sampler runs T → 0 while
// the filter counts up.
//
// Determinism: every random draw flows from Options.Seed (0 selects the
// fixed DefaultSeed); two runs with equal seeds produce identical ensembles.
// No time-based randomness anywhere.
//
// Concurrency: a Filter run owns its ensemble exclusively; independent runs
// with independent seeds are safe to execute concurrently.
package smc

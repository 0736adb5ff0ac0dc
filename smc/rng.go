// RNG utilities shared by the filter and the optimizer.
//
// Goals:
//   - Determinism: same seed ⇒ identical ensembles across platforms.
//   - Encapsulation: a single source factory; no time-based sources.
//   - Independence: DeriveSeed mixes a parent seed and a stream id so
//     concurrent runs never share a stream.

package smc

import "golang.org/x/exp/rand"

// DefaultSeed is the fixed seed used when callers pass seed==0. Arbitrary
// but stable to keep reproducible defaults.
const DefaultSeed uint64 = 1

// NewSource returns a deterministic source for seed, substituting
// DefaultSeed for zero.
func NewSource(seed uint64) rand.Source {
	if seed == 0 {
		seed = DefaultSeed
	}

	return rand.NewSource(seed)
}

// DeriveSeed mixes a parent seed and a stream identifier into a new 64-bit
// seed with a SplitMix64-style finalizer, so derived streams decorrelate
// even for adjacent inputs.
func DeriveSeed(parent, stream uint64) uint64 {
	x := parent ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return x
}

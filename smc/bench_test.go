package smc_test

import (
	"testing"

	"github.com/bd3dowling/diffusionlib/smc"
)

// benchmarkRun executes a bootstrap pass with the given ensemble size and
// horizon; it resets the timer after setup and fails on unexpected errors.
func benchmarkRun(b *testing.B, particles, steps, dim int) {
	ssm, err := smc.NewDiffusionSSM(newSampler(steps, dim))
	if err != nil {
		b.Fatalf("ssm: %v", err)
	}

	opts := smc.DefaultOptions()
	opts.Particles = particles
	opts.Seed = 1

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := smc.Run(ssm, nil, nil, opts); err != nil {
			b.Fatalf("run: %v", err)
		}
	}
}

func BenchmarkRun_Small(b *testing.B)  { benchmarkRun(b, 100, 10, 4) }
func BenchmarkRun_Medium(b *testing.B) { benchmarkRun(b, 1000, 25, 8) }

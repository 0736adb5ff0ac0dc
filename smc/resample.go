package smc

import "golang.org/x/exp/rand"

// systematic draws n ancestor indices by systematic resampling: one uniform
// offset, then a stride of 1/n across the cumulative weights. weights must
// be normalized to sum to 1.
//
// Complexity: O(n); variance is lower than multinomial resampling for the
// same weight vector.
func systematic(weights []float64, rng *rand.Rand) []int {
	n := len(weights)
	idx := make([]int, n)

	u := rng.Float64() / float64(n)
	cum := weights[0]
	i := 0
	for j := 0; j < n; j++ {
		for u > cum && i < n-1 {
			i++
			cum += weights[i]
		}
		idx[j] = i
		u += 1 / float64(n)
	}

	return idx
}

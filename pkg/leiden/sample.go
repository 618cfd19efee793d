package leiden

import (
	"math"
	"math/rand"
)

// SampleCategorical draws an index with probability proportional to its
// weight. It returns -1 when the weights do not sum to a positive finite
// value. Negative and NaN weights count as zero.
func SampleCategorical(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if !(total > 0) || math.IsInf(total, 0) {
		return -1
	}

	r := rng.Float64() * total
	last := -1
	for i, w := range weights {
		if !(w > 0) {
			continue
		}
		last = i
		if r < w {
			return i
		}
		r -= w
	}
	// Rounding can leave r just above the final bucket.
	return last
}

// softmaxWeights maps deltas to exp(delta/theta) for delta >= 0 and 0
// otherwise, shifted by the largest delta so the exponentials cannot
// overflow. theta <= 0 degenerates to putting all weight on the best delta.
func softmaxWeights(deltas []float64, theta float64) []float64 {
	weights := make([]float64, len(deltas))
	best := math.Inf(-1)
	bestIdx := -1
	for i, d := range deltas {
		if d >= 0 && d > best {
			best, bestIdx = d, i
		}
	}
	if bestIdx < 0 {
		return weights
	}
	if theta <= 0 {
		weights[bestIdx] = 1
		return weights
	}
	for i, d := range deltas {
		if d >= 0 {
			weights[i] = math.Exp((d - best) / theta)
		}
	}
	return weights
}

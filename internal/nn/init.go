package nn

import "math/rand"

// Normal fills dst with samples from N(0, stddev²).
func Normal(dst []float64, stddev float64, rng *rand.Rand) {
	for i := range dst {
		//nolint:gosec // Using math/rand for weight initialization (not security-critical)
		dst[i] = rng.NormFloat64() * stddev
	}
}

package utils

import "math/rand"

// SeededRNG returns a deterministic rand.Rand for the given seed. Callers own
// the instance; rand.Rand is not safe for concurrent use.
func SeededRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(int64(seed)))
}

// RNGFromString seeds a rand.Rand from an arbitrary string, for configs that
// name their seed rather than number it.
func RNGFromString(seed string) *rand.Rand {
	return SeededRNG(HashString(seed))
}

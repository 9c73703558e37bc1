package fitness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpochKeyDeterministic(t *testing.T) {
	scores := map[string]float64{"alpha": 1.0, "beta": 2.0, "gamma": 3.0}
	s1 := ShuffleFitFromMap(scores)
	s2 := ShuffleFitFromMap(scores)

	for epoch := uint64(0); epoch < 16; epoch++ {
		key := s1.EpochKey(epoch)
		assert.Equal(t, key, s2.EpochKey(epoch), "both sides must agree on the epoch key")
		assert.Contains(t, s1.Names(), key)
	}
}

func TestEpochKeyRotates(t *testing.T) {
	s := ShuffleFitFromMap(map[string]float64{"alpha": 1.0, "beta": 2.0})

	seen := make(map[string]bool)
	for epoch := uint64(0); epoch < 64; epoch++ {
		seen[s.EpochKey(epoch)] = true
	}
	assert.Len(t, seen, 2, "rotation should reach every objective over enough epochs")
}

func TestShuffleCompare(t *testing.T) {
	a := ShuffleFitFromMap(map[string]float64{"alpha": 1.0, "beta": 9.0})
	b := ShuffleFitFromMap(map[string]float64{"alpha": 2.0, "beta": 3.0})

	const epoch = 5
	key := a.EpochKey(epoch)

	av, ok := a.Get(key)
	require.True(t, ok)
	bv, ok := b.Get(key)
	require.True(t, ok)

	assert.Equal(t, compareFloats(av, bv), a.Compare(b, epoch))
	assert.Equal(t, compareFloats(bv, av), b.Compare(a, epoch))
}

func TestShuffleCompareMissingObjective(t *testing.T) {
	a := ShuffleFitFromMap(map[string]float64{"alpha": 1.0})
	b := ShuffleFitFromMap(map[string]float64{"omega": 1.0})

	assert.Panics(t, func() { a.Compare(b, 0) })
}

func TestShuffleEmptyPanics(t *testing.T) {
	assert.Panics(t, func() { NewShuffleFit().EpochKey(0) })
}

func TestShuffleScalarAndClone(t *testing.T) {
	s := ShuffleFitFromMap(map[string]float64{"alpha": 1.0, "beta": 2.5})
	assert.Equal(t, 3.5, s.Scalar())

	c := s.Clone()
	c.Insert("alpha", 9.0)
	v, _ := s.Get("alpha")
	assert.Equal(t, 1.0, v)
}

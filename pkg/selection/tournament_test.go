package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/ropevo-go/pkg/fitness"
	"github.com/XiaoConstantine/ropevo-go/pkg/utils"
)

func TestTournamentSelect(t *testing.T) {
	rng := utils.SeededRNG(11)
	g := geoOf(0.8, 0.1, 0.5, 0.3, 0.9, 0.2, 0.7, 0.4)
	sel := &TournamentSelector[indiv]{
		Size:       4,
		NumParents: 2,
		Compare:    compareScores,
	}

	for round := 0; round < 100; round++ {
		parents, losers := sel.Select(g, rng)
		require.Len(t, parents, 2)
		require.Len(t, losers, 2)
		require.Equal(t, 4, g.Len())

		// Under minimization every parent must beat every loser.
		for _, p := range parents {
			for _, l := range losers {
				require.LessOrEqual(t, p.score, l.score)
			}
		}

		for _, c := range parents {
			g.Insert(c)
		}
		for _, c := range losers {
			g.Insert(c)
		}
		require.Equal(t, 8, g.Len())
	}
}

func TestTournamentPanics(t *testing.T) {
	rng := utils.SeededRNG(3)

	t.Run("parents exceed size", func(t *testing.T) {
		g := geoOf(0.1, 0.2, 0.3, 0.4)
		sel := &TournamentSelector[indiv]{Size: 2, NumParents: 2, Compare: compareScores}
		assert.Panics(t, func() { sel.Select(g, rng) })
	})

	t.Run("size reaches the radius", func(t *testing.T) {
		g := geoOf(0.1, 0.2, 0.3, 0.4)
		sel := &TournamentSelector[indiv]{Size: 4, NumParents: 2, Compare: compareScores}
		assert.Panics(t, func() { sel.Select(g, rng) })
	})
}

func TestTournamentWithSpectators(t *testing.T) {
	rng := utils.SeededRNG(17)
	scores := make([]float64, 64)
	for i := range scores {
		scores[i] = float64(i) / 64
	}
	g := geoOf(scores...)
	g.SetRadius(8)

	sel := &TournamentSelector[indiv]{Size: 4, NumParents: 2, Compare: compareScores}
	parents, losers, spectators := sel.SelectWithSpectators(g, 3, rng)

	assert.Len(t, parents, 2)
	assert.Len(t, losers, 2)
	assert.Len(t, spectators, 3)
	assert.Equal(t, 64-7, g.Len())

	seen := make(map[uint64]struct{})
	for _, group := range [][]indiv{parents, losers, spectators} {
		for _, c := range group {
			_, dup := seen[c.id]
			require.False(t, dup)
			seen[c.id] = struct{}{}
		}
	}
}

func TestRank(t *testing.T) {
	combatants := []indiv{
		{id: 0, score: 0.9},
		{id: 1, score: 0.1},
		{id: 2, score: 0.5},
	}

	t.Run("sorts fittest first", func(t *testing.T) {
		ranked := rank(combatants, compareScores)
		assert.Equal(t, []uint64{1, 2, 0}, ids(ranked))
	})

	t.Run("incomparable keeps draw order", func(t *testing.T) {
		incomparable := func(a, b indiv) fitness.Ordering { return fitness.Incomparable }
		ranked := rank(combatants, incomparable)
		assert.Equal(t, []uint64{0, 1, 2}, ids(ranked))
	})

	t.Run("does not mutate its input", func(t *testing.T) {
		rank(combatants, compareScores)
		assert.Equal(t, []uint64{0, 1, 2}, ids(combatants))
	})
}

func ids(candidates []indiv) []uint64 {
	out := make([]uint64, len(candidates))
	for i, c := range candidates {
		out[i] = c.id
	}
	return out
}

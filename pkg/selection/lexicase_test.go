package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/ropevo-go/pkg/utils"
)

// caseTable scores candidates on synthetic cases by id.
func caseTable(table map[uint64][]float64, c int) Case[indiv] {
	return func(candidate indiv) float64 {
		return table[candidate.id][c]
	}
}

func TestLexicaseParentIsEliteOnSomeCase(t *testing.T) {
	rng := utils.SeededRNG(41)

	// id 0 is a case-0 specialist, id 1 a case-1 specialist, ids 2 and 3
	// are mediocre generalists.
	table := map[uint64][]float64{
		0: {0.0, 0.9},
		1: {0.9, 0.0},
		2: {0.5, 0.5},
		3: {0.6, 0.6},
	}
	cases := []Case[indiv]{caseTable(table, 0), caseTable(table, 1)}

	sel := &LexicaseSelector[indiv]{SampleSize: 3, NumParents: 1, Cases: cases}

	for trial := 0; trial < 300; trial++ {
		g := geoOf(0, 0, 0, 0)
		parents, rest := sel.Select(g, rng)
		require.Len(t, parents, 1)
		require.Len(t, rest, 2)

		sample := append(append([]indiv{}, parents...), rest...)
		parent := parents[0]

		// Whatever the case shuffle was, the winner of the gauntlet is
		// minimal on at least one case within the sample.
		elite := false
		for c := range cases {
			best := sample[0].id
			for _, s := range sample[1:] {
				if table[s.id][c] < table[best][c] {
					best = s.id
				}
			}
			if table[parent.id][c] == table[best][c] {
				elite = true
				break
			}
		}
		assert.True(t, elite, "parent %d is not elite on any case", parent.id)
	}
}

func TestLexicaseSingleCase(t *testing.T) {
	rng := utils.SeededRNG(43)
	single := []Case[indiv]{func(c indiv) float64 { return c.score }}
	sel := &LexicaseSelector[indiv]{SampleSize: 3, NumParents: 1, Cases: single}

	for trial := 0; trial < 100; trial++ {
		g := geoOf(0.4, 0.1, 0.8, 0.6)
		parents, rest := sel.Select(g, rng)

		best := parents[0].score
		for _, c := range rest {
			require.LessOrEqual(t, best, c.score)
		}
		require.Equal(t, 1, g.Len())
	}
}

func TestLexicaseDrawsWithoutReplacement(t *testing.T) {
	rng := utils.SeededRNG(47)
	single := []Case[indiv]{func(c indiv) float64 { return c.score }}
	sel := &LexicaseSelector[indiv]{SampleSize: 3, NumParents: 3, Cases: single}

	g := geoOf(0.4, 0.1, 0.8, 0.6)
	parents, rest := sel.Select(g, rng)

	require.Len(t, parents, 3)
	assert.Empty(t, rest)

	seen := make(map[uint64]struct{})
	for _, c := range parents {
		_, dup := seen[c.id]
		require.False(t, dup)
		seen[c.id] = struct{}{}
	}

	// With one case and no ties the draw order is the fitness order.
	assert.True(t, parents[0].score <= parents[1].score)
	assert.True(t, parents[1].score <= parents[2].score)
}

func TestLexicasePanics(t *testing.T) {
	rng := utils.SeededRNG(2)

	t.Run("no cases", func(t *testing.T) {
		g := geoOf(0.1, 0.2, 0.3, 0.4)
		sel := &LexicaseSelector[indiv]{SampleSize: 2, NumParents: 1}
		assert.Panics(t, func() { sel.Select(g, rng) })
	})

	t.Run("parents exceed sample", func(t *testing.T) {
		g := geoOf(0.1, 0.2, 0.3, 0.4)
		single := []Case[indiv]{func(c indiv) float64 { return c.score }}
		sel := &LexicaseSelector[indiv]{SampleSize: 2, NumParents: 3, Cases: single}
		assert.Panics(t, func() { sel.Select(g, rng) })
	})
}

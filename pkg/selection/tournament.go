package selection

import (
	"math/rand"
	"sort"

	"github.com/XiaoConstantine/ropevo-go/pkg/fitness"
	"github.com/XiaoConstantine/ropevo-go/pkg/geography"
)

// TournamentSelector runs classic tournament selection: draw Size combatants
// from a neighborhood window, rank them, and split them into parents and
// losers. Size must stay below the geography's radius.
type TournamentSelector[P geography.Hasher] struct {
	// Size is the number of combatants drawn per tournament.
	Size int
	// NumParents is how many of the ranked combatants are returned as
	// parents; the rest are returned as losers.
	NumParents int
	// Compare orders two candidates under the minimization convention:
	// Less means a is fitter than b.
	Compare func(a, b P) fitness.Ordering
}

// Select draws one tournament and returns the parents and the losers. The
// caller breeds the parents and reinserts survivors and offspring.
func (t *TournamentSelector[P]) Select(g *geography.TrivialGeography[P], rng *rand.Rand) (parents, losers []P) {
	if t.NumParents >= t.Size {
		panic("tournament size must exceed the number of parents")
	}
	combatants := g.ChooseCombatants(t.Size, rng)
	ranked := rank(combatants, t.Compare)
	return ranked[:t.NumParents], ranked[t.NumParents:]
}

// SelectWithSpectators draws a tournament plus nSpec spectators from the
// mirror window at the far side of the population. Spectators take no part
// in the ranking; they are extracted so the caller can use them as a
// geographically distant comparison group, or as migration candidates.
func (t *TournamentSelector[P]) SelectWithSpectators(g *geography.TrivialGeography[P], nSpec int, rng *rand.Rand) (parents, losers, spectators []P) {
	if t.NumParents >= t.Size {
		panic("tournament size must exceed the number of parents")
	}
	combatants, spectators := g.ChooseCombatantsAndSpectators(t.Size, nSpec, rng)
	ranked := rank(combatants, t.Compare)
	return ranked[:t.NumParents], ranked[t.NumParents:], spectators
}

// rank sorts candidates fittest first. The sort is stable and treats Equal
// and Incomparable alike, so candidates no comparison can separate keep
// their draw order.
func rank[P any](combatants []P, compare func(a, b P) fitness.Ordering) []P {
	ranked := append([]P(nil), combatants...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return compare(ranked[i], ranked[j]) == fitness.Less
	})
	return ranked
}

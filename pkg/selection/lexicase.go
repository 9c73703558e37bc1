package selection

import (
	"math/rand"

	"github.com/XiaoConstantine/ropevo-go/pkg/geography"
)

// Case scores one candidate on one test case; lower is better.
type Case[P any] func(P) float64

// LexicaseSelector runs lexicase selection: candidates are filtered through
// the test cases in a freshly shuffled order, keeping at each step only the
// candidates that achieve the best score on the current case. The survivors
// of the full gauntlet, or a random one of them when several remain, become
// parents. Lexicase keeps specialists alive that aggregate scores would
// average away.
type LexicaseSelector[P geography.Hasher] struct {
	// SampleSize is the number of candidates extracted per selection.
	SampleSize int
	// NumParents is how many parents are drawn, each through its own
	// shuffled gauntlet, without replacement.
	NumParents int
	// Cases are the per-case evaluators.
	Cases []Case[P]
}

// Select draws NumParents parents and returns them along with the unselected
// remainder. The caller reinserts both after breeding.
func (l *LexicaseSelector[P]) Select(g *geography.TrivialGeography[P], rng *rand.Rand) (parents, rest []P) {
	if l.NumParents > l.SampleSize {
		panic("cannot draw more parents than the sample holds")
	}
	if len(l.Cases) == 0 {
		panic("lexicase selection requires at least one case")
	}
	pool := g.ChooseCombatants(l.SampleSize, rng)

	// Case scores are memoized per candidate so each evaluator runs at
	// most once per candidate per selection.
	scores := make([]map[int]float64, len(pool))
	for i := range scores {
		scores[i] = make(map[int]float64)
	}
	scoreOf := func(candidate, c int) float64 {
		if s, ok := scores[candidate][c]; ok {
			return s
		}
		s := l.Cases[c](pool[candidate])
		scores[candidate][c] = s
		return s
	}

	remaining := make([]int, len(pool))
	for i := range remaining {
		remaining[i] = i
	}

	parents = make([]P, 0, l.NumParents)
	for draw := 0; draw < l.NumParents; draw++ {
		survivors := append([]int(nil), remaining...)
		for _, c := range rng.Perm(len(l.Cases)) {
			if len(survivors) == 1 {
				break
			}
			best := scoreOf(survivors[0], c)
			for _, candidate := range survivors[1:] {
				if s := scoreOf(candidate, c); s < best {
					best = s
				}
			}
			next := survivors[:0]
			for _, candidate := range survivors {
				if scoreOf(candidate, c) == best {
					next = append(next, candidate)
				}
			}
			survivors = next
		}

		winner := survivors[rng.Intn(len(survivors))]
		parents = append(parents, pool[winner])
		for i, candidate := range remaining {
			if candidate == winner {
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}

	rest = make([]P, 0, len(remaining))
	for _, candidate := range remaining {
		rest = append(rest, pool[candidate])
	}
	return parents, rest
}

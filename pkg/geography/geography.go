// Package geography implements the "trivial geography" population container.
// Candidates occupy slots in a ring; selection only competes candidates that
// fall inside a radius-bounded window of neighboring slots, which slows the
// spread of a dominant genotype compared to panmictic selection.
//
// For a description and justification of the algorithm, see Lee Spector &
// Jon Klein, "Trivial Geography in Genetic Programming", in Genetic
// Programming Theory and Practice III, Springer: 2006.
package geography

import (
	"context"
	"math/rand"
	"runtime"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/XiaoConstantine/ropevo-go/pkg/logging"
)

// Hasher is the only capability the container requires of its occupants: a
// stable 64-bit digest, used to canonicalize slot order after parallel
// construction.
type Hasher interface {
	Hash() uint64
}

// TrivialGeography holds a population in an ordered sequence of slots, some
// of which may be vacant after extraction. The container requires
// single-writer discipline: Extract, Insert and the Choose operations must
// not be called concurrently without external synchronization. The usual
// arrangement is one container per island, mutated only by that island's
// driver goroutine.
type TrivialGeography[P Hasher] struct {
	radius    int
	deme      []*P
	vacancies []int
}

// FromSlice builds a container whose slot order is the slice order. The
// radius starts at the population size, i.e. no locality restriction, until
// the caller narrows it with SetRadius.
func FromSlice[P Hasher](candidates []P) *TrivialGeography[P] {
	deme := make([]*P, len(candidates))
	for i := range candidates {
		c := candidates[i]
		deme[i] = &c
	}
	return &TrivialGeography[P]{
		radius: len(deme),
		deme:   deme,
	}
}

// Generate builds a container of n candidates produced in parallel by gen.
// Slot order is canonicalized by sorting occupants on their hash, so two
// runs over the same multiset of candidates yield identical containers no
// matter how the parallel production interleaved. workers < 1 means one
// worker per CPU.
func Generate[P Hasher](n, workers int, gen func(i int) P) *TrivialGeography[P] {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	deme := make([]*P, n)

	p := pool.New().WithMaxGoroutines(workers)
	for i := 0; i < n; i++ {
		p.Go(func() {
			candidate := gen(i)
			deme[i] = &candidate
		})
	}
	p.Wait()

	sort.Slice(deme, func(a, b int) bool {
		return (*deme[a]).Hash() < (*deme[b]).Hash()
	})
	return &TrivialGeography[P]{
		radius: n,
		deme:   deme,
	}
}

// Len reports the occupied-slot count.
func (g *TrivialGeography[P]) Len() int {
	return len(g.deme) - len(g.vacancies)
}

// Radius reports the current neighborhood radius.
func (g *TrivialGeography[P]) Radius() int {
	return g.radius
}

// SetRadius narrows the neighborhood window. Calling it before the
// population exists is a caller error. A radius of 0 is a sentinel meaning
// "use the whole population" and leaves the radius untouched; anything else
// is clamped to the population size.
func (g *TrivialGeography[P]) SetRadius(radius int) {
	if g.Len() == 0 {
		panic("generate the population before setting the radius")
	}
	if radius == 0 {
		logging.GetLogger().Info(context.Background(),
			"passing a radius of 0 tells the geography to default to a maximum radius")
		return
	}
	if radius > g.Len() {
		radius = g.Len()
	}
	g.radius = radius
}

// Extract removes and returns the occupant at index mod the slot count.
// A vacant slot is handled by sliding linearly to the next index, which
// guarantees progress whenever any occupant exists, at worst-case linear
// cost in the run of consecutive vacancies. Extracting from a container
// with no occupants is a caller error.
func (g *TrivialGeography[P]) Extract(index int) P {
	if g.Len() == 0 {
		panic("tried to extract from empty geography")
	}
	for {
		i := index % len(g.deme)
		if g.deme[i] != nil {
			occupant := *g.deme[i]
			g.deme[i] = nil
			g.vacancies = append(g.vacancies, i)
			return occupant
		}
		logging.GetLogger().Debug(context.Background(), "cell was empty, sliding along...")
		index = i + 1
	}
}

// Insert places the candidate into the most recently vacated slot, or
// appends a new slot when no vacancy exists. The container grows to
// accommodate migration.
func (g *TrivialGeography[P]) Insert(candidate P) {
	if n := len(g.vacancies); n > 0 {
		i := g.vacancies[n-1]
		g.vacancies = g.vacancies[:n-1]
		g.deme[i] = &candidate
		return
	}
	logging.GetLogger().Debug(context.Background(), "expanding deme to accommodate newcomer")
	g.deme = append(g.deme, &candidate)
}

// GetRange returns the neighborhood window: min(radius, Len()) consecutive
// indices starting from a uniformly random base, wrapping modulo the
// occupied count, duplicates removed. The sequence increases strictly up to
// the wrap point.
func (g *TrivialGeography[P]) GetRange(rng *rand.Rand) []int {
	n := g.Len()
	span := g.radius
	if span > n {
		span = n
	}
	base := rng.Intn(n)
	edge := base + span

	indices := make([]int, 0, span)
	if edge < n {
		for i := base; i < edge; i++ {
			indices = append(indices, i)
		}
	} else {
		for i := base; i < n; i++ {
			indices = append(indices, i)
		}
		for i := 0; i < edge%n; i++ {
			indices = append(indices, i)
		}
	}
	return dedupConsecutive(indices)
}

// ChooseCombatants extracts n distinct candidates sampled without
// replacement from one neighborhood window. n must be below the radius.
// Callers reinsert the survivors and offspring when the tournament is done.
func (g *TrivialGeography[P]) ChooseCombatants(n int, rng *rand.Rand) []P {
	if n >= g.radius {
		panic("don't try to take more creatures than the radius allows")
	}
	return g.chooseWithRange(g.GetRange(rng), n, rng)
}

// ChooseCombatantsAndSpectators extracts nCom candidates from a neighborhood
// window and nSpec candidates from its mirror window, the same indices
// shifted by half the population size. The mirror group serves as a
// geographically distant comparison set.
func (g *TrivialGeography[P]) ChooseCombatantsAndSpectators(nCom, nSpec int, rng *rand.Rand) ([]P, []P) {
	if nCom >= g.radius || nSpec >= g.radius {
		panic("don't try to take more creatures than the radius allows")
	}
	window := g.GetRange(rng)
	n := g.Len()
	mirror := make([]int, len(window))
	for i, idx := range window {
		mirror[i] = (idx + n/2) % n
	}

	combatants := g.chooseWithRange(window, nCom, rng)
	spectators := g.chooseWithRange(mirror, nSpec, rng)
	return combatants, spectators
}

func (g *TrivialGeography[P]) chooseWithRange(indices []int, n int, rng *rand.Rand) []P {
	if n > len(indices) {
		n = len(indices)
	}
	order := rng.Perm(len(indices))
	chosen := make([]P, 0, n)
	for _, j := range order[:n] {
		logging.GetLogger().Debug(context.Background(), "choosing combatant from index %d", indices[j])
		chosen = append(chosen, g.Extract(indices[j]))
	}
	return chosen
}

func dedupConsecutive(indices []int) []int {
	if len(indices) < 2 {
		return indices
	}
	out := indices[:1]
	for _, idx := range indices[1:] {
		if idx != out[len(out)-1] {
			out = append(out, idx)
		}
	}
	return out
}

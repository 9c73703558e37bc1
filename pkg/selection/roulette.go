package selection

import (
	"math"
	"math/rand"

	"github.com/XiaoConstantine/ropevo-go/pkg/geography"
)

// weightEpsilon keeps a perfect score from producing an infinite wheel
// segment.
const weightEpsilon = 1e-9

// RouletteSelector runs fitness-proportional selection. Each candidate's
// wheel segment is 1/(scalar+ε), so lower scalars, which mean fitter
// candidates under the minimization convention, get larger segments.
//
// WeightDecay relaxes the selection pressure on each successive draw: draw d
// uses segment sizes raised to the power decay^d, so the first parent is
// chosen under full fitness pressure and later parents approach a uniform
// pick. A decay of 1 keeps full pressure on every draw.
type RouletteSelector[P geography.Hasher] struct {
	// SampleSize is the number of candidates extracted per selection.
	SampleSize int
	// NumParents is how many parents are drawn from the sample, without
	// replacement.
	NumParents int
	// WeightDecay is the per-draw pressure decay factor, in [0, 1].
	WeightDecay float64
	// Scalar reduces a candidate to its fitness scalar. Scalars are
	// expected to be non-negative; negative values are clamped to zero.
	Scalar func(P) float64
}

// Select draws NumParents parents from a fresh sample and returns them along
// with the unselected remainder. The caller reinserts both after breeding.
func (r *RouletteSelector[P]) Select(g *geography.TrivialGeography[P], rng *rand.Rand) (parents, rest []P) {
	if r.NumParents > r.SampleSize {
		panic("cannot draw more parents than the sample holds")
	}
	pool := g.ChooseCombatants(r.SampleSize, rng)

	weights := make([]float64, len(pool))
	for i, candidate := range pool {
		s := r.Scalar(candidate)
		if s < 0 {
			s = 0
		}
		weights[i] = 1 / (s + weightEpsilon)
	}

	parents = make([]P, 0, r.NumParents)
	for draw := 0; draw < r.NumParents; draw++ {
		pressure := math.Pow(r.WeightDecay, float64(draw))
		i := spin(weights, pressure, rng)
		parents = append(parents, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
		weights = append(weights[:i], weights[i+1:]...)
	}
	return parents, pool
}

// spin picks an index proportionally to weights[i]^pressure.
func spin(weights []float64, pressure float64, rng *rand.Rand) int {
	total := 0.0
	effective := make([]float64, len(weights))
	for i, w := range weights {
		effective[i] = math.Pow(w, pressure)
		total += effective[i]
	}

	x := rng.Float64() * total
	for i, w := range effective {
		x -= w
		if x < 0 {
			return i
		}
	}
	return len(weights) - 1
}

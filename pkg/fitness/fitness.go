// Package fitness provides the score representations used to compare
// candidates during selection: Pareto dominance vectors, expression-weighted
// scalars, epoch-rotating shuffle scores, and lexicographic score vectors.
// All variants follow the minimization convention: lower is fitter.
package fitness

import (
	"fmt"
	"math"
)

// Ordering is the outcome of comparing two scores. Dominance orders are
// partial, so Incomparable is a normal result, not an error.
type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
	Incomparable
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "Less"
	case Equal:
		return "Equal"
	case Greater:
		return "Greater"
	case Incomparable:
		return "Incomparable"
	default:
		return fmt.Sprintf("Ordering(%d)", int(o))
	}
}

// Score is the capability every fitness representation shares: reduction to
// a single scalar for total ordering and reporting.
type Score interface {
	Scalar() float64
}

// compareFloats maps a float comparison onto an Ordering. NaN on either side
// is Incomparable.
func compareFloats(a, b float64) Ordering {
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		return Incomparable
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

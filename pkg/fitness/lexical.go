package fitness

import "slices"

// Lexical is an ordered sequence of sub-scores compared lexicographically:
// the first differing element decides.
type Lexical []float64

// Scalar sums the sub-scores.
func (l Lexical) Scalar() float64 {
	var sum float64
	for _, v := range l {
		sum += v
	}
	return sum
}

func (l Lexical) Clone() Lexical {
	return slices.Clone(l)
}

// Compare is standard lexicographic ordering. A sequence that is a strict
// prefix of the other compares Less. NaN anywhere in the compared prefix
// makes the pair Incomparable.
func (l Lexical) Compare(other Lexical) Ordering {
	n := min(len(l), len(other))
	for i := 0; i < n; i++ {
		if o := compareFloats(l[i], other[i]); o != Equal {
			return o
		}
	}
	switch {
	case len(l) < len(other):
		return Less
	case len(l) > len(other):
		return Greater
	default:
		return Equal
	}
}

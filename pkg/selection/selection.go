// Package selection implements the selection strategies that drive breeding
// over a trivial-geography population: tournament, roulette and lexicase.
// All strategies draw their candidates through the container's windowed
// Choose operations, so locality restrictions apply uniformly, and all take
// an explicit *rand.Rand so runs stay reproducible under a fixed seed.
//
// Selection removes candidates from the container and hands them back to the
// caller; breeding happens outside, and the caller reinserts survivors and
// offspring with Insert.
package selection

// Method names a selection strategy in configuration.
type Method string

const (
	Tournament Method = "tournament"
	Roulette   Method = "roulette"
	Lexicase   Method = "lexicase"
)

// Valid reports whether the method names a supported strategy.
func (m Method) Valid() bool {
	switch m {
	case Tournament, Roulette, Lexicase:
		return true
	}
	return false
}

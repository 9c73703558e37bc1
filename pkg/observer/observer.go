// Package observer carries evaluation results out of the evolutionary loop.
// The loop hands each finished evaluation to an Observer and never looks
// back; windowing, statistics, logging, and persistence all live on this
// side of that call, so the loop stays free of file and wire formats.
package observer

import (
	"github.com/XiaoConstantine/ropevo-go/pkg/emulator"
	"github.com/XiaoConstantine/ropevo-go/pkg/fitness"
)

// Observer gathers observations of the evolutionary process and
// periodically reports quantitative digests of them.
type Observer[O any] interface {
	// Observe stores one observation, typically in a sliding window.
	Observe(ob O)

	// Report generates observations over the window gathered so far and
	// sends them to the configured outputs.
	Report()
}

// Observation is one evaluated candidate as the loop saw it.
type Observation struct {
	// Island is the island that bred the candidate.
	Island int

	// Generation is the candidate's generation number.
	Generation int

	// Scalar is the candidate's scalar fitness. Lower is fitter.
	Scalar float64

	// Scores holds the named objective scores behind the scalar.
	Scores map[string]float64

	// Profile is the collated emulation outcome, when the evaluation ran
	// the emulator. Nil for candidates scored without execution.
	Profile *emulator.Profile
}

// FromWeighted builds an observation from a weighted fitness and the
// profile that produced it.
func FromWeighted(island, generation int, w *fitness.Weighted, profile *emulator.Profile) Observation {
	ob := Observation{
		Island:     island,
		Generation: generation,
		Scalar:     w.Scalar(),
		Scores:     make(map[string]float64, w.Len()),
		Profile:    profile,
	}
	for _, name := range w.Names() {
		if v, ok := w.Get(name); ok {
			ob.Scores[name] = v
		}
	}
	return ob
}

// Summary is the quantitative digest of one observation window.
type Summary struct {
	// RunID ties every summary of a run together across sinks.
	RunID string

	// Island and Generation key the summary; Generation is the newest
	// generation present in the window.
	Island     int
	Generation int

	// Count is the number of observations summarized.
	Count int

	// Scalar fitness statistics over the window. StdDevScalar is the
	// sample standard deviation and zero when the window holds fewer
	// than two observations.
	MeanScalar   float64
	StdDevScalar float64
	MinScalar    float64
	MaxScalar    float64

	// PathCount is the number of distinct execution paths observed
	// across the window; identical paths from different candidates
	// collapse.
	PathCount int

	// CPUErrors totals the emulation fault histograms of the window,
	// keyed by fault description.
	CPUErrors map[string]int
}

// Sink persists window summaries somewhere an offline pipeline can read
// them back.
type Sink interface {
	Write(summary Summary) error
	Close() error
}

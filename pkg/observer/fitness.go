package observer

import (
	"context"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/XiaoConstantine/ropevo-go/pkg/emulator"
	"github.com/XiaoConstantine/ropevo-go/pkg/logging"
)

// FitnessObserver watches scalar fitness and emulation profiles through a
// sliding window, logging a digest of the window every reportEvery
// observations and handing the same digest to each sink.
type FitnessObserver struct {
	runID  string
	island int
	window *Window[Observation]
	sinks  []Sink
	logger *logging.Logger
}

var _ Observer[Observation] = (*FitnessObserver)(nil)

// NewFitnessObserver creates an observer for one island. Each observer
// draws a fresh run ID, which keys its summaries in every sink.
func NewFitnessObserver(island, windowSize, reportEvery int, sinks ...Sink) *FitnessObserver {
	fo := &FitnessObserver{
		runID:  uuid.NewString(),
		island: island,
		sinks:  sinks,
		logger: logging.GetLogger(),
	}
	fo.window = NewWindow[Observation](windowSize, reportEvery, fo.emit)
	return fo
}

// RunID returns the identifier keying this observer's summaries.
func (fo *FitnessObserver) RunID() string {
	return fo.runID
}

// Observe stores one observation in the window, reporting automatically
// when the report interval comes due.
func (fo *FitnessObserver) Observe(ob Observation) {
	fo.window.Insert(ob)
}

// Report summarizes the current window immediately, regardless of the
// report interval. Useful at the end of a run, when the final partial
// interval would otherwise go unreported.
func (fo *FitnessObserver) Report() {
	fo.emit(fo.window.Snapshot())
}

// Close flushes every sink. The observer is unusable afterwards.
func (fo *FitnessObserver) Close() error {
	var firstErr error
	for _, sink := range fo.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// emit digests a window snapshot into a Summary and sends it out. A sink
// failure is logged rather than propagated; reporting must never kill the
// run it reports on.
func (fo *FitnessObserver) emit(window []Observation) {
	if len(window) == 0 {
		return
	}
	summary := Summarize(fo.runID, fo.island, window)

	ctx := context.Background()
	fo.logger.EpochSummary(ctx, uint64(summary.Generation), summary.MeanScalar, summary.MinScalar)
	fo.logger.Debug(ctx, "window of %d: scalar stddev %.4f, %d distinct paths, %d fault classes",
		summary.Count, summary.StdDevScalar, summary.PathCount, len(summary.CPUErrors))

	for _, sink := range fo.sinks {
		if err := sink.Write(summary); err != nil {
			fo.logger.Warn(ctx, "observation sink failed: %v", err)
		}
	}
}

// Summarize folds a window of observations into its quantitative digest.
func Summarize(runID string, island int, window []Observation) Summary {
	summary := Summary{
		RunID:     runID,
		Island:    island,
		CPUErrors: make(map[string]int),
	}
	if len(window) == 0 {
		return summary
	}

	scalars := make([]float64, 0, len(window))
	paths := emulator.NewPrefixSet[emulator.Block]()
	for _, ob := range window {
		if ob.Generation > summary.Generation {
			summary.Generation = ob.Generation
		}
		scalars = append(scalars, ob.Scalar)
		if ob.Profile == nil {
			continue
		}
		for _, path := range ob.Profile.Paths.Sequences() {
			paths.Insert(path)
		}
		for code, n := range ob.Profile.CPUErrors {
			summary.CPUErrors[code.Error()] += n
		}
	}

	summary.Count = len(scalars)
	summary.MeanScalar = stat.Mean(scalars, nil)
	if len(scalars) > 1 {
		summary.StdDevScalar = stat.StdDev(scalars, nil)
	}
	summary.MinScalar = floats.Min(scalars)
	summary.MaxScalar = floats.Max(scalars)
	summary.PathCount = paths.Len()
	return summary
}

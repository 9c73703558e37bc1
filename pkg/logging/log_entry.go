package logging

import "context"

// LogEntry represents a structured log record with fields particularly relevant to evolutionary runs
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Run-specific fields
	Run    string      // Name of the population being evolved
	Island *IslandInfo // Island coordinates, when the context carries them

	// General structured data
	Fields map[string]interface{}
}

// IslandInfo pins a log record to a point in an evolutionary run
type IslandInfo struct {
	ID    int
	Epoch uint64
}

// Context keys for run-scoped values.
type runKeyType struct{}
type islandKeyType struct{}

var (
	runKey    = runKeyType{}
	islandKey = islandKeyType{}
)

// WithRun attaches a population name to the context so every log record
// emitted downstream carries it.
func WithRun(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, runKey, name)
}

// GetRun retrieves the population name from the context.
func GetRun(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(runKey).(string)
	return name, ok
}

// WithIsland attaches island coordinates to the context.
func WithIsland(ctx context.Context, info *IslandInfo) context.Context {
	return context.WithValue(ctx, islandKey, info)
}

// GetIsland retrieves island coordinates from the context.
func GetIsland(ctx context.Context) (*IslandInfo, bool) {
	info, ok := ctx.Value(islandKey).(*IslandInfo)
	return info, ok
}

package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

var (
	defaultLogger *Logger
	mu            sync.RWMutex
)

// Logger fans log records out to its outputs. Records below the configured
// severity are dropped before formatting, and DEBUG records can additionally
// be sampled, since per-candidate logging inside a selection loop produces
// far more records than anyone reads.
type Logger struct {
	mu         sync.Mutex
	severity   Severity
	outputs    []Output
	sampleRate uint32
	debugSeen  atomic.Uint64
	fields     map[string]interface{}
}

// Output is a logging destination.
type Output interface {
	Write(LogEntry) error
	Sync() error
	Close() error
}

// Config configures a Logger.
type Config struct {
	Severity Severity
	Outputs  []Output

	// SampleRate keeps every Nth DEBUG record when above 1. Other
	// severities are never sampled.
	SampleRate uint32

	// DefaultFields are attached to every record.
	DefaultFields map[string]interface{}
}

func NewLogger(cfg Config) *Logger {
	return &Logger{
		severity:   cfg.Severity,
		outputs:    cfg.Outputs,
		sampleRate: cfg.SampleRate,
		fields:     cfg.DefaultFields,
	}
}

func (l *Logger) logf(ctx context.Context, s Severity, format string, args ...interface{}) {
	if s < l.severity {
		return
	}
	if s == DEBUG && l.sampleRate > 1 {
		if l.debugSeen.Add(1)%uint64(l.sampleRate) != 0 {
			return
		}
	}

	pc, file, line, _ := runtime.Caller(2)
	fn := runtime.FuncForPC(pc).Name()

	entry := LogEntry{
		Time:     time.Now().UnixNano(),
		Severity: s,
		Message:  fmt.Sprintf(format, args...),
		File:     filepath.Base(file),
		Line:     line,
		Function: filepath.Base(fn),
		Fields:   make(map[string]interface{}, len(l.fields)),
	}

	if ctx != nil {
		if run, ok := GetRun(ctx); ok {
			entry.Run = run
		}
		if island, ok := GetIsland(ctx); ok {
			entry.Island = island
		}
	}

	for k, v := range l.fields {
		entry.Fields[k] = v
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, out := range l.outputs {
		if err := out.Write(entry); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write log entry: %v\n", err)
		}
	}
}

// EpochSummary logs a one-line digest of an epoch, keyed to the island the
// context carries. Observers call this once per reporting window.
func (l *Logger) EpochSummary(ctx context.Context, epoch uint64, meanFitness, bestFitness float64) {
	if l.severity > INFO {
		return
	}

	l.Info(ctx, "epoch %d: mean fitness %v, best %v",
		epoch,
		meanFitness,
		bestFitness,
	)
}

func (l *Logger) Debug(ctx context.Context, format string, args ...interface{}) {
	l.logf(ctx, DEBUG, format, args...)
}

func (l *Logger) Info(ctx context.Context, format string, args ...interface{}) {
	l.logf(ctx, INFO, format, args...)
}

func (l *Logger) Warn(ctx context.Context, format string, args ...interface{}) {
	l.logf(ctx, WARN, format, args...)
}

func (l *Logger) Error(ctx context.Context, format string, args ...interface{}) {
	l.logf(ctx, ERROR, format, args...)
}

// GetLogger returns the global logger, creating a console logger on first
// use. The ROPEVO_LOG environment variable sets the initial severity; unset
// or unrecognized means INFO.
func GetLogger() *Logger {
	mu.RLock()
	if l := defaultLogger; l != nil {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(Config{
			Severity: ParseSeverity(os.Getenv("ROPEVO_LOG")),
			Outputs: []Output{
				NewConsoleOutput(false),
			},
		})
	}
	return defaultLogger
}

// SetLogger installs l as the global logger.
func SetLogger(l *Logger) {
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ConsoleOutput formats logs for human readability.
type ConsoleOutput struct {
	mu     sync.Mutex
	writer io.Writer
	color  bool // Whether to use ANSI color codes
}

type ConsoleOutputOption func(*ConsoleOutput)

func WithColor(enabled bool) ConsoleOutputOption {
	return func(c *ConsoleOutput) {
		c.color = enabled
	}
}

func NewConsoleOutput(useStderr bool, opts ...ConsoleOutputOption) *ConsoleOutput {
	// Choose the appropriate writer based on useStderr flag
	writer := os.Stdout
	if useStderr {
		writer = os.Stderr
	}

	// Create the base console output
	c := &ConsoleOutput{
		writer: writer,
		color:  true, // Enable colors by default
	}

	// Apply any provided options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Helper function to get ANSI color codes for different severity levels.
func getSeverityColor(s Severity) string {
	switch s {
	case DEBUG:
		return "\033[37m" // Gray
	case INFO:
		return "\033[32m" // Green
	case WARN:
		return "\033[33m" // Yellow
	case ERROR:
		return "\033[31m" // Red
	case FATAL:
		return "\033[35m" // Magenta
	default:
		return ""
	}
}

func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}

	var result string
	for k, v := range fields {
		// Handle special fields like serialized chains and patterns
		if k == "chain" || k == "pattern" {
			// Truncate long text for console display
			str := fmt.Sprintf("%v", v)
			if len(str) > 100 {
				str = str[:97] + "..."
			}
			result += fmt.Sprintf("%s=%q ", k, str)
		} else {
			result += fmt.Sprintf("%s=%v ", k, v)
		}
	}

	return result
}

func (o *ConsoleOutput) Write(e LogEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	timestamp := time.Unix(0, e.Time).Format("2006-01-02 15:04:05.000")

	var levelColor, resetColor string
	if o.color {
		levelColor = getSeverityColor(e.Severity)
		resetColor = "\033[0m"
	}

	// Format for easy reading
	basic := fmt.Sprintf("%s %s%-5s%s [%s:%d] %s",
		timestamp,
		levelColor,
		e.Severity,
		resetColor,
		e.File,
		e.Line,
		e.Message,
	)

	// Add run-specific information if present
	if e.Run != "" {
		basic += fmt.Sprintf(" [run=%s]", e.Run)
	}

	if e.Island != nil {
		basic += fmt.Sprintf(" [island=%d epoch=%d]", e.Island.ID, e.Island.Epoch)
	}
	// Add structured fields if any exist
	if len(e.Fields) > 0 {
		fields := formatFields(e.Fields)
		basic += " " + fields
	}

	_, err := fmt.Fprintln(o.writer, basic)

	return err
}

func (c *ConsoleOutput) Sync() error {
	if syncer, ok := c.writer.(interface{ Sync() error }); ok {
		return syncer.Sync()
	}
	return nil
}

// Close cleans up any resources.
func (c *ConsoleOutput) Close() error {
	if closer, ok := c.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// fileWriter is the part of *os.File the file output needs.
type fileWriter interface {
	io.Writer
	Sync() error
	Close() error
}

// fileRecord is the JSONL form a LogEntry takes on disk.
type fileRecord struct {
	Time     string                 `json:"time"`
	Level    string                 `json:"level"`
	File     string                 `json:"file"`
	Line     int                    `json:"line"`
	Function string                 `json:"function,omitempty"`
	Message  string                 `json:"message"`
	Run      string                 `json:"run,omitempty"`
	Island   *int                   `json:"island,omitempty"`
	Epoch    *uint64                `json:"epoch,omitempty"`
	Fields   map[string]interface{} `json:"fields,omitempty"`
}

// FileOutput appends log entries to a JSONL file, rotating it when it grows
// past a size limit. Long runs produce a lot of epoch chatter; rotation keeps
// the data directory bounded.
type FileOutput struct {
	mu         sync.Mutex
	file       fileWriter
	path       string
	rotateSize int64
	curSize    int64
	maxFiles   int
}

type FileOutputOption func(*FileOutput)

// WithRotation caps the log file at maxSize bytes and keeps at most maxFiles
// rotated backups.
func WithRotation(maxSize int64, maxFiles int) FileOutputOption {
	return func(f *FileOutput) {
		f.rotateSize = maxSize
		f.maxFiles = maxFiles
	}
}

func NewFileOutput(path string, opts ...FileOutputOption) (*FileOutput, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	var curSize int64 = 0
	if err == nil {
		curSize = info.Size()
	}

	output := &FileOutput{
		file:    file,
		path:    path,
		curSize: curSize,
	}

	for _, opt := range opts {
		opt(output)
	}

	return output, nil
}

func (f *FileOutput) Write(e LogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	record := fileRecord{
		Time:     time.Unix(0, e.Time).Format(time.RFC3339Nano),
		Level:    e.Severity.String(),
		File:     e.File,
		Line:     e.Line,
		Function: e.Function,
		Message:  e.Message,
		Run:      e.Run,
	}
	if e.Island != nil {
		record.Island = &e.Island.ID
		record.Epoch = &e.Island.Epoch
	}
	if len(e.Fields) > 0 {
		record.Fields = e.Fields
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}
	data = append(data, '\n')

	entrySize := int64(len(data))
	if f.rotateSize > 0 && (f.curSize+entrySize) >= f.rotateSize {
		if err := f.rotate(); err != nil {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
		f.curSize = 0
	}

	n, err := f.file.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write log entry: %w", err)
	}

	f.curSize += int64(n)
	return nil
}

func (f *FileOutput) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Sync()
}

func (f *FileOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}

func (f *FileOutput) rotate() error {
	if err := f.file.Close(); err != nil {
		return err
	}

	backupPath := fmt.Sprintf("%s.%s", f.path, time.Now().Format("20060102-150405"))
	if err := os.Rename(f.path, backupPath); err != nil {
		return err
	}

	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	f.file = file
	f.curSize = 0

	if f.maxFiles > 0 {
		if err := f.cleanOldLogFiles(); err != nil {
			fmt.Fprintf(os.Stderr, "Error cleaning old log files: %v\n", err)
		}
	}

	return nil
}

func (f *FileOutput) cleanOldLogFiles() error {
	dir := filepath.Dir(f.path)
	base := filepath.Base(f.path)

	files, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var logFiles []string
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		name := file.Name()
		if filepath.Base(f.path) != name && len(name) > len(base) && name[:len(base)] == base {
			logFiles = append(logFiles, filepath.Join(dir, name))
		}
	}

	if len(logFiles) > f.maxFiles {
		for i := 0; i < len(logFiles)-f.maxFiles; i++ {
			if err := os.Remove(logFiles[i]); err != nil {
				return err
			}
		}
	}

	return nil
}

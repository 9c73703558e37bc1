package observer

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/parquet"
	"github.com/apache/arrow/go/v13/parquet/pqarrow"

	"github.com/XiaoConstantine/ropevo-go/pkg/errors"
)

// summarySchema is the column layout of a summary Parquet file, one row
// per reported window.
var summarySchema = arrow.NewSchema([]arrow.Field{
	{Name: "run_id", Type: arrow.BinaryTypes.String},
	{Name: "island", Type: arrow.PrimitiveTypes.Int64},
	{Name: "generation", Type: arrow.PrimitiveTypes.Int64},
	{Name: "count", Type: arrow.PrimitiveTypes.Int64},
	{Name: "mean_scalar", Type: arrow.PrimitiveTypes.Float64},
	{Name: "stddev_scalar", Type: arrow.PrimitiveTypes.Float64},
	{Name: "min_scalar", Type: arrow.PrimitiveTypes.Float64},
	{Name: "max_scalar", Type: arrow.PrimitiveTypes.Float64},
	{Name: "path_count", Type: arrow.PrimitiveTypes.Int64},
	{Name: "cpu_errors", Type: arrow.BinaryTypes.String},
}, nil)

// parquetFlushEvery is how many buffered rows become one row group.
const parquetFlushEvery = 64

// ParquetSink appends window summaries as rows of a Parquet file, the
// hand-off format for offline analysis of a run.
type ParquetSink struct {
	mu      sync.Mutex
	writer  *pqarrow.FileWriter
	builder *array.RecordBuilder
	rows    int
	closed  bool
}

// NewParquetSink creates the Parquet file at path and prepares it for
// summary rows. The file is not readable until Close has written the
// footer.
func NewParquetSink(path string) (*ParquetSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to create summary file"),
			errors.Fields{"path": path},
		)
	}

	writer, err := pqarrow.NewFileWriter(summarySchema, f,
		parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		f.Close()
		return nil, errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to create summary writer"),
			errors.Fields{"path": path},
		)
	}

	return &ParquetSink{
		writer:  writer,
		builder: array.NewRecordBuilder(memory.DefaultAllocator, summarySchema),
	}, nil
}

// Write buffers one summary row, flushing a row group once enough rows
// have accumulated.
func (s *ParquetSink) Write(summary Summary) error {
	histogram, err := json.Marshal(summary.CPUErrors)
	if err != nil {
		return errors.Wrap(err, errors.InvalidInput, "failed to marshal error histogram")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New(errors.InvalidInput, "summary sink is closed")
	}

	s.builder.Field(0).(*array.StringBuilder).Append(summary.RunID)
	s.builder.Field(1).(*array.Int64Builder).Append(int64(summary.Island))
	s.builder.Field(2).(*array.Int64Builder).Append(int64(summary.Generation))
	s.builder.Field(3).(*array.Int64Builder).Append(int64(summary.Count))
	s.builder.Field(4).(*array.Float64Builder).Append(summary.MeanScalar)
	s.builder.Field(5).(*array.Float64Builder).Append(summary.StdDevScalar)
	s.builder.Field(6).(*array.Float64Builder).Append(summary.MinScalar)
	s.builder.Field(7).(*array.Float64Builder).Append(summary.MaxScalar)
	s.builder.Field(8).(*array.Int64Builder).Append(int64(summary.PathCount))
	s.builder.Field(9).(*array.StringBuilder).Append(string(histogram))
	s.rows++

	if s.rows >= parquetFlushEvery {
		return s.flush()
	}
	return nil
}

// flush writes the buffered rows as one row group. Callers hold the lock.
func (s *ParquetSink) flush() error {
	rec := s.builder.NewRecord()
	defer rec.Release()
	s.rows = 0

	if err := s.writer.Write(rec); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to write summary row group")
	}
	return nil
}

// Close flushes any buffered rows and writes the Parquet footer. The file
// only becomes a valid Parquet file once Close returns.
func (s *ParquetSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var flushErr error
	if s.rows > 0 {
		flushErr = s.flush()
	}
	s.builder.Release()

	// Writer close writes the footer and closes the underlying file.
	if err := s.writer.Close(); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to close summary file")
	}
	return flushErr
}

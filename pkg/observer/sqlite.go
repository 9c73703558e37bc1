package observer

import (
	"database/sql"
	"encoding/json"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/XiaoConstantine/ropevo-go/pkg/errors"
)

// SQLiteSink persists window summaries to a SQLite database. Summaries
// are keyed by (run_id, island, generation); re-reporting the same
// generation overwrites the earlier row, so the table always holds the
// freshest digest of each generation.
type SQLiteSink struct {
	db   *sql.DB
	mu   sync.Mutex
	path string

	initialized sync.Once
}

// NewSQLiteSink opens (or creates) the database at path. ":memory:" gives
// an in-memory database, which the tests use.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to open observation database"),
			errors.Fields{"path": path},
		)
	}

	sink := &SQLiteSink{
		db:   db,
		path: path,
	}
	if err := sink.ensureInitialized(); err != nil {
		return nil, err
	}
	return sink, nil
}

func (s *SQLiteSink) ensureInitialized() error {
	var initErr error
	s.initialized.Do(func() {
		// WAL mode, so a reader can tail the run while it writes
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			initErr = errors.Wrap(err, errors.Unknown, "failed to enable WAL mode")
			return
		}

		query := `
        CREATE TABLE IF NOT EXISTS window_summaries (
            run_id TEXT NOT NULL,
            island INTEGER NOT NULL,
            generation INTEGER NOT NULL,
            count INTEGER NOT NULL,
            mean_scalar REAL NOT NULL,
            stddev_scalar REAL NOT NULL,
            min_scalar REAL NOT NULL,
            max_scalar REAL NOT NULL,
            path_count INTEGER NOT NULL,
            cpu_errors TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (run_id, island, generation)
        );
        `
		if _, err := s.db.Exec(query); err != nil {
			initErr = errors.WithFields(
				errors.Wrap(err, errors.Unknown, "failed to initialize observation database"),
				errors.Fields{"query": query},
			)
		}
	})
	return initErr
}

// Write upserts one summary row.
func (s *SQLiteSink) Write(summary Summary) error {
	if err := s.ensureInitialized(); err != nil {
		return err
	}

	histogram, err := json.Marshal(summary.CPUErrors)
	if err != nil {
		return errors.Wrap(err, errors.InvalidInput, "failed to marshal error histogram")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
    INSERT INTO window_summaries
        (run_id, island, generation, count, mean_scalar, stddev_scalar,
         min_scalar, max_scalar, path_count, cpu_errors)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    ON CONFLICT(run_id, island, generation) DO UPDATE SET
        count = excluded.count,
        mean_scalar = excluded.mean_scalar,
        stddev_scalar = excluded.stddev_scalar,
        min_scalar = excluded.min_scalar,
        max_scalar = excluded.max_scalar,
        path_count = excluded.path_count,
        cpu_errors = excluded.cpu_errors
    `

	_, err = s.db.Exec(query,
		summary.RunID, summary.Island, summary.Generation, summary.Count,
		summary.MeanScalar, summary.StdDevScalar, summary.MinScalar,
		summary.MaxScalar, summary.PathCount, string(histogram))
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to store window summary"),
			errors.Fields{
				"run_id":     summary.RunID,
				"island":     summary.Island,
				"generation": summary.Generation,
			},
		)
	}
	return nil
}

// RunInfo describes one (run, island) series present in a summary database.
type RunInfo struct {
	RunID          string
	Island         int
	Summaries      int
	LastGeneration int
}

// Runs lists the (run, island) series the database holds, ordered by run
// then island.
func (s *SQLiteSink) Runs() ([]RunInfo, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
    SELECT run_id, island, COUNT(*), MAX(generation)
    FROM window_summaries
    GROUP BY run_id, island
    ORDER BY run_id, island
    `)
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to list runs")
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(&info.RunID, &info.Island, &info.Summaries, &info.LastGeneration); err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "failed to scan run info")
		}
		runs = append(runs, info)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "error iterating runs")
	}
	return runs, nil
}

// Summaries reads back every summary of a run for one island, in
// generation order.
func (s *SQLiteSink) Summaries(runID string, island int) ([]Summary, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
    SELECT run_id, island, generation, count, mean_scalar, stddev_scalar,
           min_scalar, max_scalar, path_count, cpu_errors
    FROM window_summaries
    WHERE run_id = ? AND island = ?
    ORDER BY generation
    `, runID, island)
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to query window summaries")
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var summary Summary
		var histogram string
		if err := rows.Scan(&summary.RunID, &summary.Island, &summary.Generation,
			&summary.Count, &summary.MeanScalar, &summary.StdDevScalar,
			&summary.MinScalar, &summary.MaxScalar, &summary.PathCount,
			&histogram); err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "failed to scan window summary")
		}
		if err := json.Unmarshal([]byte(histogram), &summary.CPUErrors); err != nil {
			return nil, errors.Wrap(err, errors.Parsing, "failed to unmarshal error histogram")
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "error iterating window summaries")
	}
	return summaries, nil
}

// Close closes the underlying database.
func (s *SQLiteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to close observation database")
	}
	return nil
}

// Package history keeps an optional SQLite journal of runs and iterations.
// It is pure observability: the loop writes to it and never reads it back,
// so a journal failure degrades to a log line rather than stopping a run.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/cadence/internal/validation"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    mode        TEXT NOT NULL,
    started_at  TIMESTAMP NOT NULL,
    stop_reason TEXT,
    iterations  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS iterations (
    run_id      TEXT NOT NULL REFERENCES runs(id),
    iteration   INTEGER NOT NULL,
    passed      INTEGER NOT NULL,
    failed      INTEGER NOT NULL,
    warnings    INTEGER NOT NULL,
    errors      INTEGER NOT NULL,
    tool_failed INTEGER NOT NULL,
    has_result  INTEGER NOT NULL,
    recorded_at TIMESTAMP NOT NULL,
    PRIMARY KEY (run_id, iteration)
);
`

// Store manages the SQLite history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the history database at path. The
// special path ":memory:" opens an in-memory database for tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// StartRun records the beginning of a run.
func (s *Store) StartRun(id, mode string) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, mode, started_at) VALUES (?, ?, ?)`,
		id, mode, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record run start: %w", err)
	}
	return nil
}

// FinishRun records the stop reason and iteration count of a run.
func (s *Store) FinishRun(id, reason string, iterations int) error {
	_, err := s.db.Exec(
		`UPDATE runs SET stop_reason = ?, iterations = ? WHERE id = ?`,
		reason, iterations, id,
	)
	if err != nil {
		return fmt.Errorf("record run finish: %w", err)
	}
	return nil
}

// RunCount returns the number of recorded runs.
func (s *Store) RunCount() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Journal binds the store to one run id for per-iteration recording.
func (s *Store) Journal(runID string) *RunJournal {
	return &RunJournal{store: s, runID: runID}
}

// RunJournal records iterations for a single run. It satisfies loop.Journal.
type RunJournal struct {
	store *Store
	runID string
}

// RecordIteration writes one iteration row.
func (j *RunJournal) RecordIteration(iteration int, snap validation.Snapshot, hasResult bool) error {
	_, err := j.store.db.Exec(
		`INSERT INTO iterations
		 (run_id, iteration, passed, failed, warnings, errors, tool_failed, has_result, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.runID, iteration, snap.Passed, snap.Failed, snap.Warnings, snap.Errors,
		boolToInt(snap.ToolFailed()), boolToInt(hasResult), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record iteration %d: %w", iteration, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

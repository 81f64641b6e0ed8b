package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/giantswarm/readyproc/internal/fileutil"

	// Register the pure-Go SQLite driver (no CGO required).
	_ "modernc.org/sqlite"
)

// Outcome is the final (or current) state of a recorded run.
type Outcome string

const (
	OutcomeRunning       Outcome = "running"
	OutcomeReady         Outcome = "ready"
	OutcomePrematureExit Outcome = "premature_exit"
	OutcomeStopped       Outcome = "stopped"
	OutcomeExited        Outcome = "exited"
)

// Run is one start attempt.
type Run struct {
	ID        int64
	Command   string
	Reference string
	PID       int
	StartedAt time.Time
	ReadyAt   time.Time // zero if the process never became ready
	EndedAt   time.Time // zero while running
	Outcome   Outcome
	ExitCode  int    // meaningful only once ended and Signal is empty
	Signal    string // signal name if a signal ended the process
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	command    TEXT    NOT NULL,
	reference  TEXT    NOT NULL DEFAULT '',
	pid        INTEGER NOT NULL,
	started_at INTEGER NOT NULL,
	ready_at   INTEGER,
	ended_at   INTEGER,
	outcome    TEXT    NOT NULL,
	exit_code  INTEGER,
	signal     TEXT    NOT NULL DEFAULT ''
)`

// Store is a run ledger backed by one SQLite file.
type Store struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// Open opens (creating if needed) the ledger at path. The parent directory
// is created if missing.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := fileutil.EnsureDirForFile(path); err != nil {
		return nil, fmt.Errorf("prepare history db: %w", err)
	}

	// WAL and a busy timeout let parallel test binaries share one ledger.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema in %s: %w", path, err)
	}
	logger.Debug("history db opened", "path", path)
	return &Store{db: db, path: path, log: logger}, nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Begin records a new run in state running and returns its ID.
func (s *Store) Begin(ctx context.Context, r Run) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (command, reference, pid, started_at, outcome) VALUES (?, ?, ?, ?, ?)`,
		r.Command, r.Reference, r.PID, r.StartedAt.UnixMilli(), string(OutcomeRunning))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// MarkReady records the moment run id became ready.
func (s *Store) MarkReady(ctx context.Context, id int64, at time.Time) error {
	return s.update(ctx, id,
		`UPDATE runs SET ready_at = ?, outcome = ? WHERE id = ?`,
		at.UnixMilli(), string(OutcomeReady), id)
}

// Finish records how run id ended.
func (s *Store) Finish(ctx context.Context, id int64, outcome Outcome, exitCode int, signal string, at time.Time) error {
	return s.update(ctx, id,
		`UPDATE runs SET ended_at = ?, outcome = ?, exit_code = ?, signal = ? WHERE id = ?`,
		at.UnixMilli(), string(outcome), exitCode, signal, id)
}

// ErrRunNotFound is returned when an update targets an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

func (s *Store) update(ctx context.Context, id int64, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update run %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update run %d: %w", id, ErrRunNotFound)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, command, reference, pid, started_at, ready_at, ended_at, outcome, exit_code, signal
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows.Err() below catches read errors

	var runs []Run
	for rows.Next() {
		var (
			r                Run
			started          int64
			readyAt, endedAt sql.NullInt64
			exitCode         sql.NullInt64
			outcome          string
		)
		if err := rows.Scan(&r.ID, &r.Command, &r.Reference, &r.PID, &started,
			&readyAt, &endedAt, &outcome, &exitCode, &r.Signal); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		if readyAt.Valid {
			r.ReadyAt = time.UnixMilli(readyAt.Int64)
		}
		if endedAt.Valid {
			r.EndedAt = time.UnixMilli(endedAt.Int64)
		}
		if exitCode.Valid {
			r.ExitCode = int(exitCode.Int64)
		}
		r.Outcome = Outcome(outcome)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close history db %s: %w", s.path, err)
	}
	return nil
}

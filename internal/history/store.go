package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"setlint/internal/qc"
)

// Entry is one recorded run.
type Entry struct {
	RunID       string
	InputPath   string
	InputSHA256 string
	GeneratedAt time.Time
	Summary     qc.Summary
}

// Store persists run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id        TEXT PRIMARY KEY,
    input_path    TEXT NOT NULL,
    input_sha256  TEXT NOT NULL,
    generated_at  TEXT NOT NULL,
    total_tracks  INTEGER NOT NULL,
    issue_tracks  INTEGER NOT NULL,
    warning_tracks INTEGER NOT NULL,
    deactivated   INTEGER NOT NULL,
    muted         INTEGER NOT NULL,
    silent        INTEGER NOT NULL,
    routing_breaks INTEGER NOT NULL,
    missing_routes INTEGER NOT NULL,
    dead_buses    INTEGER NOT NULL,
    orphan_buses  INTEGER NOT NULL,
    devices       INTEGER NOT NULL,
    devices_off   INTEGER NOT NULL,
    devices_off_unexplained INTEGER NOT NULL,
    devices_off_automated   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON runs(generated_at);
CREATE INDEX IF NOT EXISTS idx_runs_input_sha256 ON runs(input_sha256);
`

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{
		db:   db,
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Record inserts one run. The file lock serializes concurrent CLI writers;
// SQLite's own locking only covers the statement, not the invocation.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.RunID == "" {
		return errors.New("history entry requires a run id")
	}
	ctx = ensureContext(ctx)

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire history lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	const insert = `
INSERT INTO runs (
    run_id, input_path, input_sha256, generated_at,
    total_tracks, issue_tracks, warning_tracks,
    deactivated, muted, silent, routing_breaks, missing_routes,
    dead_buses, orphan_buses,
    devices, devices_off, devices_off_unexplained, devices_off_automated
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	sum := e.Summary
	err := retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx, insert,
			e.RunID, e.InputPath, e.InputSHA256, e.GeneratedAt.UTC().Format(time.RFC3339),
			sum.TotalTracks, sum.IssueTracks, sum.WarningTracks,
			sum.Deactivated, sum.Muted, sum.Silent, sum.RoutingBreaks, sum.MissingRoutes,
			sum.DeadBuses, sum.OrphanBuses,
			sum.Devices, sum.DevicesOff, sum.DevicesOffUnexplained, sum.DevicesOffAutomated,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("record run %s: %w", e.RunID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	ctx = ensureContext(ctx)

	const query = `
SELECT run_id, input_path, input_sha256, generated_at,
       total_tracks, issue_tracks, warning_tracks,
       deactivated, muted, silent, routing_breaks, missing_routes,
       dead_buses, orphan_buses,
       devices, devices_off, devices_off_unexplained, devices_off_automated
FROM runs
ORDER BY generated_at DESC, run_id DESC
LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ForInput returns every run recorded for the given content hash, newest
// first.
func (s *Store) ForInput(ctx context.Context, sha256 string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	ctx = ensureContext(ctx)

	const query = `
SELECT run_id, input_path, input_sha256, generated_at,
       total_tracks, issue_tracks, warning_tracks,
       deactivated, muted, silent, routing_breaks, missing_routes,
       dead_buses, orphan_buses,
       devices, devices_off, devices_off_unexplained, devices_off_automated
FROM runs
WHERE input_sha256 = ?
ORDER BY generated_at DESC, run_id DESC
LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, sha256, limit)
	if err != nil {
		return nil, fmt.Errorf("query history for input: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			ts string
		)
		sum := &e.Summary
		if err := rows.Scan(
			&e.RunID, &e.InputPath, &e.InputSHA256, &ts,
			&sum.TotalTracks, &sum.IssueTracks, &sum.WarningTracks,
			&sum.Deactivated, &sum.Muted, &sum.Silent, &sum.RoutingBreaks, &sum.MissingRoutes,
			&sum.DeadBuses, &sum.OrphanBuses,
			&sum.Devices, &sum.DevicesOff, &sum.DevicesOffUnexplained, &sum.DevicesOffAutomated,
		); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
			e.GeneratedAt = parsed
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return entries, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

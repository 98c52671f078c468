package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	_ "modernc.org/sqlite"

	"rolloutlog/internal/logs"
)

// Store manages event aggregation backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    batch_id TEXT NOT NULL,
    step INTEGER NOT NULL,
    worker INTEGER NOT NULL,
    event TEXT NOT NULL,
    duration_sec REAL,
    timestamp TEXT NOT NULL,
    imported_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_step_event ON events (step, event);
CREATE INDEX IF NOT EXISTS idx_events_batch ON events (batch_id);
`

// Open initializes or connects to the report database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create report directory: %w", err)
		}
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

	store := &Store{db: db, path: path}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location of the database.
func (s *Store) Path() string {
	return s.path
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

// ImportResult describes one completed import.
type ImportResult struct {
	BatchID string
	Files   int
	Events  int
}

// ImportDir walks root for step_*/worker_*.jsonl files and inserts every
// event under a fresh batch id.
func (s *Store) ImportDir(ctx context.Context, root string) (ImportResult, error) {
	result := ImportResult{BatchID: uuid.NewString()}

	paths, err := workerFiles(root)
	if err != nil {
		return result, err
	}

	for _, path := range paths {
		n, err := s.importFile(ctx, result.BatchID, path)
		if err != nil {
			return result, err
		}
		result.Files++
		result.Events += n
	}
	return result, nil
}

func workerFiles(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read log root %s: %w", root, err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "step_") {
			continue
		}
		stepDir := filepath.Join(root, entry.Name())
		matches, err := filepath.Glob(filepath.Join(stepDir, "worker_*.jsonl"))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", stepDir, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *Store) importFile(ctx context.Context, batchID, path string) (int, error) {
	events, err := logs.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	importedAt := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (batch_id, step, worker, event, duration_sec, timestamp, imported_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, evt := range events {
		var duration any
		if evt.DurationSec != nil {
			duration = *evt.DurationSec
		}
		if err := retryOnBusy(ctx, func() error {
			_, err := stmt.ExecContext(ctx, batchID, evt.Step, evt.Worker, evt.Event, duration, evt.Timestamp, importedAt)
			return err
		}); err != nil {
			return 0, fmt.Errorf("insert event from %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(events), nil
}

// EventSummary aggregates one event name.
type EventSummary struct {
	Event    string
	Count    int
	Timed    int
	TotalSec float64
	MeanSec  float64
	MaxSec   float64
}

// Summarize returns per-event aggregates, optionally restricted to one step
// (step < 0 means all steps). Event names come back in locale-aware order.
func (s *Store) Summarize(ctx context.Context, step int) ([]EventSummary, error) {
	query := `
        SELECT event,
               COUNT(*),
               COUNT(duration_sec),
               COALESCE(SUM(duration_sec), 0),
               COALESCE(AVG(duration_sec), 0),
               COALESCE(MAX(duration_sec), 0)
        FROM events`
	var args []any
	if step >= 0 {
		query += " WHERE step = ?"
		args = append(args, step)
	}
	query += " GROUP BY event"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summarize events: %w", err)
	}
	defer rows.Close()

	var summaries []EventSummary
	for rows.Next() {
		var summary EventSummary
		if err := rows.Scan(&summary.Event, &summary.Count, &summary.Timed,
			&summary.TotalSec, &summary.MeanSec, &summary.MaxSec); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}

	collator := collate.New(language.English)
	sort.Slice(summaries, func(i, j int) bool {
		return collator.CompareString(summaries[i].Event, summaries[j].Event) < 0
	})
	return summaries, nil
}

// Steps returns the distinct steps present in the store, ascending.
func (s *Store) Steps(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT step FROM events ORDER BY step")
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var steps []int
	for rows.Next() {
		var step int
		if err := rows.Scan(&step); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

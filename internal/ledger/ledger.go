// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger persists run history and every upstream request attempt
// in SQLite. The request table is the persisted request counter used to
// track consumption of the provider's monthly quota across runs.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/marchanero/scholar-engine/internal/crawl"
	"github.com/marchanero/scholar-engine/pkg/types"
)

// DefaultPath is used when the configuration leaves the ledger path empty.
const DefaultPath = "data/scholar-engine.db"

// timeFormat is fixed-width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000Z"

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// Store manages the ledger database.
type Store struct {
	db *sql.DB
}

// Run is one pipeline invocation.
type Run struct {
	ID                 string
	AuthorID           string
	StartOffset        int
	StartedAt          time.Time
	FinishedAt         *time.Time
	Status             string
	Requests           int
	Publications       int
	Completeness       types.Completeness
	StopReason         types.StopReason
	ContinuationOffset *int
	Error              string
}

// Open opens or creates the ledger database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			author_id TEXT NOT NULL,
			start_offset INTEGER NOT NULL DEFAULT 0,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			status TEXT NOT NULL,
			requests INTEGER NOT NULL DEFAULT 0,
			publications INTEGER NOT NULL DEFAULT 0,
			completeness TEXT,
			stop_reason TEXT,
			continuation_offset INTEGER,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS requests (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT REFERENCES runs(id),
			author_id TEXT NOT NULL,
			page_offset INTEGER NOT NULL,
			attempt INTEGER NOT NULL,
			status INTEGER,
			class TEXT NOT NULL,
			error_class TEXT,
			duration_ms INTEGER,
			requested_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_requested_at ON requests(requested_at)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_run_id ON requests(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_author_started ON runs(author_id, started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// StartRun records the beginning of a run.
func (s *Store) StartRun(ctx context.Context, id, authorID string, startOffset int, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, author_id, start_offset, started_at, status) VALUES (?, ?, ?, ?, ?)`,
		id, authorID, startOffset, formatTime(at), StatusRunning)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", id, err)
	}
	return nil
}

// FinishRun records the outcome of a run. runErr, when non-nil, marks the
// run failed.
func (s *Store) FinishRun(ctx context.Context, id string, at time.Time, state types.PaginationState, publications int, runErr error) error {
	status, msg := StatusSucceeded, ""
	if runErr != nil {
		status, msg = StatusFailed, runErr.Error()
	}
	var cont sql.NullInt64
	if state.ContinuationOffset != nil {
		cont = sql.NullInt64{Int64: int64(*state.ContinuationOffset), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, requests = ?, publications = ?,
			completeness = ?, stop_reason = ?, continuation_offset = ?, error = ?
		WHERE id = ?`,
		formatTime(at), status, state.RequestCount, publications,
		string(state.Completeness), string(state.StopReason), cont, msg, id)
	if err != nil {
		return fmt.Errorf("updating run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// Recorder returns a crawl.RequestRecorder that attributes requests to
// runID. An empty runID records requests without a run.
func (s *Store) Recorder(runID string) crawl.RequestRecorder {
	return &recorder{store: s, runID: runID}
}

type recorder struct {
	store *Store
	runID string
}

// RecordRequest implements crawl.RequestRecorder.
func (r *recorder) RecordRequest(ctx context.Context, rec crawl.RequestRecord) error {
	var runID sql.NullString
	if r.runID != "" {
		runID = sql.NullString{String: r.runID, Valid: true}
	}
	var status sql.NullInt64
	if rec.Status != 0 {
		status = sql.NullInt64{Int64: int64(rec.Status), Valid: true}
	}
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO requests (run_id, author_id, page_offset, attempt, status, class, error_class, duration_ms, requested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.AuthorID, rec.Offset, rec.Attempt, status, rec.Class.String(),
		crawl.ErrorClass(rec.Err), rec.Duration.Milliseconds(), formatTime(rec.At))
	if err != nil {
		return fmt.Errorf("inserting request: %w", err)
	}
	return nil
}

// MonthlyUsage returns the number of requests recorded in the calendar
// month (UTC) containing at.
func (s *Store) MonthlyUsage(ctx context.Context, at time.Time) (int, error) {
	from, to := monthBounds(at)
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM requests WHERE requested_at >= ? AND requested_at < ?`,
		formatTime(from), formatTime(to)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting requests: %w", err)
	}
	return n, nil
}

// Run loads one run by ID.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, runColumns+` WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, runColumns+` ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LastContinuation returns the continuation offset of the newest finished
// run for authorID, or nil when that run was complete or none exists.
func (s *Store) LastContinuation(ctx context.Context, authorID string) (*int, error) {
	var cont sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT continuation_offset FROM runs
		WHERE author_id = ? AND finished_at IS NOT NULL
		ORDER BY started_at DESC LIMIT 1`, authorID).Scan(&cont)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !cont.Valid) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying continuation: %w", err)
	}
	v := int(cont.Int64)
	return &v, nil
}

const runColumns = `SELECT id, author_id, start_offset, started_at, finished_at, status, requests,
	publications, completeness, stop_reason, continuation_offset, error FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r                                 Run
		started                           string
		finished, completeness, stop, msg sql.NullString
		cont                              sql.NullInt64
	)
	err := sc.Scan(&r.ID, &r.AuthorID, &r.StartOffset, &started, &finished, &r.Status,
		&r.Requests, &r.Publications, &completeness, &stop, &cont, &msg)
	if err != nil {
		return Run{}, err
	}
	if r.StartedAt, err = parseTime(started); err != nil {
		return Run{}, err
	}
	if finished.Valid {
		t, err := parseTime(finished.String)
		if err != nil {
			return Run{}, err
		}
		r.FinishedAt = &t
	}
	r.Completeness = types.Completeness(completeness.String)
	r.StopReason = types.StopReason(stop.String)
	r.Error = msg.String
	if cont.Valid {
		v := int(cont.Int64)
		r.ContinuationOffset = &v
	}
	return r, nil
}

func monthBounds(at time.Time) (time.Time, time.Time) {
	at = at.UTC()
	from := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored time %q: %w", s, err)
	}
	return t, nil
}

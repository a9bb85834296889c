package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/core/runner"
)

// Run is one recorded suite execution.
type Run struct {
	ID          int64
	StartedAt   time.Time
	BaseURL     string
	Total       int
	Passed      int
	Failed      int
	Skipped     int
	SuccessRate float64
	Duration    time.Duration
	Checks      []Check
}

// OK reports whether every executed check passed.
func (r Run) OK() bool {
	return r.Passed == r.Total
}

// Check is one executed check within a Run.
type Check struct {
	Name           string
	Passed         bool
	StatusCode     int
	ExpectedStatus int
	Message        string
	Duration       time.Duration
}

var schema = map[string][]string{
	driverSQLite: {
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at INTEGER NOT NULL,
			base_url TEXT NOT NULL,
			total INTEGER NOT NULL,
			passed INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			success_rate REAL NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS checks (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			passed INTEGER NOT NULL,
			status_code INTEGER NOT NULL,
			expected_status INTEGER NOT NULL,
			message TEXT NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
	},
	driverPostgres: {
		`CREATE TABLE IF NOT EXISTS runs (
			id BIGSERIAL PRIMARY KEY,
			started_at BIGINT NOT NULL,
			base_url TEXT NOT NULL,
			total INTEGER NOT NULL,
			passed INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			success_rate DOUBLE PRECISION NOT NULL,
			duration_ms BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS checks (
			run_id BIGINT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			passed INTEGER NOT NULL,
			status_code INTEGER NOT NULL,
			expected_status INTEGER NOT NULL,
			message TEXT NOT NULL,
			duration_ms BIGINT NOT NULL
		)`,
	},
}

// Store records runs in the runs and checks tables.
type Store struct {
	client *Client
}

// OpenStore connects and creates the history tables if needed.
func OpenStore(ctx context.Context, connectionString string) (*Store, error) {
	client, err := NewClient(connectionString)
	if err != nil {
		return nil, err
	}
	s := &Store{client: client}
	if err := s.migrate(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	ctx, cancel := s.client.withTimeout(ctx)
	defer cancel()

	for _, stmt := range schema[s.client.driverName] {
		if _, err := s.client.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create history tables: %w", err)
		}
	}
	return nil
}

// NewRun converts a finished suite run into a history record.
func NewRun(startedAt time.Time, result *runner.RunResult) Run {
	sum := result.Summary
	run := Run{
		StartedAt:   startedAt,
		BaseURL:     result.Session.BaseURL,
		Total:       sum.Total,
		Passed:      sum.Passed,
		Failed:      sum.Failed,
		Skipped:     sum.Skipped,
		SuccessRate: sum.SuccessRate,
		Duration:    result.Duration,
	}
	for _, r := range result.Session.Results() {
		run.Checks = append(run.Checks, Check{
			Name:           r.Name,
			Passed:         r.Passed,
			StatusCode:     r.StatusCode,
			ExpectedStatus: r.ExpectedStatus,
			Message:        r.Message,
			Duration:       r.Duration,
		})
	}
	return run
}

// SaveRun stores run and its checks in one transaction and returns the new
// run id.
func (s *Store) SaveRun(ctx context.Context, run Run) (int64, error) {
	ctx, cancel := s.client.withTimeout(ctx)
	defer cancel()

	tx, err := s.client.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, s.client.rebind(
		`INSERT INTO runs (started_at, base_url, total, passed, failed, skipped, success_rate, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		run.StartedAt.UnixMilli(), run.BaseURL, run.Total, run.Passed, run.Failed,
		run.Skipped, run.SuccessRate, run.Duration.Milliseconds(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	insertCheck := s.client.rebind(
		`INSERT INTO checks (run_id, position, name, passed, status_code, expected_status, message, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, c := range run.Checks {
		if _, err := tx.ExecContext(ctx, insertCheck,
			id, i, c.Name, boolToInt(c.Passed), c.StatusCode, c.ExpectedStatus, c.Message, c.Duration.Milliseconds(),
		); err != nil {
			return 0, fmt.Errorf("failed to insert check %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// RecentRuns returns up to limit runs, newest first, without their checks.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx, cancel := s.client.withTimeout(ctx)
	defer cancel()

	rows, err := s.client.db.QueryContext(ctx, s.client.rebind(
		`SELECT id, started_at, base_url, total, passed, failed, skipped, success_rate, duration_ms
		 FROM runs ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			startedAt  int64
			durationMs int64
		)
		if err := rows.Scan(&r.ID, &startedAt, &r.BaseURL, &r.Total, &r.Passed, &r.Failed,
			&r.Skipped, &r.SuccessRate, &durationMs); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(startedAt)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

// Checks returns the checks of a run in execution order.
func (s *Store) Checks(ctx context.Context, runID int64) ([]Check, error) {
	ctx, cancel := s.client.withTimeout(ctx)
	defer cancel()

	rows, err := s.client.db.QueryContext(ctx, s.client.rebind(
		`SELECT name, passed, status_code, expected_status, message, duration_ms
		 FROM checks WHERE run_id = ? ORDER BY position`), runID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var checks []Check
	for rows.Next() {
		var (
			c          Check
			passed     int
			durationMs int64
		)
		if err := rows.Scan(&c.Name, &passed, &c.StatusCode, &c.ExpectedStatus, &c.Message, &durationMs); err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		c.Passed = passed != 0
		c.Duration = time.Duration(durationMs) * time.Millisecond
		checks = append(checks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return checks, nil
}

// LastRunPassed reports the outcome of the most recent run. ok is false when
// no run has been recorded.
func (s *Store) LastRunPassed(ctx context.Context) (passed, ok bool, err error) {
	ctx, cancel := s.client.withTimeout(ctx)
	defer cancel()

	var total, passedCount int
	err = s.client.db.QueryRowContext(ctx,
		`SELECT total, passed FROM runs ORDER BY id DESC LIMIT 1`,
	).Scan(&total, &passedCount)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("query failed: %w", err)
	}
	return total == passedCount, true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run statuses mirror the task statuses the worker writes to Notion.
const (
	RunRunning = "Running"
	RunDone    = "Done"
	RunIssue   = "Issue"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// Run is one execution of a task.
type Run struct {
	ID         string
	SessionID  string
	TaskID     string
	TaskTitle  string
	Worker     string
	Status     string
	Message    string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Step is one to-do executed within a run.
type Step struct {
	Position   int
	BlockID    string
	Command    string
	Success    bool
	Message    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// StartRun records the start of a task execution and returns the new run id.
func (j *Journal) StartRun(ctx context.Context, taskID, taskTitle, worker string) (string, error) {
	id := uuid.New().String()
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, session_id, task_id, task_title, worker, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, j.sessionID, taskID, taskTitle, worker, RunRunning, formatTime(time.Now()))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return id, nil
}

// RecordStep appends a step to a run.
func (j *Journal) RecordStep(ctx context.Context, runID string, step *Step) error {
	success := 0
	if step.Success {
		success = 1
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO steps (run_id, position, block_id, command, success, message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, step.Position, step.BlockID, step.Command, success, step.Message,
		formatTime(step.StartedAt), formatTime(step.FinishedAt))
	if err != nil {
		return fmt.Errorf("failed to insert step for run %s: %w", runID, err)
	}
	return nil
}

// FinishRun sets the final status of a run.
func (j *Journal) FinishRun(ctx context.Context, runID, status, message string) error {
	res, err := j.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, message = ?, finished_at = ? WHERE id = ?`,
		status, message, formatTime(time.Now()), runID)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

const runColumns = `id, session_id, task_id, task_title, worker, status, message, started_at, finished_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		r        Run
		started  string
		finished sql.NullString
	)
	if err := row.Scan(&r.ID, &r.SessionID, &r.TaskID, &r.TaskTitle, &r.Worker, &r.Status, &r.Message, &started, &finished); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by ListRuns
	}

	var err error
	if r.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if finished.Valid {
		t, err := parseTime(finished.String)
		if err != nil {
			return nil, err
		}
		r.FinishedAt = &t
	}
	return &r, nil
}

// ListRuns returns the most recent runs, newest first. An empty taskID lists all tasks.
func (j *Journal) ListRuns(ctx context.Context, taskID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	args := []any{}
	if taskID != "" {
		query += ` WHERE task_id = ?`
		args = append(args, taskID)
	}
	query += ` ORDER BY started_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// Steps returns the steps of a run in execution order.
func (j *Journal) Steps(ctx context.Context, runID string) ([]Step, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT position, block_id, command, success, message, started_at, finished_at
		FROM steps WHERE run_id = ? ORDER BY position, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var steps []Step
	for rows.Next() {
		var (
			s                 Step
			success           int
			started, finished string
		)
		if err := rows.Scan(&s.Position, &s.BlockID, &s.Command, &success, &s.Message, &started, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		s.Success = success != 0
		if s.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if s.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate steps: %w", err)
	}
	return steps, nil
}

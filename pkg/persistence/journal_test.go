package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func latestRun(t *testing.T, j *Journal, taskID string) Run {
	t.Helper()
	runs, err := j.ListRuns(context.Background(), taskID, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	return runs[0]
}

func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"), "test-session")
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestRunLifecycle(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	runID, err := j.StartRun(ctx, "task-1", "Weekly report", "aeos")
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	run := latestRun(t, j, "task-1")
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, "test-session", run.SessionID)
	assert.Equal(t, "task-1", run.TaskID)
	assert.Equal(t, "Weekly report", run.TaskTitle)
	assert.Equal(t, RunRunning, run.Status)
	assert.Nil(t, run.FinishedAt)

	now := time.Now()
	require.NoError(t, j.RecordStep(ctx, runID, &Step{Position: 0, BlockID: "b1", Command: "say hi", Success: true, StartedAt: now, FinishedAt: now}))
	require.NoError(t, j.RecordStep(ctx, runID, &Step{Position: 1, BlockID: "b2", Command: "fail", Message: "boom", StartedAt: now, FinishedAt: now}))
	require.NoError(t, j.FinishRun(ctx, runID, RunIssue, "boom"))

	run = latestRun(t, j, "task-1")
	assert.Equal(t, RunIssue, run.Status)
	assert.Equal(t, "boom", run.Message)
	require.NotNil(t, run.FinishedAt)

	steps, err := j.Steps(ctx, runID)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.True(t, steps[0].Success)
	assert.Equal(t, "say hi", steps[0].Command)
	assert.False(t, steps[1].Success)
	assert.Equal(t, "boom", steps[1].Message)
	assert.WithinDuration(t, now, steps[0].StartedAt, time.Millisecond)
}

func TestRunNotFound(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	assert.ErrorIs(t, j.FinishRun(ctx, "missing", RunDone, ""), ErrRunNotFound)
}

func TestRecordStepRequiresRun(t *testing.T) {
	j := createTestJournal(t)
	now := time.Now()
	err := j.RecordStep(context.Background(), "missing", &Step{Command: "x", StartedAt: now, FinishedAt: now})
	assert.Error(t, err, "foreign key must reject steps for unknown runs")
}

func TestListRuns(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	first, err := j.StartRun(ctx, "task-1", "One", "aeos")
	require.NoError(t, err)
	_, err = j.StartRun(ctx, "task-2", "Two", "aeos")
	require.NoError(t, err)
	third, err := j.StartRun(ctx, "task-1", "One", "aeos")
	require.NoError(t, err)

	all, err := j.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	runs, err := j.ListRuns(ctx, "task-1", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, third, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)

	limited, err := j.ListRuns(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSchemaVersion(t *testing.T) {
	j := createTestJournal(t)
	version, err := GetSchemaVersion(j.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)
}

func TestRefusesNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	db, err := sql.Open("sqlite", "file:"+path)
	require.NoError(t, err)
	_, err = GetSchemaVersion(db)
	require.NoError(t, err)
	require.NoError(t, setSchemaVersion(db, CurrentSchemaVersion+1))
	require.NoError(t, db.Close())

	_, err = Open(path, "s2")
	assert.ErrorContains(t, err, "newer than supported")
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path, "s1")
	require.NoError(t, err)
	runID, err := j.StartRun(context.Background(), "task-1", "Kept", "aeos")
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(path, "s2")
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	run := latestRun(t, j, "")
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, "s1", run.SessionID)
	assert.Equal(t, "Kept", run.TaskTitle)
}

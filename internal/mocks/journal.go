package mocks

import (
	"context"
	"fmt"
	"sync"

	"aeosinnotion/pkg/persistence"
)

// MockJournal is an in-memory run journal.
//
//nolint:govet // fieldalignment: mock struct layout optimized for readability
type MockJournal struct {
	// Err, when set, is returned by every call.
	Err error

	Runs  []persistence.Run
	Steps map[string][]persistence.Step

	mu sync.Mutex
}

// NewMockJournal creates an empty journal.
func NewMockJournal() *MockJournal {
	return &MockJournal{Steps: map[string][]persistence.Step{}}
}

// StartRun records a new run.
func (m *MockJournal) StartRun(_ context.Context, taskID, taskTitle, worker string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	id := fmt.Sprintf("run-%d", len(m.Runs)+1)
	m.Runs = append(m.Runs, persistence.Run{
		ID: id, TaskID: taskID, TaskTitle: taskTitle, Worker: worker, Status: persistence.RunRunning,
	})
	return id, nil
}

// RecordStep appends a step.
func (m *MockJournal) RecordStep(_ context.Context, runID string, step *persistence.Step) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Steps[runID] = append(m.Steps[runID], *step)
	return nil
}

// FinishRun sets the final status of a run.
func (m *MockJournal) FinishRun(_ context.Context, runID, status, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i := range m.Runs {
		if m.Runs[i].ID == runID {
			m.Runs[i].Status = status
			m.Runs[i].Message = message
			return nil
		}
	}
	return fmt.Errorf("%w: %s", persistence.ErrRunNotFound, runID)
}

// Snapshot returns a copy of the recorded runs.
func (m *MockJournal) Snapshot() []persistence.Run {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]persistence.Run(nil), m.Runs...)
}

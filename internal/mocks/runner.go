package mocks

import (
	"context"
	"sync"

	"aeosinnotion/pkg/aeos"
)

// MockRunner implements aeos.CommandRunner for testing.
//
//nolint:govet // fieldalignment: mock struct layout optimized for readability
type MockRunner struct {
	// RunCommandsFunc is called when RunCommands is invoked. Override to customize behavior.
	RunCommandsFunc func(ctx context.Context, inputs []string) aeos.Result

	// Inputs tracks every input dispatched, flattened in order.
	Inputs []string

	mu sync.Mutex
}

// NewMockRunner creates a runner whose commands all succeed with an empty message.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		RunCommandsFunc: func(context.Context, []string) aeos.Result { return aeos.Ok("") },
	}
}

// RunCommands implements aeos.CommandRunner.
func (m *MockRunner) RunCommands(ctx context.Context, inputs []string) aeos.Result {
	m.mu.Lock()
	m.Inputs = append(m.Inputs, inputs...)
	m.mu.Unlock()
	return m.RunCommandsFunc(ctx, inputs)
}

// OnRun maps inputs to results; unlisted inputs succeed with an empty message.
func (m *MockRunner) OnRun(results map[string]aeos.Result) {
	m.RunCommandsFunc = func(_ context.Context, inputs []string) aeos.Result {
		last := aeos.Ok("")
		for _, in := range inputs {
			if r, ok := results[in]; ok {
				last = r
			} else {
				last = aeos.Ok("")
			}
			if !last.Success {
				return last
			}
		}
		return last
	}
}

// Dispatched returns a copy of the inputs seen so far.
func (m *MockRunner) Dispatched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Inputs...)
}

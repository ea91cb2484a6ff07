package mocks

import (
	"context"
	"sync"
)

// GenerateCall records one Generate request.
type GenerateCall struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// MockTextGenerator implements aeos.TextGenerator for testing.
//
//nolint:govet // fieldalignment: mock struct layout optimized for readability
type MockTextGenerator struct {
	// GenerateFunc is called when Generate is invoked. Override to customize behavior.
	GenerateFunc func(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)

	// Calls tracks all calls to Generate for verification.
	Calls []GenerateCall

	mu sync.Mutex
}

// NewMockTextGenerator creates a generator that returns replies in order,
// repeating the last one when exhausted.
func NewMockTextGenerator(replies ...string) *MockTextGenerator {
	m := &MockTextGenerator{}
	m.GenerateFunc = func(context.Context, string, int, float64) (string, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if len(replies) == 0 {
			return "", nil
		}
		idx := len(m.Calls) - 1
		if idx >= len(replies) {
			idx = len(replies) - 1
		}
		return replies[idx], nil
	}
	return m
}

// Generate implements aeos.TextGenerator.
func (m *MockTextGenerator) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, GenerateCall{Prompt: prompt, MaxTokens: maxTokens, Temperature: temperature})
	m.mu.Unlock()
	return m.GenerateFunc(ctx, prompt, maxTokens, temperature)
}

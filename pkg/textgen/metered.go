package textgen

import (
	"context"
	"time"

	"aeosinnotion/pkg/logx"
	"aeosinnotion/pkg/metrics"
)

// Metered wraps a generator with token counting, metrics and debug logging.
type Metered struct {
	next     Generator
	provider string
	model    string
	counter  *TokenCounter
	recorder metrics.Recorder
	logger   *logx.Logger
}

// NewMetered wraps next. A tokenizer failure degrades to character-based estimates.
func NewMetered(next Generator, provider, model string, recorder metrics.Recorder) *Metered {
	logger := logx.NewLogger("textgen")
	counter, err := NewTokenCounter()
	if err != nil {
		logger.Warn("token counting falls back to estimates: %v", err)
	}
	return &Metered{
		next:     next,
		provider: provider,
		model:    model,
		counter:  counter,
		recorder: metrics.OrNop(recorder),
		logger:   logger,
	}
}

// Generate implements Generator.
func (m *Metered) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	start := time.Now()
	text, err := m.next.Generate(ctx, prompt, maxTokens, temperature)
	duration := time.Since(start)

	promptTokens := m.counter.Count(prompt)
	if err != nil {
		m.recorder.ObserveTextGen(m.provider, m.model, promptTokens, 0, false, duration)
		m.logger.Warn("%s/%s completion failed after %s: %v", m.provider, m.model, duration.Round(time.Millisecond), err)
		return "", err
	}

	completionTokens := m.counter.Count(text)
	m.recorder.ObserveTextGen(m.provider, m.model, promptTokens, completionTokens, true, duration)
	m.logger.Debug("%s/%s: %d prompt + %d completion tokens in %s", m.provider, m.model, promptTokens, completionTokens, duration.Round(time.Millisecond))
	return text, nil
}

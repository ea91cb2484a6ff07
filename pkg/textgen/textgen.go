// Package textgen provides the short-completion text generators used to derive task
// titles, icons and descriptions, backed by Anthropic, OpenAI, Google or Ollama.
package textgen

import (
	"context"
	"errors"
	"fmt"

	"aeosinnotion/pkg/config"
	"aeosinnotion/pkg/metrics"
)

// Generator produces a completion for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// ErrNotConfigured is returned by the disabled generator.
var ErrNotConfigured = errors.New("text generation is not configured")

// ErrEmptyResponse is returned when a provider answers without text.
var ErrEmptyResponse = errors.New("empty response from text generation provider")

// Disabled is the generator used when no provider is configured.
type Disabled struct{}

// Generate always fails with ErrNotConfigured.
func (Disabled) Generate(context.Context, string, int, float64) (string, error) {
	return "", ErrNotConfigured
}

// New builds the configured provider wrapped with token metering.
func New(cfg *config.TextGenConfig, recorder metrics.Recorder) (Generator, error) {
	var gen Generator
	switch cfg.Provider {
	case config.ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s is required for provider %s", config.EnvAnthropicAPIKey, cfg.Provider)
		}
		gen = NewAnthropic(cfg.APIKey, cfg.Model)
	case config.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s is required for provider %s", config.EnvOpenAIAPIKey, cfg.Provider)
		}
		gen = NewOpenAI(cfg.APIKey, cfg.Model)
	case config.ProviderGoogle:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s is required for provider %s", config.EnvGoogleAPIKey, cfg.Provider)
		}
		gen = NewGoogle(cfg.APIKey, cfg.Model)
	case config.ProviderOllama:
		gen = NewOllama(cfg.Host, cfg.Model)
	case config.ProviderNone, "":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown text generation provider: %s", cfg.Provider)
	}
	return NewMetered(gen, cfg.Provider, cfg.Model, recorder), nil
}

package textgen

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// Google generates text with Gemini models.
type Google struct {
	apiKey string
	model  string

	// The client needs a context to construct, so it is created on first use.
	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGoogle creates a Gemini-backed generator.
func NewGoogle(apiKey, model string) *Google {
	return &Google{apiKey: apiKey, model: model}
}

// Generate implements Generator.
func (g *Google) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	g.once.Do(func() {
		g.client, g.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	if g.initErr != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", g.initErr)
	}

	temp := float32(temperature)
	//nolint:gosec // maxTokens is a small fixed prompt limit
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

package textgen

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"aeosinnotion/pkg/config"
)

// Ollama generates text with a local Ollama server.
type Ollama struct {
	client *api.Client
	model  string
}

// NewOllama creates an Ollama-backed generator. An invalid hostURL falls back to the default host.
func NewOllama(hostURL, model string) *Ollama {
	return NewOllamaWithHTTPClient(hostURL, model, http.DefaultClient)
}

// NewOllamaWithHTTPClient is NewOllama with a caller-supplied HTTP client.
func NewOllamaWithHTTPClient(hostURL, model string, hc *http.Client) *Ollama {
	parsedURL, err := url.Parse(hostURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		parsedURL, _ = url.Parse(config.DefaultOllamaHost)
	}
	return &Ollama{
		client: api.NewClient(parsedURL, hc),
		model:  model,
	}
}

// Generate implements Generator.
func (o *Ollama) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    o.model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
		Options: map[string]any{
			"temperature": temperature,
			"num_predict": maxTokens,
		},
	}

	var response api.ChatResponse
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		response = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama completion failed: %w", err)
	}
	if response.Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return response.Message.Content, nil
}

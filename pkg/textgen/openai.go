package textgen

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// openAIMinOutputTokens is the smallest max_output_tokens the Responses API accepts.
const openAIMinOutputTokens = 16

// OpenAI generates text through the Responses API.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates an OpenAI-backed generator.
func NewOpenAI(apiKey, model string, opts ...option.RequestOption) *OpenAI {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Generate implements Generator.
func (o *OpenAI) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if maxTokens < openAIMinOutputTokens {
		maxTokens = openAIMinOutputTokens
	}

	resp, err := o.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(int64(maxTokens)),
		Temperature:     openai.Float(temperature),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(prompt)},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}

	text := resp.OutputText()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

package llmadapter

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// defaultEncoding is the tokenizer used when no model-specific encoding exists.
const defaultEncoding = "cl100k_base"

// OpenAIAdapter serves the GPT model family through the OpenAI chat API.
type OpenAIAdapter struct {
	modelID string
	model   llms.Model

	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
}

// NewOpenAIAdapter builds an adapter for cfg.ModelID against the OpenAI API.
func NewOpenAIAdapter(cfg Config) (Adapter, error) {
	a := &OpenAIAdapter{modelID: cfg.ModelID}
	if !a.ValidateConfig(cfg) {
		return nil, fmt.Errorf("openai adapter for model %s: api key is required", cfg.ModelID)
	}
	opts := []openai.Option{
		openai.WithModel(cfg.ModelID),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client for model %s: %w", cfg.ModelID, err)
	}
	a.model = model
	return a, nil
}

// ModelID returns the model identifier this adapter serves.
func (a *OpenAIAdapter) ModelID() string {
	return a.modelID
}

// Generate produces a completion for prompt grounded in contextData.
func (a *OpenAIAdapter) Generate(
	ctx context.Context,
	prompt string,
	contextData map[string]any,
	maxTokens int,
	temperature float64,
) (string, error) {
	out, err := chatComplete(ctx, a.model, prompt, contextData, maxTokens, temperature)
	if err != nil {
		return "", fmt.Errorf("openai generation failed for model %s: %w", a.modelID, err)
	}
	return out, nil
}

// CountTokens counts text with the model's tiktoken encoding. The encoding
// is resolved once on first use; unknown models fall back to cl100k_base.
func (a *OpenAIAdapter) CountTokens(_ context.Context, text string) (int, error) {
	a.encOnce.Do(func() {
		enc, err := tiktoken.EncodingForModel(a.modelID)
		if err != nil {
			enc, err = tiktoken.GetEncoding(defaultEncoding)
		}
		a.enc = enc
		a.encErr = err
	})
	if a.encErr != nil {
		return 0, fmt.Errorf("tokenizer unavailable for model %s: %w", a.modelID, a.encErr)
	}
	return len(a.enc.Encode(text, nil, nil)), nil
}

// ValidateConfig reports whether cfg carries everything the adapter needs.
func (a *OpenAIAdapter) ValidateConfig(cfg Config) bool {
	return cfg.APIKey != ""
}

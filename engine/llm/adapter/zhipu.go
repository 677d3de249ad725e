package llmadapter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// defaultZhipuBaseURL is Zhipu's OpenAI-compatible endpoint.
const defaultZhipuBaseURL = "https://open.bigmodel.cn/api/paas/v4"

// ZhipuAdapter serves the GLM model family through Zhipu's OpenAI-compatible
// chat API.
type ZhipuAdapter struct {
	modelID string
	model   llms.Model
}

// NewZhipuAdapter builds an adapter for cfg.ModelID against the Zhipu API.
func NewZhipuAdapter(cfg Config) (Adapter, error) {
	a := &ZhipuAdapter{modelID: cfg.ModelID}
	if !a.ValidateConfig(cfg) {
		return nil, fmt.Errorf("zhipu adapter for model %s: api key is required", cfg.ModelID)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultZhipuBaseURL
	}
	opts := []openai.Option{
		openai.WithModel(cfg.ModelID),
		openai.WithToken(cfg.APIKey),
		openai.WithBaseURL(baseURL),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Zhipu client for model %s: %w", cfg.ModelID, err)
	}
	a.model = model
	return a, nil
}

// ModelID returns the model identifier this adapter serves.
func (a *ZhipuAdapter) ModelID() string {
	return a.modelID
}

// Generate produces a completion for prompt grounded in contextData.
func (a *ZhipuAdapter) Generate(
	ctx context.Context,
	prompt string,
	contextData map[string]any,
	maxTokens int,
	temperature float64,
) (string, error) {
	out, err := chatComplete(ctx, a.model, prompt, contextData, maxTokens, temperature)
	if err != nil {
		return "", fmt.Errorf("zhipu generation failed for model %s: %w", a.modelID, err)
	}
	return out, nil
}

// CountTokens estimates GLM token usage from character classes. Zhipu ships
// no public tokenizer, so CJK ideographs weigh roughly 1.5 tokens and every
// other character a quarter token.
func (a *ZhipuAdapter) CountTokens(_ context.Context, text string) (int, error) {
	var chinese, other int
	for _, r := range text {
		if r >= 0x4E00 && r <= 0x9FFF {
			chinese++
		} else {
			other++
		}
	}
	return int(float64(chinese)*1.5 + float64(other)/4), nil
}

// ValidateConfig reports whether cfg carries everything the adapter needs.
func (a *ZhipuAdapter) ValidateConfig(cfg Config) bool {
	return cfg.APIKey != ""
}

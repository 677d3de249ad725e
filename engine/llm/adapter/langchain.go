package llmadapter

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"
)

// chatComplete runs a single system+user exchange against model and returns
// the first choice. Temperature is always forwarded, so an explicit 0.0
// reaches the provider instead of falling back to its default.
func chatComplete(
	ctx context.Context,
	model llms.Model,
	prompt string,
	contextData map[string]any,
	maxTokens int,
	temperature float64,
) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, BuildPrompt(prompt, contextData)),
	}
	resp, err := model.GenerateContent(ctx, messages,
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return resp.Choices[0].Content, nil
}

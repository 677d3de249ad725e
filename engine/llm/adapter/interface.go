package llmadapter

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by the registry and factory. Callers classify
// them with errors.Is to map failures onto protocol error codes.
var (
	// ErrModelNotFound reports a lookup for a model ID with no registered adapter.
	ErrModelNotFound = errors.New("model not found in registry")
	// ErrUnsupportedModel reports a construction request for a model ID the
	// factory has no builder for.
	ErrUnsupportedModel = errors.New("unsupported model")
	// ErrInvalidAdapterType reports an attempt to install a nil builder.
	ErrInvalidAdapterType = errors.New("invalid adapter type")
)

// Config carries the provider settings an adapter needs at construction time.
type Config struct {
	// ModelID is the model the adapter will serve, e.g. "gpt-4" or "glm-4".
	ModelID string
	// APIKey authenticates against the provider API.
	APIKey string
	// BaseURL overrides the provider endpoint. Empty selects the provider default.
	BaseURL string
	// Timeout bounds a single provider round trip. Zero means no client timeout.
	Timeout time.Duration
}

// Adapter is the capability surface every model integration provides.
// Implementations must be safe for concurrent use.
type Adapter interface {
	// ModelID returns the model identifier this adapter serves.
	ModelID() string
	// Generate produces a completion for prompt grounded in contextData.
	Generate(
		ctx context.Context,
		prompt string,
		contextData map[string]any,
		maxTokens int,
		temperature float64,
	) (string, error)
	// CountTokens returns the token count of text under this adapter's tokenizer.
	CountTokens(ctx context.Context, text string) (int, error)
	// ValidateConfig reports whether cfg carries everything the adapter needs.
	ValidateConfig(cfg Config) bool
}

// Builder constructs an Adapter for one model from its provider settings.
type Builder func(cfg Config) (Adapter, error)

package llmadapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/wishub-ai/wishub-mcp/pkg/config"
	"github.com/wishub-ai/wishub-mcp/pkg/logger"
)

// Model IDs with built-in builders, grouped by provider.
var (
	openAIModelIDs = []string{"gpt-4", "gpt-4-turbo", "gpt-4o", "gpt-3.5-turbo"}
	zhipuModelIDs  = []string{"glm-4", "glm-4-turbo", "glm-3-turbo"}
)

// Factory maps model IDs to adapter builders. A fresh factory knows the
// built-in GPT and GLM models; additional builders can be installed with
// RegisterBuilder. All methods are safe for concurrent use.
type Factory struct {
	mu       sync.RWMutex
	builders map[string]Builder
	order    []string
}

// NewFactory returns a factory seeded with the built-in model table.
func NewFactory() *Factory {
	f := &Factory{builders: make(map[string]Builder)}
	for _, id := range openAIModelIDs {
		f.builders[id] = NewOpenAIAdapter
		f.order = append(f.order, id)
	}
	for _, id := range zhipuModelIDs {
		f.builders[id] = NewZhipuAdapter
		f.order = append(f.order, id)
	}
	return f
}

// RegisterBuilder installs builder for modelID, replacing any previous one.
// A nil builder is rejected with ErrInvalidAdapterType.
func (f *Factory) RegisterBuilder(modelID string, builder Builder) error {
	if builder == nil {
		return fmt.Errorf("%w: builder for %s is nil", ErrInvalidAdapterType, modelID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.builders[modelID]; !exists {
		f.order = append(f.order, modelID)
	}
	f.builders[modelID] = builder
	return nil
}

// CreateAdapter constructs an adapter for modelID from cfg. Unknown model
// IDs are rejected with ErrUnsupportedModel.
func (f *Factory) CreateAdapter(modelID string, cfg Config) (Adapter, error) {
	f.mu.RLock()
	builder, ok := f.builders[modelID]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, modelID)
	}
	if cfg.ModelID == "" {
		cfg.ModelID = modelID
	}
	return builder(cfg)
}

// SupportedModels returns the model IDs the factory can build, in table order.
func (f *Factory) SupportedModels() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// InitializeAdapters builds adapters for every configured provider and
// registers them. Providers without an API key are skipped and a failed
// model never blocks the rest; the return value is the number registered.
func (f *Factory) InitializeAdapters(ctx context.Context, cfg *config.Config, registry *Registry) int {
	log := logger.FromContext(ctx)
	groups := []struct {
		provider string
		apiKey   string
		baseURL  string
		models   []string
	}{
		{
			provider: "openai",
			apiKey:   cfg.Providers.OpenAI.APIKey.Value(),
			baseURL:  cfg.Providers.OpenAI.BaseURL,
			models:   openAIModelIDs,
		},
		{
			provider: "zhipu",
			apiKey:   cfg.Providers.Zhipu.APIKey.Value(),
			baseURL:  cfg.Providers.Zhipu.BaseURL,
			models:   zhipuModelIDs,
		},
	}
	registered := 0
	for _, g := range groups {
		if g.apiKey == "" {
			log.Warn("provider API key not configured, skipping its models", "provider", g.provider)
			continue
		}
		for _, modelID := range g.models {
			adapter, err := f.CreateAdapter(modelID, Config{
				ModelID: modelID,
				APIKey:  g.apiKey,
				BaseURL: g.baseURL,
				Timeout: cfg.LLM.ProviderTimeout,
			})
			if err != nil {
				log.Warn("failed to create adapter", "provider", g.provider, "model", modelID, "error", err)
				continue
			}
			registry.Register(modelID, adapter)
			registered++
		}
	}
	log.Info("adapter initialization complete", "registered", registered)
	return registered
}

package llmadapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wishub-ai/wishub-mcp/pkg/config"
)

func TestFactory_CreateAdapter(t *testing.T) {
	t.Run("Should build an OpenAI adapter for a GPT model", func(t *testing.T) {
		factory := NewFactory()
		adapter, err := factory.CreateAdapter("gpt-4", Config{APIKey: "test-key"})
		require.NoError(t, err)
		assert.Equal(t, "gpt-4", adapter.ModelID())
		assert.IsType(t, &OpenAIAdapter{}, adapter)
	})

	t.Run("Should build a Zhipu adapter for a GLM model", func(t *testing.T) {
		factory := NewFactory()
		adapter, err := factory.CreateAdapter("glm-4", Config{APIKey: "test-key"})
		require.NoError(t, err)
		assert.Equal(t, "glm-4", adapter.ModelID())
		assert.IsType(t, &ZhipuAdapter{}, adapter)
	})

	t.Run("Should reject unknown model IDs with ErrUnsupportedModel", func(t *testing.T) {
		factory := NewFactory()
		adapter, err := factory.CreateAdapter("claude-3", Config{APIKey: "test-key"})
		assert.Nil(t, adapter)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedModel)
		assert.Contains(t, err.Error(), "claude-3")
	})

	t.Run("Should surface builder failures for missing API keys", func(t *testing.T) {
		factory := NewFactory()
		adapter, err := factory.CreateAdapter("gpt-4", Config{})
		assert.Nil(t, adapter)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api key is required")
	})
}

func TestFactory_RegisterBuilder(t *testing.T) {
	t.Run("Should reject a nil builder with ErrInvalidAdapterType", func(t *testing.T) {
		factory := NewFactory()
		err := factory.RegisterBuilder("custom-model", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidAdapterType)
	})

	t.Run("Should install a custom builder", func(t *testing.T) {
		factory := NewFactory()
		custom := &stubAdapter{id: "custom-model"}
		err := factory.RegisterBuilder("custom-model", func(_ Config) (Adapter, error) {
			return custom, nil
		})
		require.NoError(t, err)

		adapter, err := factory.CreateAdapter("custom-model", Config{})
		require.NoError(t, err)
		assert.Same(t, custom, adapter)
		assert.Contains(t, factory.SupportedModels(), "custom-model")
	})

	t.Run("Should replace the builder for a known model", func(t *testing.T) {
		factory := NewFactory()
		custom := &stubAdapter{id: "gpt-4"}
		err := factory.RegisterBuilder("gpt-4", func(_ Config) (Adapter, error) {
			return custom, nil
		})
		require.NoError(t, err)

		adapter, err := factory.CreateAdapter("gpt-4", Config{})
		require.NoError(t, err)
		assert.Same(t, custom, adapter)
		assert.Len(t, factory.SupportedModels(), len(openAIModelIDs)+len(zhipuModelIDs))
	})
}

func TestFactory_SupportedModels(t *testing.T) {
	t.Run("Should list the built-in model table in order", func(t *testing.T) {
		factory := NewFactory()
		assert.Equal(t, []string{
			"gpt-4", "gpt-4-turbo", "gpt-4o", "gpt-3.5-turbo",
			"glm-4", "glm-4-turbo", "glm-3-turbo",
		}, factory.SupportedModels())
	})
}

func TestFactory_InitializeAdapters(t *testing.T) {
	t.Run("Should register nothing when no provider has a key", func(t *testing.T) {
		cfg := config.Default()
		registry := NewRegistry()
		registered := NewFactory().InitializeAdapters(context.Background(), cfg, registry)
		assert.Equal(t, 0, registered)
		assert.Equal(t, 0, registry.Len())
	})

	t.Run("Should register only the configured provider's models", func(t *testing.T) {
		cfg := config.Default()
		cfg.Providers.Zhipu.APIKey = config.SensitiveString("zhipu-key")
		registry := NewRegistry()

		registered := NewFactory().InitializeAdapters(context.Background(), cfg, registry)
		assert.Equal(t, 3, registered)
		assert.Equal(t, []string{"glm-4", "glm-4-turbo", "glm-3-turbo"}, registry.List())
	})

	t.Run("Should register both providers when both keys are set", func(t *testing.T) {
		cfg := config.Default()
		cfg.Providers.OpenAI.APIKey = config.SensitiveString("openai-key")
		cfg.Providers.Zhipu.APIKey = config.SensitiveString("zhipu-key")
		registry := NewRegistry()

		registered := NewFactory().InitializeAdapters(context.Background(), cfg, registry)
		assert.Equal(t, 7, registered)
		assert.Equal(t, []string{
			"gpt-4", "gpt-4-turbo", "gpt-4o", "gpt-3.5-turbo",
			"glm-4", "glm-4-turbo", "glm-3-turbo",
		}, registry.List())
	})

	t.Run("Should skip models whose builder fails and keep going", func(t *testing.T) {
		cfg := config.Default()
		cfg.Providers.OpenAI.APIKey = config.SensitiveString("openai-key")
		factory := NewFactory()
		require.NoError(t, factory.RegisterBuilder("gpt-4", func(_ Config) (Adapter, error) {
			return nil, assert.AnError
		}))
		registry := NewRegistry()

		registered := factory.InitializeAdapters(context.Background(), cfg, registry)
		assert.Equal(t, 3, registered)
		assert.Equal(t, []string{"gpt-4-turbo", "gpt-4o", "gpt-3.5-turbo"}, registry.List())

		_, err := registry.Get("gpt-4")
		assert.ErrorIs(t, err, ErrModelNotFound)
	})
}

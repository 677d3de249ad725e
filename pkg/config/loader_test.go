package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	data       map[string]any
	loadErr    error
	sourceType SourceType
}

func (m *mockSource) Load() (map[string]any, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data, nil
}

func (m *mockSource) Type() SourceType {
	return m.sourceType
}

func (m *mockSource) Close() error {
	return nil
}

func TestLoader_Load(t *testing.T) {
	t.Run("Should load default configuration when no sources provided", func(t *testing.T) {
		ctx := context.Background()
		loader := NewService()

		cfg, err := loader.Load(ctx)

		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 8000, cfg.Server.Port)
		assert.Equal(t, "development", cfg.Runtime.Environment)
		assert.True(t, cfg.Cache.Enabled)
		assert.Equal(t, time.Hour, cfg.Cache.TTL)
		assert.Equal(t, "wishub_mcp", cfg.Cache.KeyPrefix)
		assert.Equal(t, "http://localhost:8000", cfg.WisHub.BaseURL)
		assert.Equal(t, 0, cfg.LLM.RetryAttempts)
		assert.True(t, cfg.Server.Auth.Enabled)
	})

	t.Run("Should apply sources in precedence order", func(t *testing.T) {
		ctx := context.Background()
		loader := NewService()

		source1 := &mockSource{
			data: map[string]any{
				"server": map[string]any{
					"host": "yaml.example.com",
					"port": 9001,
				},
			},
			sourceType: SourceYAML,
		}
		source2 := &mockSource{
			data: map[string]any{
				"server": map[string]any{
					"host": "cli.example.com",
				},
			},
			sourceType: SourceCLI,
		}

		cfg, err := loader.Load(ctx, source1, source2)

		require.NoError(t, err)
		assert.Equal(t, "cli.example.com", cfg.Server.Host)
		assert.Equal(t, 9001, cfg.Server.Port)
	})

	t.Run("Should apply environment variables over sources", func(t *testing.T) {
		t.Setenv("REDIS_HOST", "redis.internal")
		t.Setenv("CACHE_TTL", "30m")
		t.Setenv("OPENAI_API_KEY", "sk-test-123")

		loader := NewService()
		cfg, err := loader.Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "redis.internal", cfg.Redis.Host)
		assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
		assert.Equal(t, "sk-test-123", cfg.Providers.OpenAI.APIKey.Value())
	})

	t.Run("Should validate configuration after loading", func(t *testing.T) {
		ctx := context.Background()
		loader := NewService()

		source := &mockSource{
			data: map[string]any{
				"server": map[string]any{
					"port": 99999,
				},
			},
			sourceType: SourceYAML,
		}

		cfg, err := loader.Load(ctx, source)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
		assert.Nil(t, cfg)
	})

	t.Run("Should handle nil sources gracefully", func(t *testing.T) {
		ctx := context.Background()
		loader := NewService()

		validSource := &mockSource{
			data: map[string]any{
				"server": map[string]any{
					"host": "valid.example.com",
				},
			},
			sourceType: SourceCLI,
		}

		cfg, err := loader.Load(ctx, nil, validSource, nil)

		require.NoError(t, err)
		assert.Equal(t, "valid.example.com", cfg.Server.Host)
	})

	t.Run("Should handle source loading errors", func(t *testing.T) {
		ctx := context.Background()
		loader := NewService()

		source := &mockSource{
			loadErr:    assert.AnError,
			sourceType: SourceCLI,
		}

		cfg, err := loader.Load(ctx, source)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load from source")
		assert.Nil(t, cfg)
	})
}

func TestLoader_Validate(t *testing.T) {
	t.Run("Should accept valid configuration", func(t *testing.T) {
		loader := NewService()
		cfg := Default()

		assert.NoError(t, loader.Validate(cfg))
	})

	t.Run("Should reject nil configuration", func(t *testing.T) {
		loader := NewService()

		err := loader.Validate(nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration cannot be nil")
	})

	t.Run("Should reject invalid struct tag validation", func(t *testing.T) {
		loader := NewService()
		cfg := Default()
		cfg.Server.Port = 0

		err := loader.Validate(cfg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("Should reject enabled cache with non-positive TTL", func(t *testing.T) {
		loader := NewService()
		cfg := Default()
		cfg.Cache.TTL = 0

		err := loader.Validate(cfg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache TTL must be positive")
	})

	t.Run("Should reject enabled rate limiting without a limit", func(t *testing.T) {
		loader := NewService()
		cfg := Default()
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.Limit = 0

		err := loader.Validate(cfg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limit must be positive")
	})
}

func TestLoader_GetSource(t *testing.T) {
	t.Run("Should track the source of overridden keys", func(t *testing.T) {
		ctx := context.Background()
		loader := NewService()

		source := &mockSource{
			data: map[string]any{
				"server": map[string]any{
					"host": "tracked.example.com",
				},
			},
			sourceType: SourceCLI,
		}

		_, err := loader.Load(ctx, source)
		require.NoError(t, err)

		assert.Equal(t, SourceCLI, loader.GetSource("server.host"))
		assert.Equal(t, SourceDefault, loader.GetSource("server.port"))
		assert.Equal(t, SourceDefault, loader.GetSource("nonexistent"))
	})
}

func TestGenerateEnvMappings(t *testing.T) {
	t.Run("Should expose explicit provider mappings", func(t *testing.T) {
		m := GenerateEnvToConfigMap()

		assert.Equal(t, "providers.openai.api_key", m["OPENAI_API_KEY"])
		assert.Equal(t, "providers.zhipu.api_key", m["ZHIPU_API_KEY"])
		assert.Equal(t, "server.host", m["SERVER_HOST"])
		assert.Equal(t, "wishub.base_url", m["WISHUB_CORE_URL"])
	})

	t.Run("Should mark secret paths as sensitive", func(t *testing.T) {
		assert.True(t, IsSensitiveConfigPath("redis.password"))
		assert.True(t, IsSensitiveConfigPath("providers.openai.api_key"))
		assert.False(t, IsSensitiveConfigPath("server.host"))
	})
}

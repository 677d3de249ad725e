package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	contextData := map[string]any{
		"title":   "风控基础",
		"content": "风控是风险控制的简称。",
	}

	t.Run("Should produce six colon-separated segments", func(t *testing.T) {
		key := Fingerprint("wishub_mcp", "gpt-4", "什么是风控？", contextData, 0.7, 2000)
		segments := strings.Split(key, ":")
		require.Len(t, segments, 6)
		assert.Equal(t, "wishub_mcp", segments[0])
		assert.Equal(t, "gpt-4", segments[1])
		assert.Len(t, segments[2], 16)
		assert.Len(t, segments[3], 64)
		assert.Equal(t, "0.7", segments[4])
		assert.Equal(t, "2000", segments[5])
	})

	t.Run("Should be deterministic for identical inputs", func(t *testing.T) {
		first := Fingerprint("wishub_mcp", "gpt-4", "q", contextData, 0.7, 2000)
		for i := 0; i < 10; i++ {
			other := map[string]any{
				"content": "风控是风险控制的简称。",
				"title":   "风控基础",
			}
			assert.Equal(t, first, Fingerprint("wishub_mcp", "gpt-4", "q", other, 0.7, 2000))
		}
	})

	t.Run("Should change when any generation parameter changes", func(t *testing.T) {
		base := Fingerprint("wishub_mcp", "gpt-4", "q", contextData, 0.7, 2000)
		assert.NotEqual(t, base, Fingerprint("wishub_mcp", "glm-4", "q", contextData, 0.7, 2000))
		assert.NotEqual(t, base, Fingerprint("wishub_mcp", "gpt-4", "q2", contextData, 0.7, 2000))
		assert.NotEqual(t, base, Fingerprint("wishub_mcp", "gpt-4", "q", nil, 0.7, 2000))
		assert.NotEqual(t, base, Fingerprint("wishub_mcp", "gpt-4", "q", contextData, 0.8, 2000))
		assert.NotEqual(t, base, Fingerprint("wishub_mcp", "gpt-4", "q", contextData, 0.7, 1000))
	})

	t.Run("Should keep explicit zero temperature distinct in the key", func(t *testing.T) {
		key := Fingerprint("wishub_mcp", "gpt-4", "q", nil, 0.0, 2000)
		assert.Contains(t, key, ":0:2000")
		assert.NotEqual(t, key, Fingerprint("wishub_mcp", "gpt-4", "q", nil, 0.7, 2000))
	})

	t.Run("Should use the empty sentinel for missing context", func(t *testing.T) {
		key := Fingerprint("wishub_mcp", "gpt-4", "q", nil, 0.7, 2000)
		assert.Equal(t, "empty", strings.Split(key, ":")[3])

		key = Fingerprint("wishub_mcp", "gpt-4", "q", map[string]any{}, 0.7, 2000)
		assert.Equal(t, "empty", strings.Split(key, ":")[3])
	})

	t.Run("Should use the unhashable sentinel for unserializable context", func(t *testing.T) {
		key := Fingerprint("wishub_mcp", "gpt-4", "q", map[string]any{"fn": func() {}}, 0.7, 2000)
		assert.Equal(t, "unhashable", strings.Split(key, ":")[3])
	})
}

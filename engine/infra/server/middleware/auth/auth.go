package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wishub-ai/wishub-mcp/engine/mcp"
	"github.com/wishub-ai/wishub-mcp/pkg/config"
	"github.com/wishub-ai/wishub-mcp/pkg/logger"
)

// HeaderAPIKey carries the client credential on guarded routes.
const HeaderAPIKey = "X-API-Key"

// Manager guards routes with API-key authentication. When auth is disabled
// in configuration the middleware is a passthrough.
type Manager struct {
	enabled bool
	keys    map[string]struct{}
}

// NewManager builds an auth manager from the server auth configuration.
func NewManager(cfg *config.AuthConfig) *Manager {
	m := &Manager{}
	if cfg == nil {
		return m
	}
	m.enabled = cfg.Enabled
	if len(cfg.APIKeys) > 0 {
		m.keys = make(map[string]struct{}, len(cfg.APIKeys))
		for _, key := range cfg.APIKeys {
			if key = strings.TrimSpace(key); key != "" {
				m.keys[key] = struct{}{}
			}
		}
	}
	return m
}

// Enabled reports whether requests must present an API key.
func (m *Manager) Enabled() bool {
	return m.enabled
}

// Middleware returns the gin handler enforcing the API-key check. A missing
// or empty key is rejected with 401; when an allow-list is configured the
// key must also be present in it.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}
		key := strings.TrimSpace(c.GetHeader(HeaderAPIKey))
		if key == "" {
			m.reject(c, "API key is required")
			return
		}
		if len(m.keys) > 0 {
			if _, ok := m.keys[key]; !ok {
				m.reject(c, "invalid API key")
				return
			}
		}
		c.Next()
	}
}

func (m *Manager) reject(c *gin.Context, message string) {
	logger.FromContext(c.Request.Context()).Debug("request rejected by auth middleware",
		"path", c.Request.URL.Path, "reason", message)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  mcp.StatusError,
		"message": message,
	})
}

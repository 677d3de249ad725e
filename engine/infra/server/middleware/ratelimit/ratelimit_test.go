package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/wishub-ai/wishub-mcp/pkg/config"
)

func buildRouter(t *testing.T, cfg *config.RateLimitConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m, err := NewManager(cfg, nil) // nil redis client selects the in-memory store
	require.NoError(t, err)
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/t", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func doRequest(r *gin.Engine, path, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	if ip != "" {
		req.Header.Set("X-Real-IP", ip)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestManager_Middleware(t *testing.T) {
	t.Run("Should block the request over the limit", func(t *testing.T) {
		r := buildRouter(t, &config.RateLimitConfig{
			Enabled: true,
			Limit:   1,
			Period:  time.Minute,
			Prefix:  "test:ratelimit",
		})

		require.Equal(t, http.StatusOK, doRequest(r, "/t", "1.2.3.4").Code)
		require.Equal(t, http.StatusTooManyRequests, doRequest(r, "/t", "1.2.3.4").Code)
	})

	t.Run("Should keep separate budgets per client IP", func(t *testing.T) {
		r := buildRouter(t, &config.RateLimitConfig{
			Enabled: true,
			Limit:   1,
			Period:  time.Minute,
			Prefix:  "test:ratelimit",
		})

		require.Equal(t, http.StatusOK, doRequest(r, "/t", "1.2.3.4").Code)
		require.Equal(t, http.StatusOK, doRequest(r, "/t", "5.6.7.8").Code)
	})

	t.Run("Should set rate limit headers", func(t *testing.T) {
		r := buildRouter(t, &config.RateLimitConfig{
			Enabled: true,
			Limit:   2,
			Period:  time.Minute,
			Prefix:  "test:ratelimit",
		})

		res := doRequest(r, "/t", "9.9.9.9")
		require.Equal(t, "2", res.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1", res.Header().Get("X-RateLimit-Remaining"))
		require.NotEmpty(t, res.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("Should skip excluded paths entirely", func(t *testing.T) {
		r := buildRouter(t, &config.RateLimitConfig{
			Enabled:       true,
			Limit:         1,
			Period:        time.Minute,
			Prefix:        "test:ratelimit",
			ExcludedPaths: []string{"/health"},
		})

		for range 5 {
			require.Equal(t, http.StatusOK, doRequest(r, "/health", "1.2.3.4").Code)
		}
	})
}

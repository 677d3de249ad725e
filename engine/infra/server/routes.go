package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wishub-ai/wishub-mcp/engine/infra/cache"
	"github.com/wishub-ai/wishub-mcp/engine/mcp"
	"github.com/wishub-ai/wishub-mcp/pkg/logger"
	"github.com/wishub-ai/wishub-mcp/pkg/version"
)

// CacheAdmin exposes the cache operations behind the admin routes.
type CacheAdmin interface {
	Stats(ctx context.Context) cache.Stats
	ClearModel(ctx context.Context, modelID string) (int, error)
}

const (
	defaultSearchLimit  = 10
	defaultSearchOffset = 0
)

// invokeHandler binds, normalizes and validates the request, then hands it
// to the pipeline. Validation failures are transport-level 400s; every
// pipeline outcome, including the MCP_xxx errors, is a 200 with a
// structured body.
func (s *Server) invokeHandler(c *gin.Context) {
	var req mcp.InvokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  mcp.StatusError,
			"message": "invalid request body: " + err.Error(),
		})
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  mcp.StatusError,
			"message": err.Error(),
		})
		return
	}
	resp := s.deps.Orchestrator.Invoke(c.Request.Context(), &req)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) modelsHandler(c *gin.Context) {
	models := s.deps.Models.List()
	c.JSON(http.StatusOK, mcp.ModelsResponse{
		Status: mcp.StatusSuccess,
		Models: models,
		Count:  len(models),
	})
}

func (s *Server) searchHandler(c *gin.Context) {
	if s.deps.Search == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  mcp.StatusError,
			"message": "search is not available",
		})
		return
	}
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  mcp.StatusError,
			"message": "query parameter q is required",
		})
		return
	}
	limit := intQuery(c, "limit", defaultSearchLimit)
	offset := intQuery(c, "offset", defaultSearchOffset)
	result, err := s.deps.Search.SearchWisUnits(c.Request.Context(), query, limit, offset)
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn("wisunit search failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"status":  mcp.StatusError,
			"message": "knowledge store search failed",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": mcp.StatusSuccess,
		"result": result,
	})
}

func (s *Server) cacheStatsHandler(c *gin.Context) {
	if s.deps.CacheAdmin == nil {
		c.JSON(http.StatusOK, gin.H{
			"status": mcp.StatusSuccess,
			"cache":  cache.Stats{Enabled: false},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": mcp.StatusSuccess,
		"cache":  s.deps.CacheAdmin.Stats(c.Request.Context()),
	})
}

func (s *Server) cacheClearHandler(c *gin.Context) {
	modelID := c.Param("model_id")
	if s.deps.CacheAdmin == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":   mcp.StatusSuccess,
			"model_id": modelID,
			"cleared":  0,
		})
		return
	}
	cleared, err := s.deps.CacheAdmin.ClearModel(c.Request.Context(), modelID)
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn("cache clear failed",
			"model_id", modelID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  mcp.StatusError,
			"message": "failed to clear cache entries",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   mcp.StatusSuccess,
		"model_id": modelID,
		"cleared":  cleared,
	})
}

func (s *Server) healthHandler(c *gin.Context) {
	resp := mcp.HealthResponse{
		Status:       mcp.HealthStatusHealthy,
		Version:      version.GetVersion(),
		Dependencies: map[string]mcp.DependencyHealth{},
	}
	if s.deps.Health != nil {
		status, deps := s.deps.Health.Check(c.Request.Context())
		resp.Status = status
		resp.Dependencies = deps
	}
	code := http.StatusOK
	if resp.Status == mcp.HealthStatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

func (s *Server) rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "wishub-mcp",
		"version": version.GetVersion(),
		"status":  "running",
	})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

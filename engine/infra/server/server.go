package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wishub-ai/wishub-mcp/engine/infra/monitoring"
	"github.com/wishub-ai/wishub-mcp/engine/infra/server/middleware/auth"
	"github.com/wishub-ai/wishub-mcp/engine/infra/server/middleware/ratelimit"
	"github.com/wishub-ai/wishub-mcp/engine/mcp"
	"github.com/wishub-ai/wishub-mcp/pkg/config"
	"github.com/wishub-ai/wishub-mcp/pkg/logger"
)

const defaultShutdownTimeout = 10 * time.Second

// Invoker runs the invocation pipeline for one validated request.
type Invoker interface {
	Invoke(ctx context.Context, req *mcp.InvokeRequest) *mcp.InvokeResponse
}

// ModelLister enumerates the models currently bound to an adapter.
type ModelLister interface {
	List() []string
}

// WisUnitSearcher runs a paginated search against the knowledge store.
type WisUnitSearcher interface {
	SearchWisUnits(ctx context.Context, query string, limit, offset int) (map[string]any, error)
}

// HealthReporter aggregates dependency probes into an overall status.
type HealthReporter interface {
	Check(ctx context.Context) (string, map[string]mcp.DependencyHealth)
}

// Deps bundles everything the HTTP surface exposes. CacheAdmin, Search,
// Health and Monitoring may be nil; the matching routes then degrade or
// disappear.
type Deps struct {
	Orchestrator Invoker
	Models       ModelLister
	CacheAdmin   CacheAdmin
	Search       WisUnitSearcher
	Health       HealthReporter
	Monitoring   *monitoring.Service
}

// Server is the gateway's HTTP front. Routes, middleware and lifecycle are
// assembled once at construction.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	cfg        *config.Config
	deps       Deps
}

// NewServer assembles the gin engine, middleware chain and routes.
func NewServer(ctx context.Context, cfg *config.Config, deps Deps) (*Server, error) {
	if cfg.Runtime.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(ctx))
	if cfg.Server.CORSEnabled {
		router.Use(corsMiddleware(&cfg.Server.CORS))
	}
	if deps.Monitoring != nil {
		router.Use(deps.Monitoring.GinMiddleware(ctx))
	}
	if cfg.RateLimit.Enabled {
		rl, err := ratelimit.NewManager(&cfg.RateLimit, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build rate limiter: %w", err)
		}
		router.Use(rl.Middleware())
	}

	addr := cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port)
	timeout := cfg.Server.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s := &Server{
		router: router,
		cfg:    cfg,
		deps:   deps,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
			IdleTimeout:  120 * time.Second,
		},
	}
	s.setupRoutes()
	return s, nil
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.rootHandler)
	s.router.GET("/health", s.healthHandler)
	if s.deps.Monitoring != nil {
		s.router.GET(s.deps.Monitoring.Path(), gin.WrapH(s.deps.Monitoring.ExporterHandler()))
	}

	authManager := auth.NewManager(&s.cfg.Server.Auth)
	group := s.router.Group("/mcp")
	group.Use(authManager.Middleware())
	{
		group.POST("/invoke", s.invokeHandler)
		group.GET("/models", s.modelsHandler)
		group.GET("/wisunits/search", s.searchHandler)
		group.GET("/cache/stats", s.cacheStatsHandler)
		group.DELETE("/cache/:model_id", s.cacheClearHandler)
	}
}

// Start runs the HTTP server until the context is canceled, a shutdown
// signal arrives, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("starting gateway server", "addr", s.httpServer.Addr)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
			return
		}
		errChan <- nil
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return err
		}
	case <-time.After(100 * time.Millisecond):
		// listener is up
	case <-ctx.Done():
		return ctx.Err()
	}

	log.Info("gateway server started")
	return s.waitForShutdown(ctx, errChan)
}

// Stop drains in-flight requests within the configured shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("shutting down gateway server")

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
		return err
	}
	log.Info("gateway server stopped")
	return nil
}

func (s *Server) waitForShutdown(ctx context.Context, errChan <-chan error) error {
	log := logger.FromContext(ctx)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-ctx.Done():
		log.Debug("context canceled, shutting down")
		return s.Stop(context.WithoutCancel(ctx))
	case sig := <-quit:
		log.Info("received shutdown signal", "signal", sig.String())
		return s.Stop(ctx)
	case err := <-errChan:
		if err != nil {
			log.Error("HTTP server failed", "error", err)
			return err
		}
		return nil
	}
}

// requestLogger emits one structured log line per request and seeds the
// request context with the application logger.
func requestLogger(ctx context.Context) gin.HandlerFunc {
	log := logger.FromContext(ctx)
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(
			logger.ContextWithLogger(c.Request.Context(), log),
		)
		c.Next()
		log.Debug("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// corsMiddleware answers preflight requests and stamps the allow headers.
func corsMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	allowAll := len(cfg.AllowedOrigins) == 0
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = struct{}{}
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 600
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			_, ok := allowed[origin]
			if allowAll || ok {
				if allowAll {
					c.Header("Access-Control-Allow-Origin", "*")
				} else {
					c.Header("Access-Control-Allow-Origin", origin)
					c.Header("Vary", "Origin")
					if cfg.AllowCredentials {
						c.Header("Access-Control-Allow-Credentials", "true")
					}
				}
				c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Content-Type, "+auth.HeaderAPIKey)
				c.Header("Access-Control-Max-Age", strconv.Itoa(maxAge))
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wishub-ai/wishub-mcp/engine/infra/cache"
	"github.com/wishub-ai/wishub-mcp/engine/infra/monitoring"
	"github.com/wishub-ai/wishub-mcp/engine/infra/server"
	llmadapter "github.com/wishub-ai/wishub-mcp/engine/llm/adapter"
	"github.com/wishub-ai/wishub-mcp/engine/orchestrator"
	"github.com/wishub-ai/wishub-mcp/engine/wishub"
	"github.com/wishub-ai/wishub-mcp/pkg/config"
	"github.com/wishub-ai/wishub-mcp/pkg/logger"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway server",
		RunE:  runServe,
	}
	cmd.Flags().String("host", "", "bind host (overrides configuration)")
	cmd.Flags().Int("port", 0, "bind port (overrides configuration)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := loadEnvFile(cmd); err != nil {
		return err
	}
	level, logJSON, logSource, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.SetupLogger(level, logJSON, logSource)
	ctx := logger.ContextWithLogger(cmd.Context(), log)

	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return runServer(ctx, cfg)
}

// loadEnvFile loads variables from an explicit --env-file, or from ./.env
// when one exists. Only the explicit path is required to exist.
func loadEnvFile(cmd *cobra.Command) error {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return err
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	return nil
}

// loadConfig merges defaults, the optional YAML file, environment
// variables, and explicit CLI overrides.
func loadConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	var sources []config.Source
	if path, err := cmd.Flags().GetString("config"); err == nil && path != "" {
		sources = append(sources, config.NewYAMLProvider(path))
	}
	flags := map[string]any{}
	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		flags["server.host"] = host
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		flags["server.port"] = port
	}
	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		flags["runtime.log_level"] = level
	}
	if cmd.Flags().Changed("log-json") {
		logJSON, _ := cmd.Flags().GetBool("log-json")
		flags["runtime.log_json"] = logJSON
	}
	if len(flags) > 0 {
		sources = append(sources, config.NewCLIProvider(flags))
	}
	return config.NewService().Load(ctx, sources...)
}

// runServer wires the full dependency graph and runs the HTTP server until
// shutdown. The cache connection and metrics provider follow the server's
// lifecycle: connected here, closed on the way out.
func runServer(ctx context.Context, cfg *config.Config) error {
	log := logger.FromContext(ctx)

	monSvc := monitoring.NewMonitoringServiceWithFallback(ctx, monitoring.FromAppConfig(cfg))
	defer func() {
		if err := monSvc.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn("monitoring shutdown failed", "error", err)
		}
	}()
	monitoring.InitSystemMetrics(ctx, monSvc.Meter())
	cacheMetrics, err := monitoring.NewCacheMetrics(monSvc.Meter())
	if err != nil {
		log.Warn("cache metrics unavailable", "error", err)
	}
	invocationMetrics, err := monitoring.NewInvocationMetrics(monSvc.Meter())
	if err != nil {
		log.Warn("invocation metrics unavailable", "error", err)
	}

	deps := server.Deps{Monitoring: monSvc}

	var responseCache *cache.ResponseCache
	var cacheStore *cache.Cache
	if cfg.Cache.Enabled {
		cacheStore, err = cache.SetupCache(ctx, cache.FromAppConfig(cfg), cacheMetrics)
		if err != nil {
			// the cache is an optimization; a dead Redis never blocks startup
			log.Warn("cache store unavailable, continuing without memoization", "error", err)
		} else {
			responseCache = cacheStore.Response
			deps.CacheAdmin = responseCache
			defer func() {
				if err := cacheStore.Close(); err != nil {
					log.Warn("cache close failed", "error", err)
				}
			}()
		}
	}

	wishubClient := wishub.NewClient(cfg)
	defer wishubClient.Close()

	registry := llmadapter.NewRegistry()
	factory := llmadapter.NewFactory()
	if n := factory.InitializeAdapters(ctx, cfg, registry); n == 0 {
		log.Warn("no adapters registered, invocations will fail until providers are configured")
	}

	deps.Orchestrator = orchestrator.New(
		registry,
		wishubClient,
		responseCache,
		invocationMetrics,
		orchestrator.RetryFromAppConfig(cfg),
	)
	deps.Models = registry
	deps.Search = wishubClient

	var redisChecker monitoring.DependencyChecker
	if cacheStore != nil {
		redisChecker = cacheStore
	}
	deps.Health = monitoring.NewHealthChecker(redisChecker, wishubClient, cacheMetrics)

	srv, err := server.NewServer(ctx, cfg, deps)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}
	return srv.Start(ctx)
}

package config

import (
	"context"
	"time"
)

// Config represents the complete configuration for the WisHub MCP gateway.
// It provides type-safe access to all configuration values with validation.
type Config struct {
	Server     ServerConfig     `koanf:"server"     validate:"required"`
	Redis      RedisConfig      `koanf:"redis"      validate:"required"`
	Cache      CacheConfig      `koanf:"cache"      validate:"required"`
	WisHub     WisHubConfig     `koanf:"wishub"     validate:"required"`
	Providers  ProvidersConfig  `koanf:"providers"`
	LLM        LLMConfig        `koanf:"llm"`
	RateLimit  RateLimitConfig  `koanf:"ratelimit"`
	Monitoring MonitoringConfig `koanf:"monitoring"`
	Runtime    RuntimeConfig    `koanf:"runtime"    validate:"required"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"             validate:"required"        env:"SERVER_HOST"`
	Port            int           `koanf:"port"             validate:"min=1,max=65535" env:"SERVER_PORT"`
	Timeout         time.Duration `koanf:"timeout"                                     env:"SERVER_TIMEOUT"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"                            env:"SERVER_SHUTDOWN_TIMEOUT"`
	CORSEnabled     bool          `koanf:"cors_enabled"                                env:"SERVER_CORS_ENABLED"`
	CORS            CORSConfig    `koanf:"cors"`
	Auth            AuthConfig    `koanf:"auth"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"   env:"SERVER_CORS_ALLOWED_ORIGINS"`
	AllowCredentials bool     `koanf:"allow_credentials" env:"SERVER_CORS_ALLOW_CREDENTIALS"`
	MaxAge           int      `koanf:"max_age"           env:"SERVER_CORS_MAX_AGE"`
}

// AuthConfig contains API key authentication configuration.
// When Enabled is true every /mcp route requires a non-empty X-API-Key
// header; when APIKeys is non-empty the header must also match one of them.
type AuthConfig struct {
	Enabled bool     `koanf:"enabled"  env:"AUTH_REQUIRED"`
	APIKeys []string `koanf:"api_keys" env:"AUTH_API_KEYS" sensitive:"true"`
}

// RedisConfig contains Redis connection configuration.
type RedisConfig struct {
	URL             string          `koanf:"url"               env:"REDIS_URL"`
	Host            string          `koanf:"host"              env:"REDIS_HOST"`
	Port            string          `koanf:"port"              env:"REDIS_PORT"`
	Password        SensitiveString `koanf:"password"          env:"REDIS_PASSWORD"    sensitive:"true"`
	DB              int             `koanf:"db"                validate:"min=0,max=15" env:"REDIS_DB"`
	PoolSize        int             `koanf:"pool_size"         env:"REDIS_POOL_SIZE"`
	MinIdleConns    int             `koanf:"min_idle_conns"    env:"REDIS_MIN_IDLE_CONNS"`
	MaxIdleConns    int             `koanf:"max_idle_conns"    env:"REDIS_MAX_IDLE_CONNS"`
	MaxRetries      int             `koanf:"max_retries"       env:"REDIS_MAX_RETRIES"`
	MinRetryBackoff time.Duration   `koanf:"min_retry_backoff" env:"REDIS_MIN_RETRY_BACKOFF"`
	MaxRetryBackoff time.Duration   `koanf:"max_retry_backoff" env:"REDIS_MAX_RETRY_BACKOFF"`
	DialTimeout     time.Duration   `koanf:"dial_timeout"      env:"REDIS_DIAL_TIMEOUT"`
	ReadTimeout     time.Duration   `koanf:"read_timeout"      env:"REDIS_READ_TIMEOUT"`
	WriteTimeout    time.Duration   `koanf:"write_timeout"     env:"REDIS_WRITE_TIMEOUT"`
	PoolTimeout     time.Duration   `koanf:"pool_timeout"      env:"REDIS_POOL_TIMEOUT"`
	PingTimeout     time.Duration   `koanf:"ping_timeout"      env:"REDIS_PING_TIMEOUT"`
	TLSEnabled      bool            `koanf:"tls_enabled"       env:"REDIS_TLS_ENABLED"`
}

// CacheConfig contains invocation cache behavior configuration.
type CacheConfig struct {
	Enabled   bool          `koanf:"enabled"    env:"CACHE_ENABLED"`
	TTL       time.Duration `koanf:"ttl"        env:"CACHE_TTL"`
	KeyPrefix string        `koanf:"key_prefix" env:"CACHE_KEY_PREFIX"`
}

// WisHubConfig contains the WisHub Core knowledge store client configuration.
type WisHubConfig struct {
	BaseURL    string        `koanf:"base_url"    validate:"required,url" env:"WISHUB_CORE_URL"`
	Timeout    time.Duration `koanf:"timeout"                             env:"WISHUB_CORE_TIMEOUT"`
	RetryCount int           `koanf:"retry_count" validate:"min=0"        env:"WISHUB_CORE_RETRY_COUNT"`
}

// ProvidersConfig groups generation back-end credentials.
type ProvidersConfig struct {
	OpenAI ProviderConfig `koanf:"openai"`
	Zhipu  ProviderConfig `koanf:"zhipu"`
}

// ProviderConfig contains credentials and endpoint overrides for one
// generation back-end. Environment mappings for provider keys are explicit
// in env_mappings.go since the two providers share this struct.
type ProviderConfig struct {
	APIKey  SensitiveString `koanf:"api_key"  sensitive:"true"`
	BaseURL string          `koanf:"base_url"`
}

// LLMConfig contains generation retry and timeout behavior.
type LLMConfig struct {
	RetryAttempts    int           `koanf:"retry_attempts"     validate:"min=0" env:"LLM_RETRY_ATTEMPTS"`
	RetryBackoffBase time.Duration `koanf:"retry_backoff_base"                  env:"LLM_RETRY_BACKOFF_BASE"`
	RetryBackoffMax  time.Duration `koanf:"retry_backoff_max"                   env:"LLM_RETRY_BACKOFF_MAX"`
	ProviderTimeout  time.Duration `koanf:"provider_timeout"                    env:"LLM_PROVIDER_TIMEOUT"`
}

// RateLimitConfig contains request rate limiting configuration.
type RateLimitConfig struct {
	Enabled       bool          `koanf:"enabled"        env:"RATELIMIT_ENABLED"`
	Limit         int64         `koanf:"limit"          env:"RATELIMIT_LIMIT"`
	Period        time.Duration `koanf:"period"         env:"RATELIMIT_PERIOD"`
	Prefix        string        `koanf:"prefix"         env:"RATELIMIT_PREFIX"`
	ExcludedPaths []string      `koanf:"excluded_paths" env:"RATELIMIT_EXCLUDED_PATHS"`
}

// MonitoringConfig contains metrics exposure configuration.
type MonitoringConfig struct {
	Enabled bool   `koanf:"enabled" env:"MONITORING_ENABLED"`
	Path    string `koanf:"path"    validate:"omitempty,startswith=/" env:"MONITORING_PATH"`
}

// RuntimeConfig contains runtime behavior configuration.
type RuntimeConfig struct {
	Environment string `koanf:"environment" validate:"oneof=development staging production"       env:"APP_ENV"`
	LogLevel    string `koanf:"log_level"   validate:"oneof=debug info warn error disabled"       env:"LOG_LEVEL"`
	LogJSON     bool   `koanf:"log_json"    env:"LOG_JSON"`
}

// Default returns the configuration the gateway runs with when no source
// overrides anything.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSEnabled:     true,
			CORS: CORSConfig{
				AllowedOrigins:   []string{"*"},
				AllowCredentials: false,
				MaxAge:           300,
			},
			Auth: AuthConfig{
				Enabled: true,
			},
		},
		Redis: RedisConfig{
			Host:            "localhost",
			Port:            "6379",
			DB:              0,
			PoolSize:        10,
			MinIdleConns:    2,
			MaxIdleConns:    5,
			MaxRetries:      3,
			MinRetryBackoff: 8 * time.Millisecond,
			MaxRetryBackoff: 512 * time.Millisecond,
			DialTimeout:     5 * time.Second,
			ReadTimeout:     3 * time.Second,
			WriteTimeout:    3 * time.Second,
			PoolTimeout:     4 * time.Second,
			PingTimeout:     5 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:   true,
			TTL:       time.Hour,
			KeyPrefix: "wishub_mcp",
		},
		WisHub: WisHubConfig{
			BaseURL:    "http://localhost:8000",
			Timeout:    30 * time.Second,
			RetryCount: 2,
		},
		LLM: LLMConfig{
			RetryAttempts:    0,
			RetryBackoffBase: 100 * time.Millisecond,
			RetryBackoffMax:  10 * time.Second,
			ProviderTimeout:  5 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:       false,
			Limit:         100,
			Period:        time.Minute,
			Prefix:        "wishub_mcp:ratelimit",
			ExcludedPaths: []string{"/health", "/metrics"},
		},
		Monitoring: MonitoringConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Runtime: RuntimeConfig{
			Environment: "development",
			LogLevel:    "info",
			LogJSON:     false,
		},
	}
}

// SourceType identifies where a configuration value came from.
type SourceType string

const (
	SourceDefault SourceType = "default"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceCLI     SourceType = "cli"
)

// Metadata records provenance for loaded configuration keys.
type Metadata struct {
	Sources  map[string]SourceType
	LoadedAt time.Time
}

// Source supplies configuration data from one origin (YAML file, CLI flags).
type Source interface {
	Load() (map[string]any, error)
	Type() SourceType
	Close() error
}

// Service loads and validates gateway configuration.
type Service interface {
	Load(ctx context.Context, sources ...Source) (*Config, error)
	Validate(config *Config) error
	GetSource(key string) SourceType
}

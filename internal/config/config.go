// Package config provides configuration management for the scholarly search proxy.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for every environment variable read by Load.
const EnvPrefix = "SCHOLARPROXY"

// Config holds all configuration for the scholarly search proxy.
type Config struct {
	// Server contains HTTP/gRPC server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Search contains request defaults and limits.
	Search SearchConfig `mapstructure:"search"`
	// Ranking contains result post-processing settings.
	Ranking RankingConfig `mapstructure:"ranking"`
	// PaperSources contains upstream provider settings.
	PaperSources PaperSourcesConfig `mapstructure:"paper_sources"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// GRPCPort is the gRPC health server port (default: 9090).
	GRPCPort int `mapstructure:"grpc_port"`
	// MetricsPort is the metrics server port (default: 9091).
	MetricsPort int `mapstructure:"metrics_port"`
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing the response.
	// It must exceed the upstream timeout or slow providers surface as dropped connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// IdleTimeout is the keep-alive idle timeout.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// APIPrefix is the mount point of the search API (default: /api).
	APIPrefix string `mapstructure:"api_prefix"`
	// StaticDir is the directory served under /public/. Empty disables it.
	StaticDir string `mapstructure:"static_dir"`
	// CORSAllowedOrigins lists origins allowed to call the API.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr, discard).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace"`
}

// SearchConfig holds search request settings.
type SearchConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
	// FallbackUnknownSource routes unrecognized source values to the default
	// provider instead of rejecting them.
	FallbackUnknownSource bool `mapstructure:"fallback_unknown_source"`
}

// RankingConfig holds ranking configuration.
type RankingConfig struct {
	// OpenAccessFirst moves open-access works ahead of the rest of the page.
	OpenAccessFirst bool `mapstructure:"open_access_first"`
}

// PaperSourcesConfig holds upstream provider configurations.
type PaperSourcesConfig struct {
	OpenAlex PaperSourceConfig `mapstructure:"openalex"`
	Crossref PaperSourceConfig `mapstructure:"crossref"`
	ArXiv    PaperSourceConfig `mapstructure:"arxiv"`
	// ContactEmail is appended to requests for the providers' polite pools.
	// Read from SCHOLARPROXY_CONTACT_EMAIL only.
	ContactEmail string `mapstructure:"-"`
}

// PaperSourceConfig holds configuration for a single provider.
type PaperSourceConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	BurstSize int           `mapstructure:"burst_size"`
	UserAgent string        `mapstructure:"user_agent"`
}

// HTTPAddress returns the HTTP listen address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// GRPCAddress returns the gRPC listen address.
func (c *ServerConfig) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GRPCPort)
}

// MetricsAddress returns the metrics listen address.
func (c *ServerConfig) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.MetricsPort)
}

// Load reads configuration from defaults, an optional config.yaml and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/scholarly-search-proxy")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadSecrets reads values that must never come from a config file.
func loadSecrets(cfg *Config) {
	cfg.PaperSources.ContactEmail = strings.TrimSpace(os.Getenv(EnvPrefix + "_CONTACT_EMAIL"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.grpc_port", 9090)
	v.SetDefault("server.metrics_port", 9091)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "45s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.api_prefix", "/api")
	v.SetDefault("server.static_dir", "public")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "scholarly_search_proxy")

	v.SetDefault("search.default_page_size", 10)
	v.SetDefault("search.max_page_size", 200)
	v.SetDefault("search.fallback_unknown_source", false)

	v.SetDefault("ranking.open_access_first", false)

	v.SetDefault("paper_sources.openalex.enabled", true)
	v.SetDefault("paper_sources.openalex.base_url", "https://api.openalex.org")
	v.SetDefault("paper_sources.openalex.timeout", "30s")
	v.SetDefault("paper_sources.openalex.rate_limit", 10.0)
	v.SetDefault("paper_sources.openalex.burst_size", 10)
	v.SetDefault("paper_sources.openalex.user_agent", "ScholarlySearchProxy/1.0")

	v.SetDefault("paper_sources.crossref.enabled", true)
	v.SetDefault("paper_sources.crossref.base_url", "https://api.crossref.org")
	v.SetDefault("paper_sources.crossref.timeout", "30s")
	v.SetDefault("paper_sources.crossref.rate_limit", 10.0)
	v.SetDefault("paper_sources.crossref.burst_size", 10)
	v.SetDefault("paper_sources.crossref.user_agent", "ScholarlySearchProxy/1.0")

	v.SetDefault("paper_sources.arxiv.enabled", true)
	v.SetDefault("paper_sources.arxiv.base_url", "https://export.arxiv.org/api")
	v.SetDefault("paper_sources.arxiv.timeout", "30s")
	v.SetDefault("paper_sources.arxiv.rate_limit", 1.0) // arXiv asks for one request every few seconds
	v.SetDefault("paper_sources.arxiv.burst_size", 3)
	v.SetDefault("paper_sources.arxiv.user_agent", "ScholarlySearchProxy/1.0")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate server ports
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort <= 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.Server.GRPCPort)
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)
	}
	if c.Server.APIPrefix != "" && !strings.HasPrefix(c.Server.APIPrefix, "/") {
		return fmt.Errorf("api_prefix must start with '/': %q", c.Server.APIPrefix)
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/': %q", c.Metrics.Path)
	}

	if c.Search.MaxPageSize <= 0 {
		return fmt.Errorf("search max_page_size must be positive")
	}
	if c.Search.DefaultPageSize <= 0 || c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search default_page_size (%d) must be between 1 and max_page_size (%d)",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}

	sources := map[string]PaperSourceConfig{
		"openalex": c.PaperSources.OpenAlex,
		"crossref": c.PaperSources.Crossref,
		"arxiv":    c.PaperSources.ArXiv,
	}
	for name, src := range sources {
		if !src.Enabled {
			continue
		}
		if src.BaseURL == "" {
			return fmt.Errorf("paper source %s: base_url is required", name)
		}
		if src.Timeout <= 0 {
			return fmt.Errorf("paper source %s: timeout must be positive", name)
		}
		if src.RateLimit <= 0 {
			return fmt.Errorf("paper source %s: rate_limit must be positive", name)
		}
	}

	return nil
}

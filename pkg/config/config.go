package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the rerank service
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Auth configuration
	Auth AuthConfig `mapstructure:"auth"`

	// Rerank engine configuration
	Rerank RerankConfig `mapstructure:"rerank"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// AuthConfig holds the optional shared-secret configuration. An empty token
// disables the bearer check entirely.
type AuthConfig struct {
	Token string `mapstructure:"token"`
}

// RerankConfig holds scoring engine configuration
type RerankConfig struct {
	Provider string `mapstructure:"provider"` // embedeverything, reranker, openai, local, mock
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url"` // remote providers only
	APIKey   string `mapstructure:"api_key"`  // remote providers only

	// Request bounds. Zero disables the corresponding check.
	MaxCandidates   int `mapstructure:"max_candidates"`
	MaxCandidateLen int `mapstructure:"max_candidate_len"`
	MaxQueryLen     int `mapstructure:"max_query_len"`

	MaxConcurrency int `mapstructure:"max_concurrency"`
}

// CircuitBreakerConfig holds configuration for circuit breaking around
// remote scoring providers
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// DefaultModel is the cross-encoder loaded when no model is configured.
const DefaultModel = "cross-encoder/ms-marco-MiniLM-L-12-v2"

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.mode", "release")

	// Auth defaults: no token, bearer check disabled
	viper.SetDefault("auth.token", "")

	// Rerank defaults
	viper.SetDefault("rerank.provider", "embedeverything")
	viper.SetDefault("rerank.model", DefaultModel)
	viper.SetDefault("rerank.max_candidates", 256)
	viper.SetDefault("rerank.max_candidate_len", 4096)
	viper.SetDefault("rerank.max_query_len", 1024)
	viper.SetDefault("rerank.max_concurrency", 10)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if token := os.Getenv("RERANK_TOKEN"); token != "" {
		config.Auth.Token = token
	}
	if host := os.Getenv("RERANK_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("RERANK_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if provider := os.Getenv("RERANK_PROVIDER"); provider != "" {
		config.Rerank.Provider = provider
	}
	if model := os.Getenv("RERANK_MODEL"); model != "" {
		config.Rerank.Model = model
	}
	if baseURL := os.Getenv("RERANK_BASE_URL"); baseURL != "" {
		config.Rerank.BaseURL = baseURL
	}
	if apiKey := os.Getenv("RERANK_API_KEY"); apiKey != "" {
		config.Rerank.APIKey = apiKey
	}
	// Remote providers also accept the standard OpenAI key
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" && config.Rerank.APIKey == "" {
		config.Rerank.APIKey = apiKey
	}
}

// HasToken returns true if a shared secret is configured
func (c *Config) HasToken() bool {
	return c.Auth.Token != ""
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

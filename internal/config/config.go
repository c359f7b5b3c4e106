// ABOUTME: Configuration loading and parsing for ads-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete ads-gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Platform  PlatformConfig  `yaml:"platform"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	SSE       SSEConfig       `yaml:"sse"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// PlatformConfig holds advertising platform API configuration
type PlatformConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// SchedulerConfig holds cron scheduling service configuration
type SchedulerConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// SessionsConfig holds session capacity configuration
type SessionsConfig struct {
	MaxConnections int `yaml:"max_connections"`
}

// RateLimitConfig holds admission-control configuration.
// When Enabled is false the limiter middleware is not installed at all.
type RateLimitConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	WindowRaw string `yaml:"window"`
}

// SSEConfig holds server-sent-events keep-alive configuration
type SSEConfig struct {
	HeartbeatInterval time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	HeartbeatIntervalRaw string `yaml:"heartbeat_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults applied by Load when the corresponding field is absent.
const (
	DefaultMaxConnections    = 100
	DefaultPlatformTimeout   = 30 * time.Second
	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = time.Minute
	DefaultHeartbeatInterval = 30 * time.Second
)

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in zero-valued fields that have sensible defaults.
func (c *Config) applyDefaults() {
	if c.Sessions.MaxConnections == 0 {
		c.Sessions.MaxConnections = DefaultMaxConnections
	}
	if c.Platform.Timeout == 0 {
		c.Platform.Timeout = DefaultPlatformTimeout
	}
	if c.RateLimit.MaxRequests == 0 {
		c.RateLimit.MaxRequests = DefaultRateLimitRequests
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = DefaultRateLimitWindow
	}
	if c.SSE.HeartbeatInterval == 0 {
		c.SSE.HeartbeatInterval = DefaultHeartbeatInterval
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Platform.BaseURL == "" {
		return fmt.Errorf("platform.base_url is required")
	}

	if c.Sessions.MaxConnections < 1 {
		return fmt.Errorf("sessions.max_connections must be positive")
	}

	if c.RateLimit.Enabled && c.RateLimit.MaxRequests < 1 {
		return fmt.Errorf("rate_limit.max_requests must be positive when rate limiting is enabled")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Platform.TimeoutRaw != "" {
		cfg.Platform.Timeout, err = time.ParseDuration(cfg.Platform.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing platform.timeout %q: %w", cfg.Platform.TimeoutRaw, err)
		}
	}

	if cfg.RateLimit.WindowRaw != "" {
		cfg.RateLimit.Window, err = time.ParseDuration(cfg.RateLimit.WindowRaw)
		if err != nil {
			return fmt.Errorf("parsing rate_limit.window %q: %w", cfg.RateLimit.WindowRaw, err)
		}
	}

	if cfg.SSE.HeartbeatIntervalRaw != "" {
		cfg.SSE.HeartbeatInterval, err = time.ParseDuration(cfg.SSE.HeartbeatIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing sse.heartbeat_interval %q: %w", cfg.SSE.HeartbeatIntervalRaw, err)
		}
	}

	return nil
}

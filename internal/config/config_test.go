// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, duration parsing, and defaults

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "gateway.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

platform:
  base_url: "https://graph.example.com/v19.0"
  timeout: "10s"

scheduler:
  base_url: "https://api.cron.example.com/v1"
  api_key: "test-key"

sessions:
  max_connections: 25

rate_limit:
  enabled: true
  max_requests: 10
  window: "30s"

sse:
  heartbeat_interval: "15s"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("expected http_addr 0.0.0.0:8080, got %q", cfg.Server.HTTPAddr)
	}
	if cfg.Platform.BaseURL != "https://graph.example.com/v19.0" {
		t.Errorf("unexpected platform base_url %q", cfg.Platform.BaseURL)
	}
	if cfg.Platform.Timeout != 10*time.Second {
		t.Errorf("expected platform timeout 10s, got %v", cfg.Platform.Timeout)
	}
	if cfg.Sessions.MaxConnections != 25 {
		t.Errorf("expected max_connections 25, got %d", cfg.Sessions.MaxConnections)
	}
	if !cfg.RateLimit.Enabled {
		t.Error("expected rate limiting enabled")
	}
	if cfg.RateLimit.MaxRequests != 10 {
		t.Errorf("expected max_requests 10, got %d", cfg.RateLimit.MaxRequests)
	}
	if cfg.RateLimit.Window != 30*time.Second {
		t.Errorf("expected window 30s, got %v", cfg.RateLimit.Window)
	}
	if cfg.SSE.HeartbeatInterval != 15*time.Second {
		t.Errorf("expected heartbeat_interval 15s, got %v", cfg.SSE.HeartbeatInterval)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "127.0.0.1:8080"

platform:
  base_url: "https://graph.example.com/v19.0"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Sessions.MaxConnections != DefaultMaxConnections {
		t.Errorf("expected default max_connections %d, got %d", DefaultMaxConnections, cfg.Sessions.MaxConnections)
	}
	if cfg.Platform.Timeout != DefaultPlatformTimeout {
		t.Errorf("expected default platform timeout %v, got %v", DefaultPlatformTimeout, cfg.Platform.Timeout)
	}
	if cfg.RateLimit.MaxRequests != DefaultRateLimitRequests {
		t.Errorf("expected default max_requests %d, got %d", DefaultRateLimitRequests, cfg.RateLimit.MaxRequests)
	}
	if cfg.RateLimit.Window != DefaultRateLimitWindow {
		t.Errorf("expected default window %v, got %v", DefaultRateLimitWindow, cfg.RateLimit.Window)
	}
	if cfg.RateLimit.Enabled {
		t.Error("rate limiting should be disabled by default")
	}
	if cfg.SSE.HeartbeatInterval != DefaultHeartbeatInterval {
		t.Errorf("expected default heartbeat %v, got %v", DefaultHeartbeatInterval, cfg.SSE.HeartbeatInterval)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("ADS_TEST_API_KEY", "secret-from-env")

	configPath := writeConfig(t, `
server:
  http_addr: "127.0.0.1:8080"

platform:
  base_url: "https://graph.example.com/v19.0"

scheduler:
  base_url: "https://api.cron.example.com/v1"
  api_key: "${ADS_TEST_API_KEY}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Scheduler.APIKey != "secret-from-env" {
		t.Errorf("expected api_key expanded from env, got %q", cfg.Scheduler.APIKey)
	}
}

func TestLoad_UnsetEnvVarExpandsEmpty(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "127.0.0.1:8080"

platform:
  base_url: "https://graph.example.com/v19.0"

scheduler:
  api_key: "${ADS_DEFINITELY_UNSET_VAR}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Scheduler.APIKey != "" {
		t.Errorf("expected empty api_key for unset env var, got %q", cfg.Scheduler.APIKey)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "127.0.0.1:8080"

platform:
  base_url: "https://graph.example.com/v19.0"
  timeout: "not-a-duration"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("expected error to mention timeout, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing http addr",
			mutate:  func(c *Config) { c.Server.HTTPAddr = "" },
			wantErr: "server.http_addr",
		},
		{
			name:    "missing platform base url",
			mutate:  func(c *Config) { c.Platform.BaseURL = "" },
			wantErr: "platform.base_url",
		},
		{
			name:    "non-positive max connections",
			mutate:  func(c *Config) { c.Sessions.MaxConnections = 0 },
			wantErr: "sessions.max_connections",
		},
		{
			name: "rate limit enabled without max requests",
			mutate: func(c *Config) {
				c.RateLimit.Enabled = true
				c.RateLimit.MaxRequests = 0
			},
			wantErr: "rate_limit.max_requests",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				Server:   ServerConfig{HTTPAddr: "127.0.0.1:8080"},
				Platform: PlatformConfig{BaseURL: "https://graph.example.com"},
				Sessions: SessionsConfig{MaxConnections: 10},
				RateLimit: RateLimitConfig{
					MaxRequests: 10,
					Window:      time.Minute,
				},
			}
			tc.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

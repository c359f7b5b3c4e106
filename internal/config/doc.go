// Package config handles configuration loading for ads-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from ADS_GATEWAY_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/ads-gateway/gateway.yaml
//  3. ~/.config/ads-gateway/gateway.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	scheduler:
//	  api_key: "${ADS_SCHEDULER_API_KEY}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
// Advertising platform API:
//
//	platform:
//	  base_url: "https://graph.example.com/v19.0"
//	  timeout: "30s"
//
// Cron scheduling service:
//
//	scheduler:
//	  base_url: "https://api.cronhub.example.com/v1"
//	  api_key: "${ADS_SCHEDULER_API_KEY}"
//
// Session capacity:
//
//	sessions:
//	  max_connections: 100
//
// Admission control:
//
//	rate_limit:
//	  enabled: true
//	  max_requests: 60
//	  window: "1m"
//
// SSE keep-alive:
//
//	sse:
//	  heartbeat_interval: "30s"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config

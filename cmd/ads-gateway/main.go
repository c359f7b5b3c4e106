// ABOUTME: Entry point for the ads-gateway MCP server.
// ABOUTME: Exposes advertising platform tools to LLM clients over JSON-RPC.

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"

	"github.com/admesh/ads-gateway/internal/config"
	"github.com/admesh/ads-gateway/internal/gateway"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
           _
  __ _  __| |___        __ _  __ _| |_ _____      ____ _ _   _
 / _' |/ _' / __|_____ / _' |/ _' | __/ _ \ \ /\ / / _' | | | |
| (_| | (_| \__ \_____| (_| | (_| | ||  __/\ V  V / (_| | |_| |
 \__,_|\__,_|___/      \__, |\__,_|\__\___| \_/\_/ \__,_|\__, |
                       |___/                             |___/
`

// getConfigPath returns the path to the gateway config file.
// Priority: ADS_GATEWAY_CONFIG env var > XDG_CONFIG_HOME/ads-gateway/gateway.yaml > ~/.config/ads-gateway/gateway.yaml
func getConfigPath() string {
	if envPath := os.Getenv("ADS_GATEWAY_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "gateway.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "ads-gateway", "gateway.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: ads-gateway <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the gateway server")
		fmt.Println("  init     Create a new config file interactively")
		fmt.Println("  health   Check gateway health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Platform:  %s\n", cfg.Platform.BaseURL)
	if cfg.Scheduler.BaseURL != "" {
		green.Print("    ▶ ")
		fmt.Printf("Scheduler: %s\n", cfg.Scheduler.BaseURL)
	}
	if cfg.RateLimit.Enabled {
		yellow.Print("    ▶ ")
		fmt.Printf("Rate limit: %d req / %s\n", cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	}

	fmt.Println()

	logger.Info("starting ads-gateway",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
	)

	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	// Handler-level attrs first (from WithAttrs), then record attrs
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	var health gateway.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	fmt.Printf("healthy (%d/%d sessions)\n", health.ActiveSessions, health.MaxSessions)
	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("ads-gateway configuration setup")
	fmt.Println("===============================")
	fmt.Println()

	defaultConfigPath := getConfigPath()

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", "localhost:8080")

	fmt.Println("\n--- Platform Configuration ---")
	platformURL := prompt(reader, "Advertising platform API base URL", "https://graph.facebook.com/v19.0")
	platformTimeout := prompt(reader, "Platform request timeout", "30s")

	fmt.Println("\n--- Scheduler Configuration ---")
	schedulerURL := prompt(reader, "Cron scheduling service URL (leave empty to disable report tools)", "")
	var schedulerKey string
	if schedulerURL != "" {
		schedulerKey = prompt(reader, "Scheduler API key (supports ${VAR} expansion)", "${SCHEDULER_API_KEY}")
	}

	fmt.Println("\n--- Session Configuration ---")
	maxConns := prompt(reader, "Max concurrent sessions", "100")

	fmt.Println("\n--- Rate Limiting ---")
	enableRL := prompt(reader, "Enable rate limiting?", "yes")
	rateLimitEnabled := strings.ToLower(enableRL) == "yes" || strings.ToLower(enableRL) == "y"

	var rlRequests, rlWindow string
	if rateLimitEnabled {
		rlRequests = prompt(reader, "Max requests per window", "60")
		rlWindow = prompt(reader, "Window", "1m")
	}

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	var cfg strings.Builder
	cfg.WriteString("# ads-gateway configuration\n")
	cfg.WriteString("# Generated by ads-gateway init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: \"%s\"\n", httpAddr))
	cfg.WriteString("\n")

	cfg.WriteString("platform:\n")
	cfg.WriteString(fmt.Sprintf("  base_url: \"%s\"\n", platformURL))
	cfg.WriteString(fmt.Sprintf("  timeout: \"%s\"\n", platformTimeout))
	cfg.WriteString("\n")

	if schedulerURL != "" {
		cfg.WriteString("scheduler:\n")
		cfg.WriteString(fmt.Sprintf("  base_url: \"%s\"\n", schedulerURL))
		cfg.WriteString(fmt.Sprintf("  api_key: \"%s\"\n", schedulerKey))
		cfg.WriteString("\n")
	}

	cfg.WriteString("sessions:\n")
	cfg.WriteString(fmt.Sprintf("  max_connections: %s\n", maxConns))
	cfg.WriteString("\n")

	cfg.WriteString("rate_limit:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", rateLimitEnabled))
	if rateLimitEnabled {
		cfg.WriteString(fmt.Sprintf("  max_requests: %s\n", rlRequests))
		cfg.WriteString(fmt.Sprintf("  window: \"%s\"\n", rlWindow))
	}
	cfg.WriteString("\n")

	cfg.WriteString("sse:\n")
	cfg.WriteString("  heartbeat_interval: \"30s\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))

	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  ads-gateway serve\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}

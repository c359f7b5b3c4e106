// ABOUTME: Gateway orchestrator wiring sessions, rate limiting, and the tool catalogue.
// ABOUTME: Manages the HTTP server lifecycle for all three MCP transports.

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/admesh/ads-gateway/internal/config"
	"github.com/admesh/ads-gateway/internal/mcp"
	"github.com/admesh/ads-gateway/internal/platform"
	"github.com/admesh/ads-gateway/internal/ratelimit"
	"github.com/admesh/ads-gateway/internal/scheduler"
	"github.com/admesh/ads-gateway/internal/session"
	"github.com/admesh/ads-gateway/internal/tools"
)

// Gateway orchestrates the ads-gateway server components: the session
// manager, the rate limiter, the tool registry, and the HTTP server that
// carries the WebSocket, SSE, and plain HTTP transports.
type Gateway struct {
	config     *config.Config
	logger     *slog.Logger
	sessions   *session.Manager
	limiter    *ratelimit.Limiter
	registry   *tools.Registry
	dispatcher *mcp.Handler
	httpServer *http.Server
}

// New wires up a gateway from configuration. The tool registry is built and
// sealed here; tool resolution failures after this point are programmer
// errors.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	platformFactory := func(creds platform.Credentials) *platform.Client {
		return platform.NewClient(cfg.Platform.BaseURL, creds, cfg.Platform.Timeout)
	}

	sessions, err := session.NewManager(session.Config{
		API: func(creds platform.Credentials) session.API {
			return platformFactory(creds)
		},
		MaxConnections: cfg.Sessions.MaxConnections,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating session manager: %w", err)
	}

	// The scheduler integration is optional; without a base URL the report
	// tools are simply not registered.
	var sched tools.SchedulerAPI
	if cfg.Scheduler.BaseURL != "" {
		sched = scheduler.NewClient(cfg.Scheduler.BaseURL, cfg.Scheduler.APIKey, cfg.Platform.Timeout)
	}

	registry, err := tools.NewCatalog(tools.CatalogConfig{
		Platform: func(creds platform.Credentials) tools.PlatformAPI {
			return platformFactory(creds)
		},
		Scheduler: sched,
		Sessions:  sessions,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("building tool catalogue: %w", err)
	}

	dispatcher, err := mcp.NewHandler(registry, logger)
	if err != nil {
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(ratelimit.Config{
			MaxRequests: cfg.RateLimit.MaxRequests,
			Window:      cfg.RateLimit.Window,
		})
		logger.Info("rate limiting enabled",
			"max_requests", cfg.RateLimit.MaxRequests,
			"window", cfg.RateLimit.Window,
		)
	}

	gw := &Gateway{
		config:     cfg,
		logger:     logger,
		sessions:   sessions,
		limiter:    limiter,
		registry:   registry,
		dispatcher: dispatcher,
	}

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           gw.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// routes builds the HTTP mux for the auth API and all three MCP transports.
func (g *Gateway) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth", g.withRateLimit(g.handleAuth))
	mux.HandleFunc("POST /select-account/{userId}", g.withRateLimit(g.handleSelectAccount))
	mux.HandleFunc("GET /accounts/{userId}", g.withRateLimit(g.handleListAccounts))
	mux.HandleFunc("GET /health", g.handleHealth)

	mux.HandleFunc("GET /stream/{userId}", g.withRateLimit(g.handleSSE))
	mux.HandleFunc("POST /stream/{userId}", g.withRateLimit(g.handleJSONRPC))
	mux.HandleFunc("POST /mcp/{userId}", g.withRateLimit(g.handleJSONRPC))
	mux.HandleFunc("POST /mcp", g.withRateLimit(g.handleJSONRPC))
	mux.HandleFunc("GET /ws/{userId}", g.withRateLimit(g.handleWebSocket))

	return mux
}

// Sessions exposes the session manager for the CLI health probe and tests.
func (g *Gateway) Sessions() *session.Manager {
	return g.sessions
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails, then performs a graceful shutdown.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", g.config.Server.HTTPAddr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is
// already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown gracefully stops the HTTP server. Active SSE streams and
// WebSocket read loops observe the server closing their connections.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")
	if err := g.httpServer.Shutdown(ctx); err != nil {
		// Long-lived SSE and WebSocket connections can outlive the
		// shutdown deadline; close them forcibly rather than hang.
		if closeErr := g.httpServer.Close(); closeErr != nil {
			return fmt.Errorf("HTTP server close: %w", closeErr)
		}
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	g.logger.Info("gateway shutdown complete")
	return nil
}

// ABOUTME: HTTP handlers for authentication, account selection, and health.
// ABOUTME: Also carries the rate-limit middleware and session id resolution.

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/admesh/ads-gateway/internal/mcp"
	"github.com/admesh/ads-gateway/internal/platform"
	"github.com/admesh/ads-gateway/internal/session"
)

// Headers that may carry the session id when it is not in the URL path.
// X-Session-Id is primary; Mcp-Session-Id is accepted for MCP clients that
// send their transport session header.
const (
	sessionIDHeader    = "X-Session-Id"
	sessionIDHeaderAlt = "Mcp-Session-Id"
)

// AuthResponse is the body returned by POST /auth.
type AuthResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	ActiveSessions int    `json:"activeSessions"`
	MaxSessions    int    `json:"maxSessions"`
}

// handleAuth validates submitted credentials and issues a session id.
func (g *Gateway) handleAuth(w http.ResponseWriter, r *http.Request) {
	var creds platform.Credentials
	if err := decodeBody(r, &creds); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !creds.Valid() {
		g.sendJSONError(w, http.StatusBadRequest, "appId, appSecret, and accessToken are required")
		return
	}

	sess, err := g.sessions.Create(r.Context(), creds)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrCapacityExceeded):
			g.writeJSON(w, http.StatusServiceUnavailable, AuthResponse{Success: false, Error: "session capacity exceeded"})
		case errors.Is(err, session.ErrValidationFailed):
			g.writeJSON(w, http.StatusUnauthorized, AuthResponse{Success: false, Error: err.Error()})
		default:
			g.logger.Error("session creation failed", "error", err)
			g.writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Error: "internal server error"})
		}
		return
	}

	g.writeJSON(w, http.StatusOK, AuthResponse{Success: true, UserID: sess.ID})
}

// handleSelectAccount sets the session's account context after re-validating
// that the account is visible to its credentials.
func (g *Gateway) handleSelectAccount(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("userId")

	var body struct {
		AccountID string `json:"accountId"`
	}
	if err := decodeBody(r, &body); err != nil || body.AccountID == "" {
		g.sendJSONError(w, http.StatusBadRequest, "accountId is required")
		return
	}

	err := g.sessions.SetSelectedAccount(r.Context(), sessionID, body.AccountID)
	switch {
	case err == nil:
		g.writeJSON(w, http.StatusOK, map[string]any{"success": true, "accountId": body.AccountID})
	case errors.Is(err, session.ErrNotFound):
		g.sendJSONError(w, http.StatusUnauthorized, "unknown session")
	case errors.Is(err, session.ErrAccountNotAccessible):
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
	default:
		g.logger.Error("account selection failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handleListAccounts lists the ad accounts visible to the session's
// credentials.
func (g *Gateway) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	sess, ok := g.sessions.Get(r.PathValue("userId"))
	if !ok {
		g.sendJSONError(w, http.StatusUnauthorized, "unknown session")
		return
	}

	client := platform.NewClient(g.config.Platform.BaseURL, sess.Credentials(), g.config.Platform.Timeout)
	accounts, err := client.ListAdAccounts(r.Context())
	if err != nil {
		g.logger.Error("listing accounts failed", "session_id", sess.ID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "listing accounts failed")
		return
	}

	g.writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, HealthResponse{
		Status:         "ok",
		ActiveSessions: g.sessions.ActiveCount(),
		MaxSessions:    g.sessions.MaxConnections(),
	})
}

// handleJSONRPC serves one JSON-RPC envelope per HTTP request. It backs both
// POST /mcp/{userId} and the POST side of /stream/{userId}.
func (g *Gateway) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, mcp.MaxRequestBodySize+1))
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if int64(len(body)) > mcp.MaxRequestBodySize {
		g.sendJSONError(w, http.StatusBadRequest, "request body too large")
		return
	}

	sessionID := resolveSessionID(r, body)
	if sessionID == "" {
		g.sendJSONError(w, http.StatusBadRequest, "no session id in path, header, or body")
		return
	}

	sess, ok := g.sessions.Get(sessionID)
	if !ok {
		g.sendJSONError(w, http.StatusUnauthorized, "unknown session")
		return
	}

	resp := g.dispatcher.HandleMessage(r.Context(), sess, body)
	if resp == nil {
		// Notification: no response body.
		w.WriteHeader(http.StatusAccepted)
		return
	}

	g.writeJSON(w, http.StatusOK, resp)
}

// resolveSessionID extracts the session id for a JSON-RPC request. The URL
// path wins over the headers, which win over a sessionId field in the body.
func resolveSessionID(r *http.Request, body []byte) string {
	if id := r.PathValue("userId"); id != "" {
		return id
	}
	if id := r.Header.Get(sessionIDHeader); id != "" {
		return id
	}
	if id := r.Header.Get(sessionIDHeaderAlt); id != "" {
		return id
	}
	var envelope struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		return envelope.SessionID
	}
	return ""
}

// withRateLimit enforces the per-client quota before any session lookup or
// dispatch.
func (g *Gateway) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	if g.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		allowed, retryAfter := g.limiter.Consume(rateLimitKey(r))
		if !allowed {
			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			g.writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":        "rate limit exceeded",
				"retryAfterMs": retryAfter.Milliseconds(),
			})
			return
		}
		next(w, r)
	}
}

// rateLimitKey is the caller's host. Keying on anything the caller chooses
// (a path segment, a header) would mint a fresh quota per invented value and
// grow the limiter's bucket map without bound.
func rateLimitKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// decodeBody decodes a JSON request body with the shared size cap.
func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, mcp.MaxRequestBodySize+1))
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	if int64(len(body)) > mcp.MaxRequestBodySize {
		return errors.New("request body too large")
	}
	return json.Unmarshal(body, v)
}

// writeJSON writes a JSON response with the given status.
func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	g.writeJSON(w, status, map[string]string{"error": message})
}

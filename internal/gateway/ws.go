// ABOUTME: WebSocket transport adapter for the JSON-RPC tool surface.
// ABOUTME: One long-lived connection per session id embedded in the path.

package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/admesh/ads-gateway/internal/mcp"
)

// wsPingInterval is how often idle connections are pinged to keep
// intermediaries from dropping them.
const wsPingInterval = 30 * time.Second

// handleWebSocket upgrades the connection and pumps JSON-RPC envelopes
// through the dispatcher. Sessions outlive the socket: closing the
// connection releases only the socket's own resources.
func (g *Gateway) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("userId")

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket accept failed", "error", err)
		return
	}

	sess, ok := g.sessions.Get(sessionID)
	if !ok {
		_ = conn.Close(websocket.StatusPolicyViolation, "unknown session")
		return
	}

	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()
	limitKey := rateLimitKey(r)
	g.logger.Info("websocket connected", "session_id", sess.ID, "user_id", sess.UserID)

	go g.pingLoop(ctx, conn)

	for {
		var raw json.RawMessage
		if err := wsjson.Read(ctx, conn, &raw); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				g.logger.Debug("websocket read ended", "session_id", sess.ID, "error", err)
			}
			return
		}

		if g.limiter != nil {
			if allowed, retryAfter := g.limiter.Consume(limitKey); !allowed {
				// Rate-limited notifications are dropped without a reply;
				// only requests may be answered.
				if resp := mcpRateLimitError(raw, retryAfter.Milliseconds()); resp != nil {
					if err := wsjson.Write(ctx, conn, resp); err != nil {
						return
					}
				}
				continue
			}
		}

		resp := g.dispatcher.HandleMessage(ctx, sess, raw)
		if resp == nil {
			continue
		}
		if err := wsjson.Write(ctx, conn, resp); err != nil {
			g.logger.Debug("websocket write failed", "session_id", sess.ID, "error", err)
			return
		}
	}
}

// mcpRateLimitError builds a JSON-RPC rate-limit error for the envelope in
// raw, preserving its id. Returns nil for notifications (missing or null id),
// which must never be answered.
func mcpRateLimitError(raw json.RawMessage, retryAfterMs int64) *mcp.Response {
	var envelope struct {
		ID json.RawMessage `json:"id"`
	}
	_ = json.Unmarshal(raw, &envelope)
	if len(envelope.ID) == 0 || string(envelope.ID) == "null" {
		return nil
	}
	return mcp.NewError(envelope.ID, mcp.CodeRateLimited, "rate limit exceeded",
		map[string]int64{"retryAfterMs": retryAfterMs})
}

// pingLoop keeps the connection alive until the request context ends.
func (g *Gateway) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// ABOUTME: SSE transport adapter used as a liveness channel.
// ABOUTME: Emits a connection event then heartbeats until the client leaves.

package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// handleSSE holds the connection open, emitting an initial connection event
// and then heartbeats on a fixed interval. The stream carries no tool-call
// traffic; tool calls arrive via POST on the same path.
func (g *Gateway) handleSSE(w http.ResponseWriter, r *http.Request) {
	sess, ok := g.sessions.Get(r.PathValue("userId"))
	if !ok {
		g.sendJSONError(w, http.StatusUnauthorized, "unknown session")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		g.logger.Error("streaming not supported")
		g.sendJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	g.logger.Info("sse stream opened", "session_id", sess.ID, "user_id", sess.UserID)

	g.writeSSEEvent(w, "connection", map[string]string{
		"status": "connected",
		"userId": sess.ID,
	})
	flusher.Flush()

	ticker := time.NewTicker(g.config.SSE.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			g.logger.Debug("sse stream closed", "session_id", sess.ID)
			return
		case t := <-ticker.C:
			g.writeSSEEvent(w, "heartbeat", map[string]string{
				"time": t.UTC().Format(time.RFC3339),
			})
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes one event in "event: <name>\ndata: <json>\n\n" form.
func (g *Gateway) writeSSEEvent(w http.ResponseWriter, event string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		g.logger.Error("failed to marshal SSE data", "error", err)
		return
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", dataJSON)
}

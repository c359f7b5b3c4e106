// Package gateway wires the ads-gateway server together: the session
// manager, the rate limiter, the sealed tool registry, and the HTTP server
// carrying all three transports.
//
// Three front doors feed the same JSON-RPC dispatcher:
//
//   - POST /mcp/{userId} (and POST /stream/{userId}): one envelope per
//     request
//   - GET /ws/{userId}: persistent WebSocket, one envelope per text frame
//   - GET /stream/{userId}: SSE liveness channel (connection event plus
//     heartbeats; no tool-call traffic)
//
// The REST-ish surface (POST /auth, POST /select-account/{userId},
// GET /accounts/{userId}, GET /health) manages sessions around those
// transports. Rate limiting, when enabled, runs before any session lookup.
package gateway

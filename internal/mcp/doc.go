// Package mcp implements the JSON-RPC 2.0 dialect of the Model Context
// Protocol that the gateway speaks to LLM clients.
//
// The package is transport-agnostic: the WebSocket, SSE, and plain HTTP
// adapters in internal/gateway each resolve a session and read one raw
// envelope, then delegate to Handler.HandleMessage. Notifications (requests
// without an id) produce no response on any transport.
//
// Supported methods:
//
//   - initialize: protocol handshake; echoes a mutually supported version
//   - tools/list: descriptors from the sealed registry, stable order
//   - tools/call: strict argument validation, then handler execution
//   - resources/list, prompts/list: always empty (nothing is exposed)
//
// Tool execution failures are reported inside the result with isError set;
// JSON-RPC error objects are reserved for protocol-level failures such as
// unparseable JSON, invalid params, or an unknown tool name.
package mcp

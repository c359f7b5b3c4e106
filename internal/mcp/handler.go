// ABOUTME: Transport-agnostic JSON-RPC dispatcher for the MCP tool surface.
// ABOUTME: Routes initialize, tools/list, and tools/call against a sealed registry.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/admesh/ads-gateway/internal/session"
	"github.com/admesh/ads-gateway/internal/tools"
)

const serverName = "ads-gateway"
const serverVersion = "1.0.0"

// Handler dispatches JSON-RPC messages to the tool registry. It is shared by
// every transport; each transport owns framing and session resolution, then
// hands the raw envelope here.
type Handler struct {
	registry *tools.Registry
	logger   *slog.Logger
}

// NewHandler creates a dispatcher over a sealed tool registry.
func NewHandler(registry *tools.Registry, logger *slog.Logger) (*Handler, error) {
	if registry == nil {
		return nil, errors.New("registry is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{registry: registry, logger: logger}, nil
}

// HandleMessage processes one raw JSON-RPC envelope on behalf of sess.
// It returns nil for notifications, which must produce no response.
func (h *Handler) HandleMessage(ctx context.Context, sess *session.Session, raw []byte) *Response {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewError(nil, CodeParseError, "invalid JSON", nil)
	}

	if req.JSONRPC != "2.0" {
		return NewError(req.ID, CodeInvalidRequest, "invalid JSON-RPC version", nil)
	}

	if req.IsNotification() {
		h.logger.Debug("notification received", "method", req.Method, "user_id", sess.UserID)
		return nil
	}

	h.logger.Debug("mcp request", "method", req.Method, "user_id", sess.UserID)

	switch req.Method {
	case "initialize":
		return h.handleInitialize(&req)
	case "tools/list":
		return h.handleToolsList(&req)
	case "tools/call":
		return h.handleToolsCall(ctx, sess, &req)
	case "resources/list":
		return NewResult(req.ID, map[string]any{"resources": []any{}})
	case "prompts/list":
		return NewResult(req.ID, map[string]any{"prompts": []any{}})
	default:
		// Unknown methods get an empty result rather than method-not-found
		// so that clients probing optional MCP surfaces keep working.
		h.logger.Debug("unknown method, returning empty result", "method", req.Method)
		return NewResult(req.ID, map[string]any{})
	}
}

func (h *Handler) handleInitialize(req *Request) *Response {
	var params struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return NewError(req.ID, CodeInvalidParams, "invalid params", nil)
		}
	}

	// Echo a mutually supported version; fall back to our latest when the
	// client asks for one we don't know.
	version := latestProtocolVersion
	if supportedProtocolVersions[params.ProtocolVersion] {
		version = params.ProtocolVersion
	}

	return NewResult(req.ID, map[string]any{
		"protocolVersion": version,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    serverName,
			"version": serverVersion,
		},
	})
}

func (h *Handler) handleToolsList(req *Request) *Response {
	descriptors := h.registry.List()
	result := ListToolsResult{Tools: make([]ToolInfo, len(descriptors))}
	for i, d := range descriptors {
		result.Tools[i] = ToolInfo{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema,
		}
	}
	return NewResult(req.ID, result)
}

func (h *Handler) handleToolsCall(ctx context.Context, sess *session.Session, req *Request) *Response {
	var params CallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return NewError(req.ID, CodeInvalidParams, "invalid params", nil)
		}
	}
	if params.Name == "" {
		return NewError(req.ID, CodeInvalidParams, "tool name is required", nil)
	}

	tool, err := h.registry.Resolve(params.Name)
	if err != nil {
		return NewError(req.ID, CodeUnknownTool, fmt.Sprintf("unknown tool: %s", params.Name), nil)
	}

	if err := tools.ValidateArgs(tool.InputSchema, params.Arguments); err != nil {
		var se *tools.SchemaError
		if errors.As(err, &se) {
			return NewError(req.ID, CodeInvalidParams, se.Error(), nil)
		}
		return NewError(req.ID, CodeInternalError, "schema validation failed", nil)
	}

	output, err := tool.Handler.Execute(ctx, sess, params.Arguments)
	if err != nil {
		h.logger.Warn("tool execution failed",
			"tool_name", params.Name,
			"user_id", sess.UserID,
			"error", err,
		)
		return NewResult(req.ID, CallToolResult{
			Content: []Content{{Type: "text", Text: fmt.Sprintf("%s: %v", params.Name, err)}},
			IsError: true,
		})
	}

	return NewResult(req.ID, CallToolResult{
		Content: []Content{{Type: "text", Text: string(output)}},
	})
}

// ABOUTME: Tests for the JSON-RPC dispatcher.
// ABOUTME: Covers the handshake, tool listing, strict calls, and leniency rules.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/admesh/ads-gateway/internal/platform"
	"github.com/admesh/ads-gateway/internal/session"
	"github.com/admesh/ads-gateway/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAPI struct{}

func (stubAPI) Me(ctx context.Context) (*platform.User, error) {
	return &platform.User{ID: "u1"}, nil
}

func (stubAPI) ListAdAccounts(ctx context.Context) ([]platform.AdAccount, error) {
	return nil, nil
}

func newTestHandler(t *testing.T) (*Handler, *session.Session) {
	t.Helper()

	mgr, err := session.NewManager(session.Config{
		API:            func(platform.Credentials) session.API { return stubAPI{} },
		MaxConnections: 5,
	})
	require.NoError(t, err)

	sess, err := mgr.Create(context.Background(), platform.Credentials{
		AppID: "app", AppSecret: "secret", AccessToken: "token",
	})
	require.NoError(t, err)

	reg := tools.NewRegistry(nil)
	require.NoError(t, reg.Register(&tools.Tool{
		Descriptor: tools.Descriptor{
			Name:        "echo",
			Description: "echoes its input back",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`),
		},
		Handler: tools.HandlerFunc(func(_ context.Context, _ *session.Session, args json.RawMessage) (json.RawMessage, error) {
			return args, nil
		}),
	}))
	require.NoError(t, reg.Register(&tools.Tool{
		Descriptor: tools.Descriptor{
			Name:        "boom",
			Description: "always fails",
			InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
		},
		Handler: tools.HandlerFunc(func(_ context.Context, _ *session.Session, _ json.RawMessage) (json.RawMessage, error) {
			return nil, errors.New("upstream exploded")
		}),
	}))
	reg.Seal()

	h, err := NewHandler(reg, nil)
	require.NoError(t, err)
	return h, sess
}

func TestHandleMessage_Initialize(t *testing.T) {
	h, sess := newTestHandler(t)

	resp := h.HandleMessage(context.Background(), sess,
		[]byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	assert.Equal(t, json.RawMessage(`1`), resp.ID)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2024-11-05", result["protocolVersion"])
	info, ok := result["serverInfo"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, serverName, info["name"])
}

func TestHandleMessage_InitializeUnknownVersionFallsBack(t *testing.T) {
	h, sess := newTestHandler(t)

	resp := h.HandleMessage(context.Background(), sess,
		[]byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"1999-01-01"}}`))
	require.NotNil(t, resp)
	result := resp.Result.(map[string]any)
	assert.Equal(t, latestProtocolVersion, result["protocolVersion"])
}

func TestHandleMessage_NotificationProducesNoResponse(t *testing.T) {
	h, sess := newTestHandler(t)

	resp := h.HandleMessage(context.Background(), sess,
		[]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	assert.Nil(t, resp)
}

func TestHandleMessage_ToolsList(t *testing.T) {
	h, sess := newTestHandler(t)

	resp := h.HandleMessage(context.Background(), sess,
		[]byte(`{"jsonrpc":"2.0","id":7,"method":"tools/list"}`))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	assert.Equal(t, json.RawMessage(`7`), resp.ID)

	result, ok := resp.Result.(ListToolsResult)
	require.True(t, ok)
	require.Len(t, result.Tools, 2)
	assert.Equal(t, "echo", result.Tools[0].Name)
	assert.Equal(t, "boom", result.Tools[1].Name)
}

func TestHandleMessage_ToolsCall(t *testing.T) {
	h, sess := newTestHandler(t)

	resp := h.HandleMessage(context.Background(), sess,
		[]byte(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"echo","arguments":{"text":"hi"}}}`))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(CallToolResult)
	require.True(t, ok)
	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	assert.JSONEq(t, `{"text":"hi"}`, result.Content[0].Text)
}

func TestHandleMessage_ToolsCallUnknownTool(t *testing.T) {
	h, sess := newTestHandler(t)

	resp := h.HandleMessage(context.Background(), sess,
		[]byte(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"nope"}}`))
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeUnknownTool, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "nope")
}

func TestHandleMessage_ToolsCallSchemaViolation(t *testing.T) {
	h, sess := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing required field", `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"echo","arguments":{}}}`},
		{"wrong type", `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"echo","arguments":{"text":5}}}`},
		{"missing tool name", `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.HandleMessage(context.Background(), sess, []byte(tt.body))
			require.NotNil(t, resp)
			require.NotNil(t, resp.Error)
			assert.Equal(t, CodeInvalidParams, resp.Error.Code)
		})
	}
}

func TestHandleMessage_ToolsCallExecutionErrorIsResult(t *testing.T) {
	h, sess := newTestHandler(t)

	resp := h.HandleMessage(context.Background(), sess,
		[]byte(`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"boom"}}`))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error, "execution failures must not surface as JSON-RPC errors")

	result, ok := resp.Result.(CallToolResult)
	require.True(t, ok)
	assert.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Contains(t, result.Content[0].Text, "boom")
	assert.Contains(t, result.Content[0].Text, "upstream exploded")
}

func TestHandleMessage_EmptySurfaces(t *testing.T) {
	h, sess := newTestHandler(t)

	for method, key := range map[string]string{
		"resources/list": "resources",
		"prompts/list":   "prompts",
	} {
		resp := h.HandleMessage(context.Background(), sess,
			[]byte(`{"jsonrpc":"2.0","id":6,"method":"`+method+`"}`))
		require.NotNil(t, resp)
		require.Nil(t, resp.Error)
		result := resp.Result.(map[string]any)
		assert.Empty(t, result[key])
	}
}

func TestHandleMessage_UnknownMethodReturnsEmptyResult(t *testing.T) {
	h, sess := newTestHandler(t)

	resp := h.HandleMessage(context.Background(), sess,
		[]byte(`{"jsonrpc":"2.0","id":8,"method":"logging/setLevel"}`))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{}, resp.Result)
}

func TestHandleMessage_MalformedJSON(t *testing.T) {
	h, sess := newTestHandler(t)

	resp := h.HandleMessage(context.Background(), sess, []byte(`{"jsonrpc":`))
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeParseError, resp.Error.Code)
	assert.Equal(t, json.RawMessage(`null`), resp.ID)
}

func TestHandleMessage_WrongVersion(t *testing.T) {
	h, sess := newTestHandler(t)

	resp := h.HandleMessage(context.Background(), sess,
		[]byte(`{"jsonrpc":"1.0","id":9,"method":"tools/list"}`))
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidRequest, resp.Error.Code)
}

func TestResponse_RoundTrip(t *testing.T) {
	h, sess := newTestHandler(t)

	resp := h.HandleMessage(context.Background(), sess,
		[]byte(`{"jsonrpc":"2.0","id":7,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, `"2.0"`, string(decoded["jsonrpc"]))
	assert.Equal(t, `7`, string(decoded["id"]))
	assert.NotContains(t, decoded, "error")
}

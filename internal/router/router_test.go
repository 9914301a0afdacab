package router

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexuslabs/nexus/internal/config"
	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/store"
	"github.com/nexuslabs/nexus/internal/toolkit"
	"github.com/nexuslabs/nexus/internal/toolkit/builtin"
)

func testState(t *testing.T) *runtime.State {
	t.Helper()
	cfg := config.Default()
	st := store.NewMemoryStore()
	t.Cleanup(func() { st.Close() })

	reg := toolkit.NewRegistry(zap.NewNop())
	reg.Register(builtin.Echo{})
	reg.Register(builtin.GetTime{})

	return runtime.New(cfg, nil, reg, st, nil, nil)
}

func request(method string, params any) *protocol.Request {
	var raw json.RawMessage
	if params != nil {
		b, _ := json.Marshal(params)
		raw = b
	}
	return &protocol.Request{
		JSONRPC: protocol.Version,
		Method:  method,
		Params:  raw,
		ID:      protocol.NewNumberID(1),
	}
}

func TestHandlePing(t *testing.T) {
	rt := New(nil)
	resp := rt.Handle(context.Background(), request("ping", nil), testState(t))
	require.Nil(t, resp.Error)
}

func TestHandleInitialize(t *testing.T) {
	rt := New(nil)
	params := map[string]any{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test-client", "version": "1.0.0"},
	}
	resp := rt.Handle(context.Background(), request("initialize", params), testState(t))
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(*protocol.InitializeResult)
	require.True(t, ok)
	require.Equal(t, protocol.MCPVersion, result.ProtocolVersion)
	require.NotNil(t, result.Capabilities.Tools)
}

func TestHandleInitializeMissingParams(t *testing.T) {
	rt := New(nil)
	resp := rt.Handle(context.Background(), request("initialize", nil), testState(t))
	require.NotNil(t, resp.Error)
	require.Equal(t, protocol.CodeInvalidParams, resp.Error.Code)
}

func TestHandleInitializedNotification(t *testing.T) {
	rt := New(nil)
	resp := rt.Handle(context.Background(), request("initialized", nil), testState(t))
	require.Nil(t, resp.Error)
}

func TestHandleToolsList(t *testing.T) {
	rt := New(nil)
	resp := rt.Handle(context.Background(), request("tools/list", nil), testState(t))
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(protocol.ToolsListResult)
	require.True(t, ok)
	require.NotEmpty(t, result.Tools)

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	require.Contains(t, names, "echo")
	require.Contains(t, names, "get_time")
}

func TestHandleToolsCallEcho(t *testing.T) {
	rt := New(nil)
	params := map[string]any{"name": "echo", "arguments": map[string]any{"text": "Hello, Nexus!"}}
	resp := rt.Handle(context.Background(), request("tools/call", params), testState(t))
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(*protocol.ToolCallResult)
	require.True(t, ok)
	require.False(t, result.IsError)
	require.Contains(t, result.Content[0].Text, "Hello, Nexus!")
}

func TestHandleToolsCallUnknownToolIsToolLevelError(t *testing.T) {
	rt := New(nil)
	params := map[string]any{"name": "nonexistent_tool", "arguments": map[string]any{}}
	resp := rt.Handle(context.Background(), request("tools/call", params), testState(t))
	require.Nil(t, resp.Error) // request itself succeeds

	result, ok := resp.Result.(*protocol.ToolCallResult)
	require.True(t, ok)
	require.True(t, result.IsError)
}

func TestHandlePromptsList(t *testing.T) {
	rt := New(nil)
	resp := rt.Handle(context.Background(), request("prompts/list", nil), testState(t))
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(protocol.PromptsListResult)
	require.True(t, ok)
	require.Empty(t, result.Prompts)
}

func TestHandlePromptsGetNotImplemented(t *testing.T) {
	rt := New(nil)
	resp := rt.Handle(context.Background(), request("prompts/get", nil), testState(t))
	require.NotNil(t, resp.Error)
	require.Equal(t, protocol.CodeMethodNotFound, resp.Error.Code)
}

func TestHandleResourcesList(t *testing.T) {
	rt := New(nil)
	resp := rt.Handle(context.Background(), request("resources/list", nil), testState(t))
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(*protocol.ResourcesListResult)
	require.True(t, ok)
	require.GreaterOrEqual(t, len(result.Resources), 3)
}

func TestHandleResourcesReadConversations(t *testing.T) {
	rt := New(nil)
	params := map[string]any{"uri": "nexus://conversations"}
	resp := rt.Handle(context.Background(), request("resources/read", params), testState(t))
	require.Nil(t, resp.Error)
}

func TestHandleResourcesReadKV(t *testing.T) {
	state := testState(t)
	require.NoError(t, state.Store.KVSet(context.Background(), "test_key", json.RawMessage(`"test_value"`), nil))

	rt := New(nil)
	params := map[string]any{"uri": "nexus://kv/test_key"}
	resp := rt.Handle(context.Background(), request("resources/read", params), state)
	require.Nil(t, resp.Error)
}

func TestHandleResourcesReadMissingKV(t *testing.T) {
	rt := New(nil)
	params := map[string]any{"uri": "nexus://kv/does_not_exist"}
	resp := rt.Handle(context.Background(), request("resources/read", params), testState(t))
	require.NotNil(t, resp.Error)
}

func TestHandleUnknownMethod(t *testing.T) {
	rt := New(nil)
	resp := rt.Handle(context.Background(), request("nonexistent/method", nil), testState(t))
	require.NotNil(t, resp.Error)
	require.Equal(t, protocol.CodeMethodNotFound, resp.Error.Code)
}

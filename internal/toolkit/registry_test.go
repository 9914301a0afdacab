package toolkit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
)

type stubTool struct {
	def     protocol.Tool
	output  *Output
	toolErr *Error
}

func (s *stubTool) Definition() protocol.Tool { return s.def }

func (s *stubTool) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*Output, *Error) {
	return s.output, s.toolErr
}

func TestRegistryRegisterGetList(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Register(&stubTool{def: protocol.Tool{Name: "echo", Description: "echoes input"}})

	tool, ok := r.Get("echo")
	require.True(t, ok)
	require.Equal(t, "echo", tool.Definition().Name)

	list := r.List()
	require.Len(t, list, 1)
	require.Equal(t, "echo", list[0].Name)
}

func TestRegistryExecuteNotFound(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	_, toolErr := r.Execute(context.Background(), "missing", nil, nil)
	require.NotNil(t, toolErr)
	require.Equal(t, NotFound, toolErr.Kind)
}

func TestRegistryExecuteDelegatesToTool(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Register(&stubTool{
		def:    protocol.Tool{Name: "echo"},
		output: Text("hi"),
	})

	out, toolErr := r.Execute(context.Background(), "echo", json.RawMessage(`{}`), nil)
	require.Nil(t, toolErr)
	require.Equal(t, "hi", out.Content[0].Text)
}

func TestRegistryExecuteValidatesInputSchema(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	schema := map[string]any{
		"type":     "object",
		"required": []string{"name"},
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
	}
	r.Register(&stubTool{
		def:    protocol.Tool{Name: "greet", InputSchema: schema},
		output: Text("ok"),
	})

	_, toolErr := r.Execute(context.Background(), "greet", json.RawMessage(`{}`), nil)
	require.NotNil(t, toolErr)
	require.Equal(t, InvalidInput, toolErr.Kind)

	out, toolErr := r.Execute(context.Background(), "greet", json.RawMessage(`{"name":"ada"}`), nil)
	require.Nil(t, toolErr)
	require.Equal(t, "ok", out.Content[0].Text)
}

func TestRegistryRegisterReplacesExisting(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Register(&stubTool{def: protocol.Tool{Name: "x"}, output: Text("first")})
	r.Register(&stubTool{def: protocol.Tool{Name: "x"}, output: Text("second")})

	out, toolErr := r.Execute(context.Background(), "x", nil, nil)
	require.Nil(t, toolErr)
	require.Equal(t, "second", out.Content[0].Text)
}

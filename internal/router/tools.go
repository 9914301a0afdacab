package router

import (
	"context"

	"go.uber.org/zap"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

func handleToolsList(ctx context.Context, state *runtime.State) protocol.ToolsListResult {
	if state.Registry == nil {
		return protocol.ToolsListResult{Tools: []protocol.Tool{}}
	}
	return protocol.ToolsListResult{Tools: state.Registry.List()}
}

func handleToolsCall(ctx context.Context, params []byte, state *runtime.State) (*protocol.ToolCallResult, *protocol.ErrorObject) {
	if len(params) == 0 {
		return nil, protocol.InvalidParams("missing params")
	}

	var callParams protocol.ToolCallParams
	if err := unmarshal(params, &callParams); err != nil {
		return nil, protocol.InvalidParams("invalid tools/call params: " + err.Error())
	}
	if callParams.Name == "" {
		return nil, protocol.InvalidParams("missing 'name' field")
	}

	if state.Logger != nil {
		state.Logger.Info(ctx, "calling tool", zap.String("tool", callParams.Name))
	}

	registry, ok := state.Registry.(*toolkit.Registry)
	if !ok {
		result := &protocol.ToolCallResult{
			Content: []protocol.ContentItem{{Type: "text", Text: "tool execution unavailable"}},
			IsError: true,
		}
		return result, nil
	}

	out, toolErr := registry.Execute(ctx, callParams.Name, callParams.Arguments, state)
	if toolErr != nil {
		if state.Logger != nil {
			state.Logger.Warn(ctx, "tool execution failed", zap.String("tool", callParams.Name), zap.String("error", toolErr.Error()))
		}
		result := &protocol.ToolCallResult{
			Content: []protocol.ContentItem{{Type: "text", Text: toolErr.Error()}},
			IsError: true,
		}
		return result, nil
	}

	result := out.ToProtocol()
	return &result, nil
}

package router

import (
	"context"

	"go.uber.org/zap"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
)

func handleInitialize(ctx context.Context, params []byte, state *runtime.State) (*protocol.InitializeResult, *protocol.ErrorObject) {
	if len(params) == 0 {
		return nil, protocol.InvalidParams("missing params")
	}

	var initParams protocol.InitializeParams
	if err := unmarshal(params, &initParams); err != nil {
		return nil, protocol.InvalidParams("invalid initialize params: " + err.Error())
	}

	if state.Logger != nil {
		state.Logger.Info(ctx, "client connecting",
			zap.String("client_name", initParams.ClientInfo.Name),
			zap.String("client_version", initParams.ClientInfo.Version),
			zap.String("protocol_version", initParams.ProtocolVersion),
		)
	}

	result := &protocol.InitializeResult{
		ProtocolVersion: protocol.MCPVersion,
		Capabilities: protocol.ServerCapabilities{
			Tools:   &protocol.ToolsCapability{ListChanged: false},
			Prompts: &protocol.PromptsCapability{ListChanged: false},
		},
		ServerInfo: state.ServerInfo,
	}

	if state.Logger != nil {
		state.Logger.Info(ctx, "server initialized",
			zap.String("server_name", result.ServerInfo.Name),
			zap.String("server_version", result.ServerInfo.Version),
		)
	}

	return result, nil
}

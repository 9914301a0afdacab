// Package router dispatches parsed JSON-RPC requests to the MCP method
// handler that serves them, and assembles the JSON-RPC response.
package router

import (
	"context"

	"go.uber.org/zap"

	"github.com/nexuslabs/nexus/internal/logging"
	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
)

// Router dispatches one JSON-RPC request at a time against shared runtime
// state. It holds no per-request state of its own.
type Router struct {
	logger *logging.Logger
}

// New builds a Router. logger may be nil, in which case routing is silent.
func New(logger *logging.Logger) *Router {
	return &Router{logger: logger}
}

func (rt *Router) debug(ctx context.Context, msg string, fields ...zap.Field) {
	if rt.logger != nil {
		rt.logger.Debug(ctx, msg, fields...)
	}
}

func (rt *Router) warn(ctx context.Context, msg string, fields ...zap.Field) {
	if rt.logger != nil {
		rt.logger.Warn(ctx, msg, fields...)
	}
}

// Handle routes a single request to its handler and builds the response.
// It never panics on a malformed or unknown method: unknown methods get a
// MethodNotFound response rather than being dropped.
func (rt *Router) Handle(ctx context.Context, req *protocol.Request, state *runtime.State) *protocol.Response {
	method := protocol.ParseMCPMethod(req.Method)
	id := req.ID

	rt.debug(ctx, "routing request", zap.String("method", string(method)))

	switch method {
	case protocol.MethodInitialize:
		result, err := handleInitialize(ctx, req.Params, state)
		if err != nil {
			return protocol.Failure(id, err)
		}
		return protocol.Success(id, result)

	case protocol.MethodInitialized:
		rt.debug(ctx, "received initialized notification")
		return protocol.Success(id, struct{}{})

	case protocol.MethodToolsList:
		result := handleToolsList(ctx, state)
		return protocol.Success(id, result)

	case protocol.MethodToolsCall:
		result, err := handleToolsCall(ctx, req.Params, state)
		if err != nil {
			return protocol.Failure(id, err)
		}
		return protocol.Success(id, result)

	case protocol.MethodPromptsList:
		result := handlePromptsList()
		return protocol.Success(id, result)

	case protocol.MethodPromptsGet:
		rt.warn(ctx, "prompts/get not implemented")
		return protocol.Failure(id, protocol.MethodNotFound("prompts/get"))

	case protocol.MethodResourcesList:
		result, err := handleResourcesList(ctx, state)
		if err != nil {
			return protocol.Failure(id, err)
		}
		return protocol.Success(id, result)

	case protocol.MethodResourcesRead:
		result, err := handleResourcesRead(ctx, req.Params, state)
		if err != nil {
			return protocol.Failure(id, err)
		}
		return protocol.Success(id, result)

	case protocol.MethodPing:
		return protocol.Success(id, handlePing())

	default:
		rt.warn(ctx, "unknown method", zap.String("method", req.Method))
		return protocol.Failure(id, protocol.MethodNotFound(req.Method))
	}
}

// Package builtin implements the tools that ship with every nexus server:
// echo, time, environment inspection, filesystem access, command
// execution, and HTTP requests, each gated by the policy configured in
// internal/config.
package builtin

import (
	"context"
	"encoding/json"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

// Echo returns the input text unchanged. Useful for testing transports
// and client integrations end-to-end.
type Echo struct{}

type echoArgs struct {
	Text string `json:"text"`
}

func (Echo) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "echo",
		Description: "Echoes back the input text. Useful for testing.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{
					"type":        "string",
					"description": "The text to echo back",
				},
			},
			"required": []string{"text"},
		},
	}
}

func (Echo) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args echoArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	return toolkit.Text(args.Text), nil
}

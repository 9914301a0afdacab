package builtin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

// GetTime returns the current server time in ISO 8601 (RFC 3339) format.
type GetTime struct{}

func (GetTime) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "get_time",
		Description: "Returns the current server time in ISO 8601 format.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
			"required":   []string{},
		},
	}
}

func (GetTime) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	now := time.Now().UTC()

	result, err := json.Marshal(map[string]any{
		"time":      now.Format(time.RFC3339),
		"timestamp": now.Unix(),
		"timezone":  "UTC",
	})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}

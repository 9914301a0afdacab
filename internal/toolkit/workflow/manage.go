package workflow

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

const workflowKeyPrefix = "workflow:"

// Define saves a workflow definition (name + steps) under a kv key, for
// later invocation via Execute.
type Define struct{}

type defineArgs struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Steps       json.RawMessage `json:"steps"`
	Inputs      []string        `json:"inputs"`
}

func (Define) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "workflow.define",
		Description: "Saves a workflow definition for later use.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":        map[string]any{"type": "string", "description": "Workflow name"},
				"description": map[string]any{"type": "string", "description": "Workflow description"},
				"steps":       map[string]any{"type": "array", "description": "Workflow steps"},
				"inputs": map[string]any{
					"type": "array", "items": map[string]any{"type": "string"},
					"description": "Required input parameters",
				},
			},
			"required": []string{"name", "steps"},
		},
	}
}

func (Define) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args defineArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if args.Name == "" {
		return nil, toolkit.NewInvalidInput("missing 'name'")
	}

	if err := state.Store.KVSet(ctx, workflowKeyPrefix+args.Name, arguments, nil); err != nil {
		return nil, toolkit.NewExecutionFailed(err.Error())
	}

	result, err := json.Marshal(map[string]any{
		"success":  true,
		"workflow": args.Name,
		"message":  "workflow '" + args.Name + "' saved. Run with workflow.execute",
	})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}

// Execute runs a previously-defined workflow, merging the caller's inputs
// into its initial context before delegating to Run.
type Execute struct{}

type executeArgs struct {
	Name   string         `json:"name"`
	Inputs map[string]any `json:"inputs"`
}

func (Execute) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "workflow.execute",
		Description: "Executes a previously saved workflow.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":   map[string]any{"type": "string", "description": "Workflow name to execute"},
				"inputs": map[string]any{"type": "object", "description": "Input parameters for the workflow"},
			},
			"required": []string{"name"},
		},
	}
}

func (Execute) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args executeArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if args.Name == "" {
		return nil, toolkit.NewInvalidInput("missing 'name'")
	}

	entry, err := state.Store.KVGet(ctx, workflowKeyPrefix+args.Name)
	if err != nil {
		return nil, toolkit.NewExecutionFailed(err.Error())
	}
	if entry == nil {
		return nil, toolkit.NewExecutionFailed("workflow '" + args.Name + "' not found")
	}

	var workflowArgs map[string]any
	if err := json.Unmarshal(entry.Value, &workflowArgs); err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	if args.Inputs != nil {
		workflowArgs["context"] = args.Inputs
	}

	runArgsBytes, err := json.Marshal(workflowArgs)
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}

	return (Run{}).Execute(ctx, runArgsBytes, state)
}

// List enumerates saved workflow names.
type List struct{}

func (List) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "workflow.list",
		Description: "Lists all saved workflows.",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
	}
}

func (List) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	keys, err := state.Store.KVList(ctx, workflowKeyPrefix)
	if err != nil {
		return nil, toolkit.NewExecutionFailed(err.Error())
	}

	workflows := make([]string, 0, len(keys))
	for _, k := range keys {
		workflows = append(workflows, strings.TrimPrefix(k, workflowKeyPrefix))
	}

	result, err := json.Marshal(map[string]any{"count": len(workflows), "workflows": workflows})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}

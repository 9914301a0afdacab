package workflow

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

// Run executes a sequence of tool calls, each step optionally gated by a
// condition and able to reference earlier steps' output via
// {{step_id.field}} templates in its own arguments.
type Run struct{}

type step struct {
	ID        string          `json:"id"`
	Tool      string          `json:"tool"`
	Args      json.RawMessage `json:"args"`
	Condition string          `json:"condition"`
}

type runArgs struct {
	Name    string         `json:"name"`
	Steps   []step         `json:"steps"`
	Context map[string]any `json:"context"`
}

func (Run) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "workflow.run",
		Description: "Executes a workflow: a sequence of tool calls. Each step can reference previous outputs.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{"type": "string", "description": "Workflow name for logging"},
				"steps": map[string]any{
					"type":        "array",
					"description": "Array of workflow steps",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"id":        map[string]any{"type": "string", "description": "Step ID for referencing"},
							"tool":      map[string]any{"type": "string", "description": "Tool to call"},
							"args":      map[string]any{"type": "object", "description": "Tool arguments"},
							"condition": map[string]any{"type": "string", "description": "Condition to check (optional)"},
						},
						"required": []string{"tool"},
					},
				},
				"context": map[string]any{"type": "object", "description": "Initial context variables"},
			},
			"required": []string{"steps"},
		},
	}
}

func (Run) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args runArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if len(args.Steps) == 0 {
		return nil, toolkit.NewInvalidInput("missing 'steps' array")
	}
	workflowName := args.Name
	if workflowName == "" {
		workflowName = "unnamed"
	}

	registry, ok := state.Registry.(*toolkit.Registry)
	if !ok {
		return nil, toolkit.NewInternal("tool registry unavailable")
	}

	stepContext := make(map[string]any, len(args.Context))
	for k, v := range args.Context {
		stepContext[k] = v
	}

	var results []map[string]any
	success := true

	for index, s := range args.Steps {
		stepID := s.ID
		if stepID == "" {
			stepID = stepIDFromIndex(index)
		}
		if s.Tool == "" {
			return nil, toolkit.NewInvalidInput("step " + stepID + " missing 'tool'")
		}

		if s.Condition != "" && !evaluateCondition(s.Condition, stepContext) {
			results = append(results, map[string]any{
				"step_id": stepID, "tool": s.Tool, "skipped": true, "reason": "condition not met",
			})
			continue
		}

		rawArgs := map[string]any{}
		if len(s.Args) > 0 {
			if err := json.Unmarshal(s.Args, &rawArgs); err != nil {
				return nil, toolkit.NewInvalidInput("step " + stepID + " has invalid args: " + err.Error())
			}
		}
		substituted := substituteContext(rawArgs, stepContext)
		substitutedBytes, err := json.Marshal(substituted)
		if err != nil {
			return nil, toolkit.NewInternal(err.Error())
		}

		out, toolErr := registry.Execute(ctx, s.Tool, substitutedBytes, state)
		if toolErr != nil {
			success = false
			results = append(results, map[string]any{
				"step_id": stepID, "tool": s.Tool, "error": toolErr.Error(),
			})
			break
		}

		var outputValue any = ""
		if len(out.Content) > 0 {
			text := out.Content[0].Text
			if err := json.Unmarshal([]byte(text), &outputValue); err != nil {
				outputValue = text
			}
		}

		stepContext[stepID] = outputValue
		stepContext["_last"] = outputValue

		results = append(results, map[string]any{
			"step_id": stepID, "tool": s.Tool, "success": true, "output": outputValue,
		})
	}

	result, err := json.Marshal(map[string]any{
		"workflow":       workflowName,
		"success":        success,
		"steps_executed": len(results),
		"steps_total":    len(args.Steps),
		"results":        results,
		"final_context":  stepContext,
	})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}

func stepIDFromIndex(index int) string {
	return "step_" + strconv.Itoa(index)
}

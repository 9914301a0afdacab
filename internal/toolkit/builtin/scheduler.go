package builtin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/scheduler"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

// SchedulerCreate registers a new cron-scheduled tool invocation.
type SchedulerCreate struct{}

type schedulerCreateArgs struct {
	Name string          `json:"name"`
	Cron string          `json:"cron"`
	Tool string          `json:"tool"`
	Args json.RawMessage `json:"args"`
}

func (SchedulerCreate) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "scheduler.create",
		Description: "Creates a new scheduled task. Cron format: 'minute hour day month weekday'.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{"type": "string", "description": "Task name"},
				"cron": map[string]any{"type": "string", "description": "Cron expression, e.g. '*/5 * * * *'"},
				"tool": map[string]any{"type": "string", "description": "Tool to execute"},
				"args": map[string]any{"type": "object", "description": "Tool arguments"},
			},
			"required": []string{"name", "cron", "tool"},
		},
	}
}

func (SchedulerCreate) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args schedulerCreateArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if args.Name == "" || args.Cron == "" || args.Tool == "" {
		return nil, toolkit.NewInvalidInput("missing 'name', 'cron', or 'tool'")
	}
	taskArgs := args.Args
	if len(taskArgs) == 0 {
		taskArgs = json.RawMessage(`{}`)
	}

	task := &scheduler.Task{
		ID:        uuid.NewString(),
		Name:      args.Name,
		Cron:      args.Cron,
		Tool:      args.Tool,
		Args:      taskArgs,
		Enabled:   true,
		CreatedAt: time.Now().UTC(),
	}

	if state.Scheduler == nil {
		return nil, toolkit.NewExecutionFailed("scheduler is not available")
	}
	if err := state.Scheduler.AddTask(task); err != nil {
		return nil, toolkit.NewExecutionFailed(err.Error())
	}

	result, err := json.Marshal(map[string]any{
		"success": true,
		"task_id": task.ID,
		"name":    args.Name,
		"cron":    args.Cron,
		"message": "scheduled task '" + args.Name + "' created",
	})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}

// SchedulerList enumerates scheduled tasks.
type SchedulerList struct{}

func (SchedulerList) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "scheduler.list",
		Description: "Lists all scheduled tasks.",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
	}
}

func (SchedulerList) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	if state.Scheduler == nil {
		return toolkit.Text(`{"count":0,"tasks":[]}`), nil
	}
	tasks := state.Scheduler.ListTasks()

	out := make([]map[string]any, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, map[string]any{
			"id":         t.ID,
			"name":       t.Name,
			"cron":       t.Cron,
			"tool":       t.Tool,
			"enabled":    t.Enabled,
			"last_run":   t.LastRun,
			"created_at": t.CreatedAt,
		})
	}

	result, err := json.Marshal(map[string]any{"count": len(out), "tasks": out})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}

// SchedulerDelete removes a scheduled task.
type SchedulerDelete struct{}

type schedulerIDArgs struct {
	ID string `json:"id"`
}

func (SchedulerDelete) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "scheduler.delete",
		Description: "Deletes a scheduled task.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"id": map[string]any{"type": "string", "description": "Task ID"}},
			"required":   []string{"id"},
		},
	}
}

func (SchedulerDelete) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args schedulerIDArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if args.ID == "" {
		return nil, toolkit.NewInvalidInput("missing 'id'")
	}

	deleted := state.Scheduler != nil && state.Scheduler.RemoveTask(args.ID)
	message := "task not found"
	if deleted {
		message = "task deleted"
	}

	result, err := json.Marshal(map[string]any{"success": deleted, "id": args.ID, "message": message})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}

// SchedulerToggle enables or disables a scheduled task.
type SchedulerToggle struct{}

type schedulerToggleArgs struct {
	ID      string `json:"id"`
	Enabled *bool  `json:"enabled"`
}

func (SchedulerToggle) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "scheduler.toggle",
		Description: "Enables or disables a scheduled task.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":      map[string]any{"type": "string", "description": "Task ID"},
				"enabled": map[string]any{"type": "boolean", "description": "Whether to enable the task"},
			},
			"required": []string{"id", "enabled"},
		},
	}
}

func (SchedulerToggle) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args schedulerToggleArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if args.ID == "" || args.Enabled == nil {
		return nil, toolkit.NewInvalidInput("missing 'id' or 'enabled'")
	}

	updated := state.Scheduler != nil && state.Scheduler.SetEnabled(args.ID, *args.Enabled)
	message := "task not found"
	if updated {
		if *args.Enabled {
			message = "task enabled"
		} else {
			message = "task disabled"
		}
	}

	result, err := json.Marshal(map[string]any{
		"success": updated, "id": args.ID, "enabled": *args.Enabled, "message": message,
	})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}

// SchedulerRun manually fires a scheduled task immediately, outside its
// cron cadence, reusing the same registry lookup path as the scheduler's
// own tick-driven executor.
type SchedulerRun struct{}

func (SchedulerRun) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "scheduler.run",
		Description: "Manually triggers a scheduled task immediately.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"id": map[string]any{"type": "string", "description": "Task ID to run"}},
			"required":   []string{"id"},
		},
	}
}

func (SchedulerRun) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args schedulerIDArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if args.ID == "" {
		return nil, toolkit.NewInvalidInput("missing 'id'")
	}
	if state.Scheduler == nil {
		return nil, toolkit.NewExecutionFailed("scheduler is not available")
	}

	task, ok := state.Scheduler.GetTask(args.ID)
	if !ok {
		return nil, toolkit.NewExecutionFailed("task not found")
	}

	registry, ok := state.Registry.(*toolkit.Registry)
	if !ok {
		return nil, toolkit.NewInternal("tool registry unavailable")
	}

	out, toolErr := registry.Execute(ctx, task.Tool, task.Args, state)
	if toolErr != nil {
		return nil, toolkit.NewExecutionFailed(toolErr.Error())
	}

	var outputText string
	if len(out.Content) > 0 {
		outputText = out.Content[0].Text
	}

	result, err := json.Marshal(map[string]any{
		"success":   true,
		"task_id":   args.ID,
		"task_name": task.Name,
		"tool":      task.Tool,
		"output":    outputText,
	})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}

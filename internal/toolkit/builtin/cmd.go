package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/subprocess"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

const maxCmdTimeoutSecs = 300

// CmdExec runs a command against the configured allow-list, with wildcard
// and prefix matching ("git*" matches "git", "git-log").
type CmdExec struct{}

type cmdExecArgs struct {
	Command     string   `json:"command"`
	Args        []string `json:"args"`
	TimeoutSecs uint64   `json:"timeout_secs"`
}

func isCommandAllowed(command string, allowed []string) bool {
	if len(allowed) == 0 {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == command {
			return true
		}
		if strings.HasSuffix(a, "*") {
			prefix := strings.TrimSuffix(a, "*")
			if strings.HasPrefix(command, prefix) {
				return true
			}
		}
	}
	return false
}

func (CmdExec) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "cmd.exec",
		Description: "Executes a shell command. Only allowed commands can be run.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command": map[string]any{"type": "string", "description": "The command to execute"},
				"args": map[string]any{
					"type": "array", "items": map[string]any{"type": "string"},
					"description": "Arguments to pass to the command", "default": []string{},
				},
				"timeout_secs": map[string]any{
					"type": "integer", "description": "Timeout in seconds (default: 30, max: 300)", "default": 30,
				},
			},
			"required": []string{"command"},
		},
	}
}

func (CmdExec) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	args := cmdExecArgs{TimeoutSecs: 30}
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}

	allowed := state.Config.Security.AllowedCommands
	if !isCommandAllowed(args.Command, allowed) {
		return nil, toolkit.NewPermissionDenied(fmt.Sprintf("command not in allowed list: %s", args.Command))
	}

	timeoutSecs := args.TimeoutSecs
	if timeoutSecs == 0 || timeoutSecs > maxCmdTimeoutSecs {
		timeoutSecs = maxCmdTimeoutSecs
	}

	runner := subprocess.WithTimeout(time.Duration(timeoutSecs) * time.Second)
	output, err := runner.Run(ctx, args.Command, args.Args)
	if err != nil {
		var timeoutErr *subprocess.ErrTimeout
		if as, ok := err.(*subprocess.ErrTimeout); ok {
			timeoutErr = as
			return nil, toolkit.NewTimeout(timeoutErr.Seconds)
		}
		return nil, toolkit.NewExecutionFailed(err.Error())
	}

	result, marshalErr := json.Marshal(map[string]any{
		"exit_code": output.ExitCode,
		"success":   output.Success,
		"stdout":    output.Stdout,
		"stderr":    output.Stderr,
	})
	if marshalErr != nil {
		return nil, toolkit.NewInternal(marshalErr.Error())
	}

	if output.Success {
		return toolkit.Text(string(result)), nil
	}
	return &toolkit.Output{
		Content: []protocol.ContentItem{{Type: "text", Text: string(result)}},
		IsError: true,
	}, nil
}

package builtin

import (
	"context"
	"encoding/json"
	"os"
	"runtime"
	"sort"
	"strings"

	goruntime "github.com/nexuslabs/nexus/internal/runtime"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

// EnvGet reads a single environment variable.
type EnvGet struct{}

type envGetArgs struct {
	Key     string `json:"key"`
	Default string `json:"default"`
}

func (EnvGet) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "env.get",
		Description: "Gets the value of an environment variable.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"key":     map[string]any{"type": "string", "description": "Environment variable name"},
				"default": map[string]any{"type": "string", "description": "Default value if not set"},
			},
			"required": []string{"key"},
		},
	}
}

func (EnvGet) Execute(ctx context.Context, arguments json.RawMessage, state *goruntime.State) (*toolkit.Output, *toolkit.Error) {
	var args envGetArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if args.Key == "" {
		return nil, toolkit.NewInvalidInput("missing 'key'")
	}

	value, found := os.LookupEnv(args.Key)
	if !found {
		value = args.Default
	}

	result, err := json.Marshal(map[string]any{
		"key":   args.Key,
		"value": value,
		"found": found,
	})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}

// EnvList enumerates environment variable names, optionally filtered by
// prefix. Values are withheld unless show_values is set, since env vars
// frequently carry credentials.
type EnvList struct{}

type envListArgs struct {
	Prefix     string `json:"prefix"`
	ShowValues bool   `json:"show_values"`
}

func (EnvList) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "env.list",
		Description: "Lists environment variable names (not values for security). Use prefix to filter.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"prefix":      map[string]any{"type": "string", "description": "Filter by prefix (e.g., 'PATH', 'HOME')"},
				"show_values": map[string]any{"type": "boolean", "description": "Show values (default: false for security)"},
			},
		},
	}
}

func (EnvList) Execute(ctx context.Context, arguments json.RawMessage, state *goruntime.State) (*toolkit.Output, *toolkit.Error) {
	var args envListArgs
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, toolkit.NewInvalidInput(err.Error())
		}
	}

	var vars []map[string]any
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		key := parts[0]
		if args.Prefix != "" && !strings.HasPrefix(key, args.Prefix) {
			continue
		}
		if args.ShowValues && len(parts) == 2 {
			vars = append(vars, map[string]any{"key": key, "value": parts[1]})
		} else {
			vars = append(vars, map[string]any{"key": key})
		}
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i]["key"].(string) < vars[j]["key"].(string) })

	result, err := json.Marshal(map[string]any{
		"count":     len(vars),
		"variables": vars,
	})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}

// SysInfo reports basic host and process information.
type SysInfo struct{}

func (SysInfo) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "sys.info",
		Description: "Gets system information (OS, arch, hostname, etc.).",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
	}
}

func (SysInfo) Execute(ctx context.Context, arguments json.RawMessage, state *goruntime.State) (*toolkit.Output, *toolkit.Error) {
	hostname, _ := os.Hostname()
	cwd, _ := os.Getwd()
	exePath, _ := os.Executable()
	home := os.Getenv("HOME")
	if home == "" {
		home = os.Getenv("USERPROFILE")
	}

	result, err := json.Marshal(map[string]any{
		"os":          runtime.GOOS,
		"arch":        runtime.GOARCH,
		"hostname":    hostname,
		"current_dir": cwd,
		"home_dir":    home,
		"temp_dir":    os.TempDir(),
		"exe_path":    exePath,
	})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}

// Package plugin turns a configured external command into a toolkit.Tool,
// giving operators a way to add capabilities without recompiling the
// server: each internal/config.PluginConfig entry becomes one callable
// tool whose name, schema, and invocation shape come entirely from
// configuration.
package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/nexuslabs/nexus/internal/config"
	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

const defaultTimeoutSecs = 30

var paramPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Plugin wraps one PluginConfig as a Tool, running its command as a
// subprocess per call.
type Plugin struct {
	cfg config.PluginConfig
}

// New builds a Plugin tool from its configuration.
func New(cfg config.PluginConfig) Plugin {
	return Plugin{cfg: cfg}
}

// LoadAll builds one Plugin per entry in cfgs.
func LoadAll(cfgs []config.PluginConfig) []Plugin {
	plugins := make([]Plugin, 0, len(cfgs))
	for _, c := range cfgs {
		plugins = append(plugins, New(c))
	}
	return plugins
}

func (p Plugin) Definition() protocol.Tool {
	schema := p.cfg.InputSchema
	if schema == nil {
		schema = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return protocol.Tool{
		Name:        p.cfg.Name,
		Description: p.cfg.Description,
		InputSchema: schema,
	}
}

func (p Plugin) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	params := map[string]any{}
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &params); err != nil {
			return nil, toolkit.NewInvalidInput(err.Error())
		}
	}

	timeoutSecs := p.cfg.TimeoutSecs
	if timeoutSecs == 0 {
		timeoutSecs = defaultTimeoutSecs
	}
	runCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	args := make([]string, len(p.cfg.ArgsTemplate))
	for i, tmpl := range p.cfg.ArgsTemplate {
		args[i] = substitute(tmpl, params)
	}

	cmd := exec.CommandContext(runCtx, p.cfg.Command, args...)
	if p.cfg.WorkingDir != "" {
		cmd.Dir = p.cfg.WorkingDir
	}

	cmd.Env = os.Environ()
	for k, v := range p.cfg.Env {
		cmd.Env = append(cmd.Env, k+"="+substitute(v, params))
	}

	switch p.cfg.InputMode {
	case "stdin":
		cmd.Stdin = bytes.NewReader(arguments)
	case "env":
		for k, v := range params {
			cmd.Env = append(cmd.Env, "NEXUS_ARG_"+strings.ToUpper(k)+"="+stringify(v))
		}
		cmd.Env = append(cmd.Env, "NEXUS_ARGS_JSON="+string(arguments))
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return nil, toolkit.NewTimeout(uint64(timeoutSecs))
	}
	if err != nil {
		return nil, toolkit.NewExecutionFailed(strings.TrimSpace(stderr.String()))
	}

	return toolkit.Text(formatOutput(p.cfg.OutputMode, stdout.String())), nil
}

func formatOutput(mode, raw string) string {
	if mode == "json" {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			if pretty, err := json.MarshalIndent(v, "", "  "); err == nil {
				return string(pretty)
			}
		}
		return raw
	}
	return strings.TrimRight(raw, " \t\r\n")
}

// substitute replaces every ${param} placeholder in s with its stringified
// value from params. Placeholders naming unknown params are left untouched.
func substitute(s string, params map[string]any) string {
	return paramPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		v, ok := params[name]
		if !ok {
			return match
		}
		return stringify(v)
	})
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

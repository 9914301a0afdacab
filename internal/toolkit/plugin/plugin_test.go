package plugin

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nexuslabs/nexus/internal/config"
)

func TestSubstituteReplacesKnownParams(t *testing.T) {
	got := substitute("hello ${name}", map[string]any{"name": "ada"})
	require.Equal(t, "hello ada", got)
}

func TestSubstituteLeavesUnknownParamsUntouched(t *testing.T) {
	got := substitute("${missing}", map[string]any{})
	require.Equal(t, "${missing}", got)
}

func TestStringifyNumbersAndBooleans(t *testing.T) {
	require.Equal(t, "42", stringify(42.0))
	require.Equal(t, "true", stringify(true))
	require.Equal(t, "", stringify(nil))
}

func TestFormatOutputTextTrimsWhitespace(t *testing.T) {
	require.Equal(t, "hello", formatOutput("text", "hello\n\n"))
}

func TestFormatOutputJSONPrettyPrints(t *testing.T) {
	out := formatOutput("json", `{"a":1}`)
	require.Contains(t, out, "\"a\": 1")
}

func TestPluginExecuteArgsMode(t *testing.T) {
	p := New(config.PluginConfig{
		Name:         "echo-args",
		Command:      "echo",
		ArgsTemplate: []string{"hello", "${name}"},
		InputMode:    "args",
		OutputMode:   "text",
		TimeoutSecs:  5,
	})

	args, err := json.Marshal(map[string]any{"name": "world"})
	require.NoError(t, err)

	out, toolErr := p.Execute(context.Background(), args, nil)
	require.Nil(t, toolErr)
	require.Equal(t, "hello world", out.Content[0].Text)
}

func TestPluginExecuteStdinMode(t *testing.T) {
	p := New(config.PluginConfig{
		Name:        "cat-stdin",
		Command:     "cat",
		InputMode:   "stdin",
		OutputMode:  "text",
		TimeoutSecs: 5,
	})

	args := json.RawMessage(`{"x":1}`)
	out, toolErr := p.Execute(context.Background(), args, nil)
	require.Nil(t, toolErr)
	require.Equal(t, `{"x":1}`, out.Content[0].Text)
}

func TestPluginExecuteTimeout(t *testing.T) {
	p := New(config.PluginConfig{
		Name:        "sleeper",
		Command:     "sleep",
		ArgsTemplate: []string{"5"},
		TimeoutSecs: 1,
	})

	_, toolErr := p.Execute(context.Background(), json.RawMessage(`{}`), nil)
	require.NotNil(t, toolErr)
	require.Equal(t, 3, int(toolErr.Kind)) // toolkit.Timeout
}

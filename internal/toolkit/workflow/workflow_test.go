package workflow

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexuslabs/nexus/internal/config"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/store"
	"github.com/nexuslabs/nexus/internal/toolkit"
	"github.com/nexuslabs/nexus/internal/toolkit/builtin"
)

func testState(t *testing.T) *runtime.State {
	t.Helper()
	cfg := config.Default()
	st := store.NewMemoryStore()
	t.Cleanup(func() { st.Close() })

	reg := toolkit.NewRegistry(zap.NewNop())
	reg.Register(builtin.Echo{})
	reg.Register(builtin.GetTime{})

	return runtime.New(cfg, nil, reg, st, nil, nil)
}

func TestRunExecutesStepsInOrder(t *testing.T) {
	state := testState(t)
	args, err := json.Marshal(map[string]any{
		"name": "demo",
		"steps": []map[string]any{
			{"id": "s1", "tool": "echo", "args": map[string]any{"text": "hello"}},
		},
	})
	require.NoError(t, err)

	out, toolErr := Run{}.Execute(context.Background(), args, state)
	require.Nil(t, toolErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.Content[0].Text), &result))
	require.Equal(t, true, result["success"])
	require.Equal(t, float64(1), result["steps_executed"])
}

func TestRunSubstitutesPriorStepOutput(t *testing.T) {
	state := testState(t)
	args, err := json.Marshal(map[string]any{
		"steps": []map[string]any{
			{"id": "s1", "tool": "echo", "args": map[string]any{"text": "abc"}},
			{"id": "s2", "tool": "echo", "args": map[string]any{"text": "{{s1}}"}},
		},
	})
	require.NoError(t, err)

	out, toolErr := Run{}.Execute(context.Background(), args, state)
	require.Nil(t, toolErr)
	require.Contains(t, out.Content[0].Text, "abc")
}

func TestRunSkipsStepWhenConditionNotMet(t *testing.T) {
	state := testState(t)
	args, err := json.Marshal(map[string]any{
		"context": map[string]any{"flag": "off"},
		"steps": []map[string]any{
			{"id": "s1", "tool": "echo", "args": map[string]any{"text": "x"}, "condition": "flag == on"},
		},
	})
	require.NoError(t, err)

	out, toolErr := Run{}.Execute(context.Background(), args, state)
	require.Nil(t, toolErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.Content[0].Text), &result))
	results := result["results"].([]any)
	first := results[0].(map[string]any)
	require.Equal(t, true, first["skipped"])
}

func TestRunStopsOnUnknownTool(t *testing.T) {
	state := testState(t)
	args, err := json.Marshal(map[string]any{
		"steps": []map[string]any{
			{"id": "s1", "tool": "nonexistent"},
		},
	})
	require.NoError(t, err)

	out, toolErr := Run{}.Execute(context.Background(), args, state)
	require.Nil(t, toolErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.Content[0].Text), &result))
	require.Equal(t, false, result["success"])
}

func TestDefineExecuteListLifecycle(t *testing.T) {
	state := testState(t)

	defineArgs, err := json.Marshal(map[string]any{
		"name": "greet",
		"steps": []map[string]any{
			{"id": "s1", "tool": "echo", "args": map[string]any{"text": "hi"}},
		},
	})
	require.NoError(t, err)
	_, toolErr := Define{}.Execute(context.Background(), defineArgs, state)
	require.Nil(t, toolErr)

	listOut, toolErr := List{}.Execute(context.Background(), json.RawMessage(`{}`), state)
	require.Nil(t, toolErr)
	var listResult map[string]any
	require.NoError(t, json.Unmarshal([]byte(listOut.Content[0].Text), &listResult))
	require.Equal(t, float64(1), listResult["count"])

	execArgs, err := json.Marshal(map[string]any{"name": "greet"})
	require.NoError(t, err)
	execOut, toolErr := Execute{}.Execute(context.Background(), execArgs, state)
	require.Nil(t, toolErr)

	var execResult map[string]any
	require.NoError(t, json.Unmarshal([]byte(execOut.Content[0].Text), &execResult))
	require.Equal(t, true, execResult["success"])
}

func TestExecuteMissingWorkflow(t *testing.T) {
	state := testState(t)
	args, err := json.Marshal(map[string]any{"name": "does_not_exist"})
	require.NoError(t, err)

	_, toolErr := Execute{}.Execute(context.Background(), args, state)
	require.NotNil(t, toolErr)
	require.Equal(t, toolkit.ExecutionFailed, toolErr.Kind)
}

package builtin

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexuslabs/nexus/internal/config"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/scheduler"
	"github.com/nexuslabs/nexus/internal/store"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

func schedulerTestState(t *testing.T) *runtime.State {
	t.Helper()
	cfg := config.Default()
	st := store.NewMemoryStore()
	t.Cleanup(func() { st.Close() })

	reg := toolkit.NewRegistry(zap.NewNop())
	reg.Register(Echo{})

	sched := scheduler.New(zap.NewNop())
	return runtime.New(cfg, nil, reg, st, nil, sched)
}

func TestSchedulerCreateAndList(t *testing.T) {
	state := schedulerTestState(t)

	createArgs, err := json.Marshal(map[string]any{
		"name": "heartbeat", "cron": "*/5 * * * *", "tool": "echo", "args": map[string]any{"text": "ping"},
	})
	require.NoError(t, err)

	out, toolErr := SchedulerCreate{}.Execute(context.Background(), createArgs, state)
	require.Nil(t, toolErr)

	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.Content[0].Text), &created))
	require.Equal(t, true, created["success"])
	taskID := created["task_id"].(string)
	require.NotEmpty(t, taskID)

	listOut, toolErr := SchedulerList{}.Execute(context.Background(), json.RawMessage(`{}`), state)
	require.Nil(t, toolErr)
	var listed map[string]any
	require.NoError(t, json.Unmarshal([]byte(listOut.Content[0].Text), &listed))
	require.Equal(t, float64(1), listed["count"])
}

func TestSchedulerCreateRejectsInvalidCron(t *testing.T) {
	state := schedulerTestState(t)
	args, err := json.Marshal(map[string]any{"name": "x", "cron": "bad cron", "tool": "echo"})
	require.NoError(t, err)

	_, toolErr := SchedulerCreate{}.Execute(context.Background(), args, state)
	require.NotNil(t, toolErr)
}

func TestSchedulerToggleAndDelete(t *testing.T) {
	state := schedulerTestState(t)
	createArgs, err := json.Marshal(map[string]any{"name": "x", "cron": "* * * * *", "tool": "echo"})
	require.NoError(t, err)
	out, toolErr := SchedulerCreate{}.Execute(context.Background(), createArgs, state)
	require.Nil(t, toolErr)
	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.Content[0].Text), &created))
	taskID := created["task_id"].(string)

	toggleArgs, err := json.Marshal(map[string]any{"id": taskID, "enabled": false})
	require.NoError(t, err)
	toggleOut, toolErr := SchedulerToggle{}.Execute(context.Background(), toggleArgs, state)
	require.Nil(t, toolErr)
	var toggled map[string]any
	require.NoError(t, json.Unmarshal([]byte(toggleOut.Content[0].Text), &toggled))
	require.Equal(t, true, toggled["success"])

	deleteArgs, err := json.Marshal(map[string]any{"id": taskID})
	require.NoError(t, err)
	deleteOut, toolErr := SchedulerDelete{}.Execute(context.Background(), deleteArgs, state)
	require.Nil(t, toolErr)
	var deleted map[string]any
	require.NoError(t, json.Unmarshal([]byte(deleteOut.Content[0].Text), &deleted))
	require.Equal(t, true, deleted["success"])
}

func TestSchedulerRunExecutesTool(t *testing.T) {
	state := schedulerTestState(t)
	createArgs, err := json.Marshal(map[string]any{
		"name": "x", "cron": "* * * * *", "tool": "echo", "args": map[string]any{"text": "hi"},
	})
	require.NoError(t, err)
	out, toolErr := SchedulerCreate{}.Execute(context.Background(), createArgs, state)
	require.Nil(t, toolErr)
	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.Content[0].Text), &created))
	taskID := created["task_id"].(string)

	runArgs, err := json.Marshal(map[string]any{"id": taskID})
	require.NoError(t, err)
	runOut, toolErr := SchedulerRun{}.Execute(context.Background(), runArgs, state)
	require.Nil(t, toolErr)
	require.Contains(t, runOut.Content[0].Text, "hi")
}

func TestSchedulerDeleteMissingReturnsSuccessFalse(t *testing.T) {
	state := schedulerTestState(t)
	args, err := json.Marshal(map[string]any{"id": "does-not-exist"})
	require.NoError(t, err)

	out, toolErr := SchedulerDelete{}.Execute(context.Background(), args, state)
	require.Nil(t, toolErr)
	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.Content[0].Text), &result))
	require.Equal(t, false, result["success"])
}

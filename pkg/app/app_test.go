package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nexuslabs/nexus/internal/config"
)

func TestNewWiresEveryComponent(t *testing.T) {
	cfg := config.Default()
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NotNil(t, a.Logger)
	require.NotNil(t, a.Store)
	require.NotNil(t, a.Vault)
	require.NotNil(t, a.Scheduler)
	require.NotNil(t, a.Registry)
	require.NotNil(t, a.Router)
	require.NotNil(t, a.HTTP)

	tools := a.Registry.List()
	require.NotEmpty(t, tools)

	names := make(map[string]bool, len(tools))
	for _, tool := range tools {
		names[tool.Name] = true
	}
	for _, want := range []string{
		"echo", "scheduler.create", "scheduler.run", "workflow.define",
		"llm.anthropic", "kv.set", "conversation.create",
	} {
		require.True(t, names[want], "expected tool %q to be registered", want)
	}
}

func TestNewWithoutExtrasOmitsAdapters(t *testing.T) {
	cfg := config.Default()
	cfg.ExtrasEnabled = false
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, ok := a.Registry.Get("llm.anthropic")
	require.False(t, ok)
}

func TestSchedulerExecutorRunsThroughRegistry(t *testing.T) {
	cfg := config.Default()
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	args, err := json.Marshal(map[string]any{
		"name": "greet", "cron": "* * * * *", "tool": "echo", "args": map[string]any{"text": "hello"},
	})
	require.NoError(t, err)

	out, toolErr := a.Registry.Execute(context.Background(), "scheduler.create", args, a.State)
	require.Nil(t, toolErr)

	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.Content[0].Text), &created))
	taskID := created["task_id"].(string)

	_, ok := a.Scheduler.GetTask(taskID)
	require.True(t, ok)

	runArgs, err := json.Marshal(map[string]any{"id": taskID})
	require.NoError(t, err)
	runOut, toolErr := a.Registry.Execute(context.Background(), "scheduler.run", runArgs, a.State)
	require.Nil(t, toolErr)
	require.Contains(t, runOut.Content[0].Text, "hello")
}

func TestVaultPathDerivesFromDatabasePath(t *testing.T) {
	require.Equal(t, "", vaultPath(&config.Config{DatabasePath: ""}))
	require.Equal(t, "/tmp/nexus.secrets", vaultPath(&config.Config{DatabasePath: "/tmp/nexus.db"}))
	require.Equal(t, "/tmp/nexus.secrets", vaultPath(&config.Config{DatabasePath: "/tmp/nexus"}))
}

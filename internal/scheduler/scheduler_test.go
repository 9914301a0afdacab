package scheduler

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAddTaskRejectsBadCron(t *testing.T) {
	s := New(zap.NewNop())
	err := s.AddTask(&Task{ID: "t1", Cron: "not a cron"})
	require.Error(t, err)
}

func TestAddGetRemoveTask(t *testing.T) {
	s := New(zap.NewNop())
	task := &Task{ID: "t1", Name: "daily", Cron: "0 0 * * *", Tool: "noop", Enabled: true}

	require.NoError(t, s.AddTask(task))

	got, ok := s.GetTask("t1")
	require.True(t, ok)
	require.Equal(t, "daily", got.Name)

	require.True(t, s.RemoveTask("t1"))
	_, ok = s.GetTask("t1")
	require.False(t, ok)

	require.False(t, s.RemoveTask("t1"))
}

func TestSetEnabled(t *testing.T) {
	s := New(zap.NewNop())
	require.NoError(t, s.AddTask(&Task{ID: "t1", Cron: "* * * * *", Enabled: false}))

	require.True(t, s.SetEnabled("t1", true))
	task, _ := s.GetTask("t1")
	require.True(t, task.Enabled)

	require.False(t, s.SetEnabled("missing", true))
}

func TestListTasks(t *testing.T) {
	s := New(zap.NewNop())
	require.NoError(t, s.AddTask(&Task{ID: "t1", Cron: "* * * * *"}))
	require.NoError(t, s.AddTask(&Task{ID: "t2", Cron: "* * * * *"}))

	require.Len(t, s.ListTasks(), 2)
}

func TestFireDueTasksInvokesExecutor(t *testing.T) {
	s := New(zap.NewNop())
	require.NoError(t, s.AddTask(&Task{ID: "t1", Cron: "* * * * *", Tool: "echo", Enabled: true, Args: json.RawMessage(`{}`)}))

	var calls int32
	s.SetExecutor(func(ctx context.Context, tool string, args json.RawMessage) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "ok", nil
	})

	s.fireDueTasks(context.Background())
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 10*time.Millisecond)

	task, ok := s.GetTask("t1")
	require.True(t, ok)
	require.NotNil(t, task.LastResult)
	require.True(t, task.LastResult.Success)
}

func TestFireDueTasksSkipsDisabled(t *testing.T) {
	s := New(zap.NewNop())
	require.NoError(t, s.AddTask(&Task{ID: "t1", Cron: "* * * * *", Tool: "echo", Enabled: false}))

	var calls int32
	s.SetExecutor(func(ctx context.Context, tool string, args json.RawMessage) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "ok", nil
	})

	s.fireDueTasks(context.Background())
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestStartStop(t *testing.T) {
	s := New(zap.NewNop())
	s.tickInterval = 10 * time.Millisecond

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return s.running.Load() }, time.Second, time.Millisecond)
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

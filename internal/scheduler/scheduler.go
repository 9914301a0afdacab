// Package scheduler runs cron-scheduled tool invocations. It has no
// dependency on the tool registry or runtime state: task execution is
// late-bound through an Executor function supplied by pkg/app during
// wiring, so this package stays free of an import cycle back through
// toolkit/runtime.
package scheduler

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// TaskResult records the outcome of one firing of a scheduled task.
type TaskResult struct {
	Success    bool      `json:"success"`
	Output     string    `json:"output"`
	ExecutedAt time.Time `json:"executed_at"`
	DurationMS int64     `json:"duration_ms"`
}

// Task is a scheduled tool invocation.
type Task struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Cron       string          `json:"cron"`
	Tool       string          `json:"tool"`
	Args       json.RawMessage `json:"args"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  time.Time       `json:"created_at"`
	LastRun    *time.Time      `json:"last_run,omitempty"`
	LastResult *TaskResult     `json:"last_result,omitempty"`
}

// Executor runs a tool by name with the given arguments and returns its
// textual output. Set via SetExecutor before Start is called; firings
// before an executor is set are reported as failures.
type Executor func(ctx context.Context, tool string, args json.RawMessage) (string, error)

// Scheduler holds scheduled tasks and fires them on a one-minute tick.
type Scheduler struct {
	mu       sync.RWMutex
	tasks    map[string]*Task
	running  atomic.Bool
	stopCh   chan struct{}
	logger   *zap.Logger
	executor Executor
	execMu   sync.RWMutex

	// tickInterval defaults to a minute; overridable in tests.
	tickInterval time.Duration
}

// New builds an empty Scheduler.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		tasks:        make(map[string]*Task),
		logger:       logger,
		tickInterval: time.Minute,
	}
}

// SetExecutor installs the callback used to actually run a task's tool.
// Called once during application wiring, after the tool registry exists.
func (s *Scheduler) SetExecutor(exec Executor) {
	s.execMu.Lock()
	s.executor = exec
	s.execMu.Unlock()
}

func (s *Scheduler) getExecutor() Executor {
	s.execMu.RLock()
	defer s.execMu.RUnlock()
	return s.executor
}

// AddTask validates the task's cron expression and registers it.
func (s *Scheduler) AddTask(task *Task) error {
	if err := validateCron(task.Cron); err != nil {
		return err
	}

	s.mu.Lock()
	s.tasks[task.ID] = task
	s.mu.Unlock()

	s.logger.Info("added scheduled task", zap.String("id", task.ID), zap.String("cron", task.Cron))
	return nil
}

// RemoveTask deletes a task, reporting whether it existed.
func (s *Scheduler) RemoveTask(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return false
	}
	delete(s.tasks, id)
	return true
}

// GetTask returns a copy of a task by ID.
func (s *Scheduler) GetTask(id string) (*Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	cp := *t
	return &cp, true
}

// ListTasks returns copies of every registered task.
func (s *Scheduler) ListTasks() []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		cp := *t
		out = append(out, &cp)
	}
	return out
}

// SetEnabled toggles a task's enabled flag, reporting whether it existed.
func (s *Scheduler) SetEnabled(id string, enabled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	t.Enabled = enabled
	return true
}

// Start runs the scheduler loop until Stop is called or ctx is cancelled.
// Each due task fires in its own goroutine so a slow tool never delays
// other tasks or the next tick. Safe to call only once per Scheduler
// lifetime; a second concurrent call is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("scheduler already running")
		return
	}
	defer s.running.Store(false)

	s.stopCh = make(chan struct{})
	s.logger.Info("starting scheduler")

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	s.fireDueTasks(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped (context cancelled)")
			return
		case <-s.stopCh:
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.fireDueTasks(ctx)
		}
	}
}

func (s *Scheduler) fireDueTasks(ctx context.Context) {
	now := time.Now().UTC()

	s.mu.RLock()
	var due []*Task
	for _, t := range s.tasks {
		if t.Enabled && shouldTrigger(t.Cron, now) {
			cp := *t
			due = append(due, &cp)
		}
	}
	s.mu.RUnlock()

	for _, task := range due {
		go s.fire(ctx, task)
	}
}

func (s *Scheduler) fire(ctx context.Context, task *Task) {
	start := time.Now()
	s.logger.Debug("executing scheduled task", zap.String("id", task.ID), zap.String("tool", task.Tool))

	exec := s.getExecutor()
	var result TaskResult
	result.ExecutedAt = start.UTC()

	if exec == nil {
		result.Success = false
		result.Output = "scheduler has no executor configured"
	} else {
		output, err := exec(ctx, task.Tool, task.Args)
		if err != nil {
			result.Success = false
			result.Output = err.Error()
		} else {
			result.Success = true
			result.Output = output
		}
	}
	result.DurationMS = time.Since(start).Milliseconds()

	if result.Success {
		s.logger.Info("scheduled task completed", zap.String("id", task.ID), zap.Int64("duration_ms", result.DurationMS))
	} else {
		s.logger.Error("scheduled task failed", zap.String("id", task.ID), zap.String("error", result.Output))
	}

	s.mu.Lock()
	if t, ok := s.tasks[task.ID]; ok {
		ranAt := result.ExecutedAt
		t.LastRun = &ranAt
		t.LastResult = &result
	}
	s.mu.Unlock()
}

// Stop signals the running scheduler loop to exit.
func (s *Scheduler) Stop() {
	if !s.running.Load() {
		return
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
}

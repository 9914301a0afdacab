// Package app assembles every Nexus component into one runnable server:
// configuration, logging, persistence, the secret vault, the scheduler,
// the tool registry, the router, and both transports. Everything here is
// wiring — the packages it imports hold the actual behavior.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nexuslabs/nexus/internal/config"
	"github.com/nexuslabs/nexus/internal/logging"
	"github.com/nexuslabs/nexus/internal/router"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/scheduler"
	"github.com/nexuslabs/nexus/internal/secrets"
	"github.com/nexuslabs/nexus/internal/store"
	"github.com/nexuslabs/nexus/internal/toolkit"
	"github.com/nexuslabs/nexus/internal/toolkit/adapters"
	"github.com/nexuslabs/nexus/internal/toolkit/builtin"
	"github.com/nexuslabs/nexus/internal/toolkit/plugin"
	"github.com/nexuslabs/nexus/internal/toolkit/workflow"
	"github.com/nexuslabs/nexus/internal/transport/httpt"
	"github.com/nexuslabs/nexus/internal/transport/stream"
)

// App holds every constructed component. Its fields are exported so
// cmd/nexus can drive transports directly without App needing to know
// which one the CLI picked.
type App struct {
	Config    *config.Config
	Logger    *logging.Logger
	Store     store.Store
	Vault     *secrets.Vault
	Scheduler *scheduler.Scheduler
	Registry  *toolkit.Registry
	Router    *router.Router
	State     *runtime.State
	HTTP      *httpt.Server
}

// New builds every component and wires them together, but starts
// nothing long-running: the scheduler's ticker and both transports are
// started explicitly by the caller (cmd/nexus), since which ones run
// depends on the chosen subcommand.
func New(cfg *config.Config) (*App, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	st, err := newStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	vault := secrets.New(vaultPath(cfg), "")

	sched := scheduler.New(logger.Underlying())

	reg := toolkit.NewRegistry(logger.Underlying())
	registerBuiltinTools(reg)
	registerWorkflowTools(reg)
	if cfg.ExtrasEnabled {
		adapters.Register(reg)
	}
	for _, p := range plugin.LoadAll(cfg.Plugins) {
		reg.Register(p)
	}

	state := runtime.New(cfg, logger, reg, st, vault, sched)

	sched.SetExecutor(func(ctx context.Context, tool string, args json.RawMessage) (string, error) {
		out, toolErr := reg.Execute(ctx, tool, args, state)
		if toolErr != nil {
			return "", toolErr
		}
		if out == nil || len(out.Content) == 0 {
			return "", nil
		}
		return out.Content[0].Text, nil
	})

	rt := router.New(logger)
	httpServer := httpt.NewServer(cfg, logger, rt, state)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     st,
		Vault:     vault,
		Scheduler: sched,
		Registry:  reg,
		Router:    rt,
		State:     state,
		HTTP:      httpServer,
	}, nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.LevelFromString(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log_level %q: %w", cfg.LogLevel, err)
	}

	logCfg := logging.NewDefaultConfig()
	logCfg.Level = level
	if !cfg.JSONLogs {
		logCfg.Format = "console"
	}
	return logging.NewLogger(logCfg)
}

func newStore(cfg *config.Config) (store.Store, error) {
	if cfg.DatabasePath == "" {
		return store.NewMemoryStore(), nil
	}
	return store.Open(cfg.DatabasePath)
}

// vaultPath derives the secrets file path from the database path the same
// way the original does: swap the .db suffix for .secrets. An in-memory
// store (DatabasePath empty) gets an in-memory-only vault.
func vaultPath(cfg *config.Config) string {
	if cfg.DatabasePath == "" {
		return ""
	}
	if strings.HasSuffix(cfg.DatabasePath, ".db") {
		return strings.TrimSuffix(cfg.DatabasePath, ".db") + ".secrets"
	}
	return cfg.DatabasePath + ".secrets"
}

func registerBuiltinTools(reg *toolkit.Registry) {
	reg.Register(builtin.Echo{})
	reg.Register(builtin.CmdExec{})
	reg.Register(builtin.EnvGet{})
	reg.Register(builtin.EnvList{})
	reg.Register(builtin.SysInfo{})
	reg.Register(builtin.FsReadFile{})
	reg.Register(builtin.FsWriteFile{})
	reg.Register(builtin.HTTPRequest{})
	reg.Register(builtin.GetTime{})
	reg.Register(builtin.ConversationCreate{})
	reg.Register(builtin.ConversationAdd{})
	reg.Register(builtin.ConversationGet{})
	reg.Register(builtin.ConversationList{})
	reg.Register(builtin.ConversationSearch{})
	reg.Register(builtin.KVSet{})
	reg.Register(builtin.KVGet{})
	reg.Register(builtin.KVDelete{})
	reg.Register(builtin.KVList{})
	reg.Register(builtin.SchedulerCreate{})
	reg.Register(builtin.SchedulerList{})
	reg.Register(builtin.SchedulerDelete{})
	reg.Register(builtin.SchedulerToggle{})
	reg.Register(builtin.SchedulerRun{})

	// Data utilities: always-on, not gated by cfg.ExtrasEnabled, since
	// they're core primitives rather than adapter/integration tools.
	reg.Register(builtin.UUIDGenerate{})
	reg.Register(builtin.Base64Encode{})
	reg.Register(builtin.Base64Decode{})
	reg.Register(builtin.JSONParse{})
	reg.Register(builtin.JSONQuery{})
	reg.Register(builtin.Hash{})
	reg.Register(builtin.RegexMatch{})
	reg.Register(builtin.RegexReplace{})
}

func registerWorkflowTools(reg *toolkit.Registry) {
	reg.Register(workflow.Define{})
	reg.Register(workflow.Execute{})
	reg.Register(workflow.List{})
	reg.Register(workflow.Run{})
}

// ServeStdio runs the given newline-delimited JSON-RPC transport until EOF,
// a read/write failure, or ctx is cancelled.
func (a *App) ServeStdio(ctx context.Context, transport *stream.Stdio) error {
	return transport.Serve(ctx, a.Router, a.State)
}

// ServeHTTP runs the HTTP transport until ctx is cancelled.
func (a *App) ServeHTTP(ctx context.Context) error {
	return a.HTTP.Start(ctx)
}

// StartScheduler runs the scheduler's tick loop until ctx is cancelled.
func (a *App) StartScheduler(ctx context.Context) {
	a.Scheduler.Start(ctx)
}

// WatchSecrets reloads the vault whenever its backing file changes on
// disk, blocking until ctx is cancelled. A no-op when the vault has no
// backing file (in-memory store).
func (a *App) WatchSecrets(ctx context.Context) error {
	return a.Vault.Watch(ctx, a.Logger.Underlying())
}

// Close flushes and releases every component holding a resource.
func (a *App) Close() error {
	a.Scheduler.Stop()
	storeErr := a.Store.Close()
	syncErr := a.Logger.Sync()
	if storeErr != nil {
		return storeErr
	}
	return syncErr
}

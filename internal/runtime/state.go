// Package runtime holds the shared, concurrency-safe state every request
// handler and tool call operates against: configuration, the tool
// registry, the persistence store, the secret vault, and the scheduler.
//
// State itself is immutable after construction; the mutable pieces it
// references (registry, scheduler, vault) guard themselves with their own
// locks so concurrent handlers never need to coordinate through State.
package runtime

import (
	"github.com/nexuslabs/nexus/internal/config"
	"github.com/nexuslabs/nexus/internal/logging"
	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/scheduler"
	"github.com/nexuslabs/nexus/internal/secrets"
	"github.com/nexuslabs/nexus/internal/store"
)

// Registry is the subset of toolkit.Registry that runtime needs to know
// about. Defined here (rather than importing toolkit directly) to break
// an import cycle: toolkit.Tool.Execute takes a *State.
type Registry interface {
	Get(name string) (Tool, bool)
	List() []protocol.Tool
}

// Tool is the minimal shape runtime needs from toolkit.Tool.
type Tool interface {
	Definition() protocol.Tool
}

// State is the dependency-injection hub shared by every transport,
// middleware, and tool. It is constructed once at startup by pkg/app and
// passed down by pointer; nothing in this package mutates it after
// construction, though the fields it points to (Registry, Scheduler,
// Vault, Store) are themselves concurrency-safe and mutable.
type State struct {
	Config     *config.Config
	Logger     *logging.Logger
	Registry   Registry
	Store      store.Store
	Vault      *secrets.Vault
	Scheduler  *scheduler.Scheduler
	ServerInfo protocol.ServerInfo
}

// New builds a State from its constituent parts.
func New(cfg *config.Config, logger *logging.Logger, registry Registry, st store.Store, vault *secrets.Vault, sched *scheduler.Scheduler) *State {
	return &State{
		Config:    cfg,
		Logger:    logger,
		Registry:  registry,
		Store:     st,
		Vault:     vault,
		Scheduler: sched,
		ServerInfo: protocol.ServerInfo{
			Name:    cfg.ServerName,
			Version: cfg.ServerVersion,
		},
	}
}

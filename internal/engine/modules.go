package engine

import (
	"fmt"
	"log"

	"github.com/Pintuzoft/osbase/internal/balance"
	"github.com/Pintuzoft/osbase/internal/config"
	"github.com/Pintuzoft/osbase/internal/rating"
	"github.com/Pintuzoft/osbase/internal/stats"
)

// Context carries the engine's collaborators to modules at load time.
// Modules get everything by explicit reference; there is no global
// instance accessor.
type Context struct {
	Engine   *Engine
	Store    *stats.Store
	Snapshot *stats.Snapshot
	Cache    *rating.Cache
	Host     balance.Host
}

// Module is one pluggable feature. Modules are registered as a fixed
// ordered list built at startup and loaded in order; there is no runtime
// discovery.
type Module interface {
	Name() string
	Load(ctx *Context, cfg *config.Config) error
}

// LoadModules loads the given modules in order. A module failure aborts the
// load; modules already loaded stay loaded.
func (e *Engine) LoadModules(cfg *config.Config, modules []Module) error {
	ctx := &Context{
		Engine:   e,
		Store:    e.store,
		Snapshot: e.snap,
		Cache:    e.cache,
		Host:     e.host,
	}
	for _, m := range modules {
		if err := m.Load(ctx, cfg); err != nil {
			return fmt.Errorf("loading module %s: %w", m.Name(), err)
		}
		log.Printf("Loaded module %s", m.Name())
	}
	return nil
}

package modules

import (
	"github.com/Pintuzoft/osbase/internal/balance"
	"github.com/Pintuzoft/osbase/internal/config"
	"github.com/Pintuzoft/osbase/internal/engine"
)

// Balancer wires the balancing policy and the per-map bombsite table into
// the engine.
type Balancer struct{}

func (*Balancer) Name() string { return "teambalancer" }

func (*Balancer) Load(ctx *engine.Context, cfg *config.Config) error {
	sites := balance.NewSiteTable(cfg.Balancer.BombsitesPath)
	ctx.Engine.SetPolicy(balance.NewPolicy(ctx.Host, ctx.Cache, sites, cfg.Balancer))
	return nil
}

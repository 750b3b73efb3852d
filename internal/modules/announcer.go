package modules

import (
	"fmt"

	"github.com/Pintuzoft/osbase/internal/config"
	"github.com/Pintuzoft/osbase/internal/domain"
	"github.com/Pintuzoft/osbase/internal/engine"
)

// announceStreak is the streak length at which the chat callout starts.
const announceStreak = 2

// Announcer calls out building win streaks in server chat so players see
// why a rebalance is coming.
type Announcer struct{}

func (*Announcer) Name() string { return "announcer" }

func (*Announcer) Load(ctx *engine.Context, cfg *config.Config) error {
	host := ctx.Host
	ctx.Engine.AddObserver(func(ev domain.GameEvent) {
		data, ok := ev.Data.(domain.TeamStatusData)
		if !ok || ev.Type != domain.EventTeamStatus {
			return
		}
		if data.Streak >= announceStreak {
			host.Broadcast(fmt.Sprintf("%s have won %d rounds in a row", data.Side, data.Streak))
		}
	})
	return nil
}

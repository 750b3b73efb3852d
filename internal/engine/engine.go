// Package engine runs the single-threaded event loop that consumes game
// server notifications, maintains combat stats and team snapshots, and
// drives the balancing policy across the round/map lifecycle.
package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Pintuzoft/osbase/internal/balance"
	"github.com/Pintuzoft/osbase/internal/config"
	"github.com/Pintuzoft/osbase/internal/domain"
	"github.com/Pintuzoft/osbase/internal/rating"
	"github.com/Pintuzoft/osbase/internal/stats"
	"github.com/google/uuid"
)

// RatingLog is the slice of storage the engine writes at map end.
type RatingLog interface {
	AppendRating(ctx context.Context, row domain.RatingRow) error
}

// Observer receives engine-emitted events (round results, moves, status).
type Observer func(domain.GameEvent)

// Engine owns all mutable match state. One goroutine (Run) processes events
// to completion one at a time; there is no concurrent mutation. The only
// asynchronous work is the background rating refresh, which never blocks
// the loop.
type Engine struct {
	cfg     *config.Config
	store   *stats.Store
	snap    *stats.Snapshot
	cache   *rating.Cache
	ratings RatingLog
	host    balance.Host
	policy  *balance.Policy

	events chan domain.GameEvent
	timers chan func()
	done   chan struct{}

	observers []Observer

	// Latest per-side summary, the only engine state other goroutines may
	// read. Everything else belongs to the loop goroutine.
	statusMu sync.RWMutex
	status   []domain.TeamStatusData

	mapName   string
	matchUUID string
	warmup    bool
	rounds    int
	roster    []domain.RosterEntry
	pending   map[int]*pendingMove
}

// New creates an engine. cache and ratings may be nil in tests; host must
// not be.
func New(cfg *config.Config, store *stats.Store, cache *rating.Cache, ratings RatingLog, host balance.Host) *Engine {
	return &Engine{
		cfg:     cfg,
		store:   store,
		snap:    stats.NewSnapshot(store),
		cache:   cache,
		ratings: ratings,
		host:    host,
		events:  make(chan domain.GameEvent, 256),
		timers:  make(chan func(), 64),
		done:    make(chan struct{}),
		warmup:  true,
		pending: make(map[int]*pendingMove),
	}
}

// Snapshot returns the engine's team snapshot. Callers outside the loop
// must treat it as read-mostly display data.
func (e *Engine) Snapshot() *stats.Snapshot { return e.snap }

// Store returns the player stats store.
func (e *Engine) Store() *stats.Store { return e.store }

// Cache returns the rating cache, which may be nil.
func (e *Engine) Cache() *rating.Cache { return e.cache }

// Host returns the game server command interface.
func (e *Engine) Host() balance.Host { return e.host }

// SetPolicy installs the balancing policy. Called by the balancer module at
// load time.
func (e *Engine) SetPolicy(p *balance.Policy) { e.policy = p }

// AddObserver registers a callback for engine-emitted events. Observers run
// on the loop goroutine and must not block.
func (e *Engine) AddObserver(fn Observer) {
	e.observers = append(e.observers, fn)
}

// Submit queues a game event for the loop. Drops with a warning when the
// loop has fallen behind rather than blocking the transport.
func (e *Engine) Submit(ev domain.GameEvent) {
	select {
	case e.events <- ev:
	default:
		log.Printf("Warning: event queue full, dropping %s", ev.Type)
	}
}

// Schedule runs fn on the loop goroutine after d. The returned timer can be
// stopped to cancel; a fire after shutdown is discarded.
func (e *Engine) Schedule(d time.Duration, fn func()) *time.Timer {
	return time.AfterFunc(d, func() {
		select {
		case e.timers <- fn:
		case <-e.done:
		}
	})
}

// Run processes events until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-e.timers:
			fn()
		case ev := <-e.events:
			e.handleEvent(ctx, ev)
		}
	}
}

// handleEvent is the round/map lifecycle state machine. All mutation happens
// here, on the loop goroutine.
func (e *Engine) handleEvent(ctx context.Context, ev domain.GameEvent) {
	switch ev.Type {
	case domain.EventMapStart:
		data, ok := ev.Data.(domain.MapStartData)
		if !ok {
			return
		}
		e.mapName = data.MapName
		e.matchUUID = uuid.NewString()
		e.warmup = true
		e.rounds = 0
		e.roster = nil
		e.cancelAllMoves()
		e.store.Clear()
		e.snap.ResetTeams()
		e.publishTeamStatus()
		if e.cache != nil {
			e.cache.RefreshBackground(ctx)
		}
		e.emit(ev.Type, data)

	case domain.EventRoster:
		data, ok := ev.Data.(domain.RosterData)
		if !ok {
			return
		}
		e.roster = data.Players
		e.checkPendingMoves()

	case domain.EventWarmupEnd:
		// Side membership must be correct before any balancing runs, and
		// warmup activity must never pollute match scoring.
		e.snap.Rebuild(e.roster, true)
		e.store.ResetWarmupCounters()
		e.warmup = false
		e.runBalancer()
		e.publishTeamStatus()
		e.emit(ev.Type, nil)

	case domain.EventRoundStart:
		if !e.warmup {
			e.rounds++
		}

	case domain.EventRoundEnd:
		if e.warmup {
			return
		}
		data, _ := ev.Data.(domain.RoundEndData)
		e.handleRoundEnd(data.Winner)

	case domain.EventHalftime:
		// Streak and win/loss history follows the team, not the in-game slot.
		e.snap.SwapSides()
		e.publishTeamStatus()
		e.emit(ev.Type, nil)

	case domain.EventMapEnd:
		e.handleMapEnd(ctx)
		e.publishTeamStatus()
		e.emit(ev.Type, nil)

	case domain.EventPlayerHurt:
		data, ok := ev.Data.(domain.PlayerHurtData)
		if !ok {
			return
		}
		if data.Attacker >= 0 && data.Attacker != data.Victim {
			e.store.RecordDamage(data.Attacker, data.Victim, data.Damage, data.Hitgroup == domain.HitgroupHead)
		}

	case domain.EventPlayerDeath:
		data, ok := ev.Data.(domain.PlayerDeathData)
		if !ok {
			return
		}
		attacker := data.Attacker
		if attacker < 0 {
			attacker = data.Victim // world death counts only the death
		}
		e.store.RecordDeath(attacker, data.Victim, data.Assister, data.Headshot)

	case domain.EventWeaponFire:
		data, ok := ev.Data.(domain.WeaponFireData)
		if !ok {
			return
		}
		e.store.RecordShot(data.Shooter)

	case domain.EventDisconnect:
		data, ok := ev.Data.(domain.DisconnectData)
		if !ok {
			return
		}
		if p, found := e.store.Get(data.Handle); found {
			p.Disconnected = true
		}
		e.cancelMove(data.Handle)
	}
}

// handleRoundEnd applies win/loss/streak updates, advances per-player round
// counters for the competing sides, and runs the balancer.
func (e *Engine) handleRoundEnd(winner domain.Side) {
	// Players who joined or left mid-round must be reflected first.
	e.snap.Rebuild(e.roster, false)

	switch {
	case winner.Competing():
		winTeam := e.snap.Team(winner)
		loseTeam := e.snap.Team(winner.Opposite())
		winTeam.RecordWin()
		loseTeam.RecordLoss()
		for _, p := range winTeam.Members() {
			p.RoundWins++
		}
		for _, p := range loseTeam.Members() {
			p.RoundLosses++
		}
	default:
		// Tie or aborted round: nobody snowballs off it.
		e.snap.Team(domain.SideT).ResetStreak()
		e.snap.Team(domain.SideCT).ResetStreak()
	}

	var handles []int
	for _, side := range []domain.Side{domain.SideT, domain.SideCT} {
		for _, p := range e.snap.Members(side) {
			handles = append(handles, p.Handle)
		}
	}
	e.store.IncRounds(handles)

	for _, p := range e.store.All() {
		if p.Immunity > 0 {
			p.Immunity--
		}
	}

	e.emit(domain.EventRoundEnd, domain.RoundEndData{Winner: winner})
	e.emitTeamStatus()
	e.runBalancer()
}

// handleMapEnd persists rating rows and clears all in-memory state. Maps
// with fewer than the minimum population are discarded without persistence.
func (e *Engine) handleMapEnd(ctx context.Context) {
	defer func() {
		e.store.Clear()
		e.snap.ResetTeams()
		e.snap.Rebuild(nil, false)
		e.roster = nil
		e.cancelAllMoves()
		e.warmup = true
	}()

	if e.ratings == nil {
		return
	}
	if e.store.Len() < e.cfg.Balancer.MinPopulation {
		log.Printf("Map %s ended with %d players, below population threshold; discarding stats", e.mapName, e.store.Len())
		return
	}

	now := time.Now().UTC()
	for _, p := range e.store.All() {
		if p.Rounds < e.cfg.Balancer.MinRoundsToLog || p.SteamID == "" {
			continue
		}
		row := domain.RatingRow{
			SteamID:    p.SteamID,
			Name:       p.Name,
			Skill:      stats.CalcSkill(p),
			MapName:    e.mapName,
			MatchUUID:  e.matchUUID,
			RecordedAt: now,
		}
		if err := e.ratings.AppendRating(ctx, row); err != nil {
			log.Printf("Error persisting rating for %s: %v", p.SteamID, err)
		}
	}
}

// runBalancer evaluates the policy and tracks any resulting moves.
func (e *Engine) runBalancer() {
	if e.policy == nil {
		return
	}
	moves := e.policy.Evaluate(e.snap, e.mapName)
	for _, mv := range moves {
		e.trackMove(mv)
		e.emit(domain.EventPlayerMoved, domain.PlayerMovedData{
			Handle: mv.Player.Handle,
			Name:   mv.Player.Name,
			From:   mv.From.String(),
			To:     mv.To.String(),
			Reason: mv.Reason,
		})
	}
	if len(moves) > 0 {
		e.emit(domain.EventRebalanced, nil)
	}
}

// publishTeamStatus recomputes the per-side summary and stores it for
// concurrent readers. Runs on the loop goroutine after every state change a
// reader could care about.
func (e *Engine) publishTeamStatus() []domain.TeamStatusData {
	status := make([]domain.TeamStatusData, 0, 2)
	for _, side := range []domain.Side{domain.SideT, domain.SideCT} {
		team := e.snap.Team(side)
		avg := team.AverageSkill()
		if e.cache != nil {
			avg = e.cache.TeamAverage(e.snap, side)
		}
		status = append(status, domain.TeamStatusData{
			Side:     side.String(),
			Players:  team.NumPlayers(),
			AvgSkill: avg,
			Wins:     team.Wins,
			Losses:   team.Losses,
			Streak:   team.Streak,
		})
	}

	e.statusMu.Lock()
	e.status = status
	e.statusMu.Unlock()
	return status
}

// emitTeamStatus publishes the per-side summary and hands it to observers.
func (e *Engine) emitTeamStatus() {
	for _, st := range e.publishTeamStatus() {
		e.emit(domain.EventTeamStatus, st)
	}
}

// TeamStatus returns a copy of the latest per-side summary. Unlike Snapshot
// and Store it is safe to call from any goroutine; the HTTP teams endpoint
// reads through here instead of touching loop-owned state.
func (e *Engine) TeamStatus() []domain.TeamStatusData {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	out := make([]domain.TeamStatusData, len(e.status))
	copy(out, e.status)
	return out
}

func (e *Engine) emit(eventType string, data interface{}) {
	ev := domain.GameEvent{Type: eventType, Timestamp: time.Now().UTC(), Data: data}
	for _, fn := range e.observers {
		fn(ev)
	}
}

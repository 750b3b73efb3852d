package domain

import "time"

// Event types delivered by the game server
const (
	EventPlayerHurt  = "player_hurt"
	EventPlayerDeath = "player_death"
	EventWeaponFire  = "weapon_fire"
	EventRoundStart  = "round_start"
	EventRoundEnd    = "round_end"
	EventWarmupEnd   = "warmup_end"
	EventHalftime    = "halftime"
	EventMapStart    = "map_start"
	EventMapEnd      = "map_end"
	EventRoster      = "roster"
	EventDisconnect  = "player_disconnect"
)

// Event types emitted by the engine for observers
const (
	EventPlayerMoved = "player_moved"
	EventRebalanced  = "teams_rebalanced"
	EventTeamStatus  = "team_status"
)

// GameEvent is a single notification from the game server. Data holds the
// event-specific payload struct for Type.
type GameEvent struct {
	Type      string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// PlayerHurtData reports damage dealt by one player to another.
type PlayerHurtData struct {
	Attacker int    `json:"attacker"`
	Victim   int    `json:"victim"`
	Damage   int    `json:"damage"`
	Hitgroup int    `json:"hitgroup"` // 1 = head
	Weapon   string `json:"weapon,omitempty"`
}

// HitgroupHead is the hitgroup value the engine reports for head hits.
const HitgroupHead = 1

// PlayerDeathData reports a kill. Assister is -1 when no assist was credited.
type PlayerDeathData struct {
	Attacker int  `json:"attacker"`
	Victim   int  `json:"victim"`
	Assister int  `json:"assister"`
	Headshot bool `json:"headshot"`
}

// WeaponFireData reports a shot fired.
type WeaponFireData struct {
	Shooter int    `json:"shooter"`
	Weapon  string `json:"weapon,omitempty"`
}

// RoundEndData reports the declared round winner. SideNone means a tie or
// an aborted round with no winner.
type RoundEndData struct {
	Winner Side `json:"winner"`
}

// MapStartData reports a map change.
type MapStartData struct {
	MapName string `json:"map_name"`
}

// RosterData carries the authoritative list of connected participants. It is
// attached to lifecycle events so team membership can be rebuilt rather than
// patched incrementally.
type RosterData struct {
	Players []RosterEntry `json:"players"`
}

// DisconnectData reports a player leaving the server.
type DisconnectData struct {
	Handle int `json:"handle"`
}

// PlayerMovedData describes a balancer-issued move for observers.
type PlayerMovedData struct {
	Handle int    `json:"handle"`
	Name   string `json:"name"`
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// TeamStatusData is the per-side summary broadcast after each round.
type TeamStatusData struct {
	Side     string  `json:"side"`
	Players  int     `json:"players"`
	AvgSkill float64 `json:"avg_skill"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Streak   int     `json:"streak"`
}

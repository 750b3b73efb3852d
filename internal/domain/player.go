package domain

import "fmt"

// Side identifies one of the two competing rosters, the spectator pool, or
// an unassigned slot. Values follow the game engine's team numbering.
type Side int

const (
	SideNone      Side = 0
	SideSpectator Side = 1
	SideT         Side = 2
	SideCT        Side = 3
)

// String returns the human-readable side name used in broadcasts.
func (s Side) String() string {
	switch s {
	case SideT:
		return "T"
	case SideCT:
		return "CT"
	case SideSpectator:
		return "Spectator"
	default:
		return "None"
	}
}

// Opposite returns the other competing side. Non-competing sides map to SideNone.
func (s Side) Opposite() Side {
	switch s {
	case SideT:
		return SideCT
	case SideCT:
		return SideT
	default:
		return SideNone
	}
}

// Competing reports whether the side is one of the two playing rosters.
func (s Side) Competing() bool {
	return s == SideT || s == SideCT
}

// RosterEntry is one participant in the authoritative roster the game server
// reports. Handle is the transient per-connection slot, valid only for the
// current map; SteamID is the stable cross-session identity. Handles are
// reused after disconnects, so Handle alone never identifies a person.
type RosterEntry struct {
	Handle  int    `json:"handle"`
	SteamID string `json:"steam_id"`
	Name    string `json:"name"`
	Side    Side   `json:"side"`
}

func (r RosterEntry) String() string {
	return fmt.Sprintf("%s (#%d, %s)", r.Name, r.Handle, r.Side)
}

package stats

import (
	"math"

	"github.com/Pintuzoft/osbase/internal/domain"
)

// StreakBonus is added per consecutive round won when computing a team's
// average skill, so a team on a hot streak is treated as stronger than its
// raw average.
const StreakBonus = 250.0

// deviationClamp replaces a non-finite target deviation before comparison.
const deviationClamp = 1e9

// TeamStats aggregates one side's members for the current map. Wins, losses
// and the streak accumulate across rounds and survive the halftime swap; the
// member list is rebuilt from the live roster on every snapshot rebuild.
type TeamStats struct {
	Wins   int
	Losses int
	Streak int

	members []*PlayerStats
}

// Members returns the current member list in roster order.
func (t *TeamStats) Members() []*PlayerStats {
	return t.members
}

// NumPlayers returns the current member count.
func (t *TeamStats) NumPlayers() int {
	return len(t.members)
}

// AverageSkill returns the mean member skill plus the streak bonus.
// An empty side has no meaningful average and reports 0.
func (t *TeamStats) AverageSkill() float64 {
	if len(t.members) == 0 {
		return 0
	}
	var sum float64
	for _, p := range t.members {
		sum += CalcSkill(p)
	}
	return sum/float64(len(t.members)) + StreakBonus*float64(t.Streak)
}

// RecordWin counts a round win and extends the streak.
func (t *TeamStats) RecordWin() {
	t.Wins++
	t.Streak++
}

// RecordLoss counts a round loss and breaks the streak.
func (t *TeamStats) RecordLoss() {
	t.Losses++
	t.Streak = 0
}

// ResetStreak clears the streak without touching win/loss totals.
func (t *TeamStats) ResetStreak() {
	t.Streak = 0
}

func (t *TeamStats) clearMembers() {
	t.members = t.members[:0]
}

func (t *TeamStats) add(p *PlayerStats) {
	t.members = append(t.members, p)
}

// Snapshot is the per-side roster view over a Store. Side membership is
// always rebuilt in full from the authoritative roster, never patched, so
// out-of-band team switches cannot leave a player in two buckets.
type Snapshot struct {
	store *Store
	sides map[domain.Side]*TeamStats
}

// NewSnapshot creates a snapshot with empty side buckets over store.
func NewSnapshot(store *Store) *Snapshot {
	return &Snapshot{
		store: store,
		sides: map[domain.Side]*TeamStats{
			domain.SideT:         {},
			domain.SideCT:        {},
			domain.SideSpectator: {},
		},
	}
}

// Team returns the TeamStats currently backing a side.
func (s *Snapshot) Team(side domain.Side) *TeamStats {
	return s.sides[side]
}

// SwapSides exchanges which TeamStats backs which in-game side. Used at
// halftime so streak and win/loss history follows the team, not the slot.
func (s *Snapshot) SwapSides() {
	s.sides[domain.SideT], s.sides[domain.SideCT] = s.sides[domain.SideCT], s.sides[domain.SideT]
}

// ResetTeams replaces all TeamStats with fresh ones (new map).
func (s *Snapshot) ResetTeams() {
	s.sides[domain.SideT] = &TeamStats{}
	s.sides[domain.SideCT] = &TeamStats{}
	s.sides[domain.SideSpectator] = &TeamStats{}
}

// Rebuild clears and repopulates the side buckets from the live roster.
//
// A recorded stable identity that disagrees with the roster's identity for
// the same handle means the handle was reused after a disconnect; the stale
// record is discarded and a fresh one created. When rebuildIdentities is
// false, records for handles no longer in the roster are pruned; when true,
// roster identities overwrite whatever was recorded.
func (s *Snapshot) Rebuild(roster []domain.RosterEntry, rebuildIdentities bool) {
	for _, t := range s.sides {
		t.clearMembers()
	}

	seen := make(map[int]bool, len(roster))
	for _, e := range roster {
		seen[e.Handle] = true

		p, ok := s.store.Get(e.Handle)
		if ok && e.SteamID != "" && p.SteamID != "" && p.SteamID != e.SteamID {
			// Handle reuse: this record belongs to a player who left.
			s.store.Remove(e.Handle)
			ok = false
		}
		if !ok {
			p = s.store.GetOrCreate(e.Handle)
		}
		if rebuildIdentities || p.SteamID == "" {
			p.SteamID = e.SteamID
		}
		p.Name = e.Name
		p.Disconnected = false

		if t, exists := s.sides[e.Side]; exists {
			t.add(p)
		}
	}

	if !rebuildIdentities {
		for _, p := range s.store.All() {
			if !seen[p.Handle] {
				s.store.Remove(p.Handle)
			}
		}
	}
}

// AverageSkill returns the streak-adjusted average skill for a side.
func (s *Snapshot) AverageSkill(side domain.Side) float64 {
	return s.sides[side].AverageSkill()
}

// NumPlayers returns the member count for a side.
func (s *Snapshot) NumPlayers(side domain.Side) int {
	return s.sides[side].NumPlayers()
}

// Members returns a side's members in roster order.
func (s *Snapshot) Members(side domain.Side) []*PlayerStats {
	return s.sides[side].Members()
}

// MoveMember rebuckets a player after a forced move so snapshot sizes stay
// consistent until the next authoritative rebuild.
func (s *Snapshot) MoveMember(p *PlayerStats, from, to domain.Side) {
	src := s.sides[from]
	for i, m := range src.members {
		if m == p {
			src.members = append(src.members[:i], src.members[i+1:]...)
			break
		}
	}
	s.sides[to].add(p)
}

// PlayerMatchingSkill returns the member of a side whose skill score is
// closest to target, breaking ties by first-encountered order. Immune
// members are skipped when excludeImmune is set.
func (s *Snapshot) PlayerMatchingSkill(side domain.Side, target float64, excludeImmune bool) (*PlayerStats, bool) {
	var best *PlayerStats
	bestDiff := math.Inf(1)
	for _, p := range s.sides[side].members {
		if excludeImmune && p.Immunity > 0 {
			continue
		}
		diff := math.Abs(CalcSkill(p) - target)
		if diff < bestDiff {
			best = p
			bestDiff = diff
		}
	}
	return best, best != nil
}

// PlayerByDeviation returns the member whose signed deviation from the
// side's raw average is closest to targetDev. The side's single highest
// skill member (the presumed carry) and any immune member are excluded.
// For the strong side a positive deviation means below average (a candidate
// to give away); for the weak side the sign flips. A non-finite targetDev is
// clamped to a large finite fallback before comparison.
func (s *Snapshot) PlayerByDeviation(side domain.Side, targetDev float64, forStrongSide bool) (*PlayerStats, bool) {
	members := s.sides[side].members
	if len(members) == 0 {
		return nil, false
	}

	if math.IsNaN(targetDev) || math.IsInf(targetDev, 0) {
		targetDev = deviationClamp
	}

	var sum float64
	var top *PlayerStats
	topSkill := math.Inf(-1)
	for _, p := range members {
		sk := CalcSkill(p)
		sum += sk
		if sk > topSkill {
			top = p
			topSkill = sk
		}
	}
	avg := sum / float64(len(members))

	var best *PlayerStats
	bestDiff := math.Inf(1)
	for _, p := range members {
		if p == top || p.Immunity > 0 {
			continue
		}
		dev := CalcSkill(p) - avg
		if forStrongSide {
			dev = -dev
		}
		diff := math.Abs(dev - targetDev)
		if diff < bestDiff {
			best = p
			bestDiff = diff
		}
	}
	return best, best != nil
}

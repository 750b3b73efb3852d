// Package balance decides whom to move between sides and when: it corrects
// size imbalance first, then breaks sustained win-streak skill imbalance
// with a single targeted swap.
package balance

import (
	"fmt"
	"log"
	"sort"

	"github.com/Pintuzoft/osbase/internal/config"
	"github.com/Pintuzoft/osbase/internal/domain"
	"github.com/Pintuzoft/osbase/internal/rating"
	"github.com/Pintuzoft/osbase/internal/stats"
)

// Host is the slice of the game server the policy needs: moving a player to
// a side and announcing it. Moves take effect immediately.
type Host interface {
	MovePlayer(handle int, side domain.Side)
	Broadcast(text string)
}

// Move records one executed player move for observers and verification.
type Move struct {
	Player *stats.PlayerStats
	From   domain.Side
	To     domain.Side
	Reason string
}

// Move reasons
const (
	ReasonCount = "count_imbalance"
	ReasonSwap  = "sustained_advantage"
)

// Policy evaluates the balancing rules against a team snapshot.
type Policy struct {
	host  Host
	cache *rating.Cache
	sites *SiteTable
	cfg   config.BalancerConfig
}

// NewPolicy creates a policy. cache may be nil; it is only consulted for
// reporting long-window team averages.
func NewPolicy(host Host, cache *rating.Cache, sites *SiteTable, cfg config.BalancerConfig) *Policy {
	return &Policy{host: host, cache: cache, sites: sites, cfg: cfg}
}

// Evaluate runs the balancing algorithm: count-imbalance correction takes
// precedence; skill balancing only runs when sizes already match the ideal.
// Returns the moves executed, if any.
func (p *Policy) Evaluate(snap *stats.Snapshot, mapName string) []Move {
	if !p.cfg.IsEnabled() {
		return nil
	}

	numT := snap.NumPlayers(domain.SideT)
	numCT := snap.NumPlayers(domain.SideCT)
	total := numT + numCT
	if total == 0 {
		return nil
	}

	idealT, idealCT := p.idealSizes(total, mapName)
	if numT != idealT || numCT != idealCT {
		return p.correctCount(snap, numT, numCT, idealT, idealCT)
	}

	return p.correctAdvantage(snap, total)
}

// idealSizes splits total between the two sides. The side with more
// bombsites absorbs the extra player when the total is odd; the exact
// tie-break is policy, overridable via config.
func (p *Policy) idealSizes(total int, mapName string) (idealT, idealCT int) {
	idealT = total / 2
	idealCT = total / 2
	if total%2 == 0 {
		return idealT, idealCT
	}

	if p.extraSide(mapName) == domain.SideT {
		idealT++
	} else {
		idealCT++
	}
	return idealT, idealCT
}

func (p *Policy) extraSide(mapName string) domain.Side {
	switch p.cfg.ExtraPlayerSide {
	case "T":
		return domain.SideT
	case "CT":
		return domain.SideCT
	}
	// More sites to cover means the defending side gets the extra body;
	// single-site and hostage maps lean the attackers instead.
	if p.sites != nil && p.sites.Sites(mapName) >= 2 {
		return domain.SideCT
	}
	return domain.SideT
}

// correctCount moves the weakest members off the oversized side until sizes
// match the ideal. A forced roster change voids streak-driven state, so both
// streaks are reset.
func (p *Policy) correctCount(snap *stats.Snapshot, numT, numCT, idealT, idealCT int) []Move {
	from, to := domain.SideT, domain.SideCT
	excess := numT - idealT
	if numCT > idealCT {
		from, to = domain.SideCT, domain.SideT
		excess = numCT - idealCT
	}
	if excess <= 0 {
		return nil
	}

	candidates := sortedBySkill(snap.Members(from), true)
	picked := pickForMove(candidates, excess)
	if len(picked) < excess {
		// Not enough movable members; skip the whole correction rather
		// than leave the teams half-adjusted.
		log.Printf("Balancer: %s has %d movable players, need %d; skipping count correction", from, len(picked), excess)
		return nil
	}

	moves := make([]Move, 0, excess)
	for _, pl := range picked {
		p.host.MovePlayer(pl.Handle, to)
		pl.Immunity = p.cfg.ImmunityRounds
		snap.MoveMember(pl, from, to)
		p.host.Broadcast(fmt.Sprintf("Balancer: moving %s to %s to even the teams", pl.Name, to))
		moves = append(moves, Move{Player: pl, From: from, To: to, Reason: ReasonCount})
	}

	snap.Team(domain.SideT).ResetStreak()
	snap.Team(domain.SideCT).ResetStreak()
	return moves
}

// correctAdvantage swaps the strong side's second-best player with the weak
// side's worst once a win streak is sustained. The top performer is never
// moved.
func (p *Policy) correctAdvantage(snap *stats.Snapshot, total int) []Move {
	if total < p.cfg.MinPlayers {
		return nil
	}

	tTeam := snap.Team(domain.SideT)
	ctTeam := snap.Team(domain.SideCT)

	var strong domain.Side
	switch {
	case tTeam.Streak >= p.cfg.MinStreak && tTeam.Streak >= ctTeam.Streak:
		strong = domain.SideT
	case ctTeam.Streak >= p.cfg.MinStreak:
		strong = domain.SideCT
	default:
		return nil
	}
	weak := strong.Opposite()

	strongMembers := sortedBySkill(snap.Members(strong), false)
	weakMembers := sortedBySkill(snap.Members(weak), true)
	if len(strongMembers) < 2 || len(weakMembers) < 1 {
		return nil
	}

	give := strongMembers[1] // second-best, never the carry
	take := weakMembers[0]   // weakest

	p.host.MovePlayer(give.Handle, weak)
	p.host.MovePlayer(take.Handle, strong)
	give.Immunity = p.cfg.ImmunityRounds
	take.Immunity = p.cfg.ImmunityRounds
	snap.MoveMember(give, strong, weak)
	snap.MoveMember(take, weak, strong)

	snap.Team(domain.SideT).ResetStreak()
	snap.Team(domain.SideCT).ResetStreak()

	p.host.Broadcast(fmt.Sprintf("Balancer: swapping %s to %s and %s to %s to break the streak",
		give.Name, weak, take.Name, strong))

	return []Move{
		{Player: give, From: strong, To: weak, Reason: ReasonSwap},
		{Player: take, From: weak, To: strong, Reason: ReasonSwap},
	}
}

// sortedBySkill returns a copy of members ordered by current-session skill.
// The sort is stable so equal skills keep roster order.
func sortedBySkill(members []*stats.PlayerStats, ascending bool) []*stats.PlayerStats {
	out := make([]*stats.PlayerStats, len(members))
	copy(out, members)
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return stats.CalcSkill(out[i]) < stats.CalcSkill(out[j])
		}
		return stats.CalcSkill(out[i]) > stats.CalcSkill(out[j])
	})
	return out
}

// pickForMove selects up to n members, preferring those without move
// immunity; immune members are only drafted when nobody else is left.
func pickForMove(sorted []*stats.PlayerStats, n int) []*stats.PlayerStats {
	picked := make([]*stats.PlayerStats, 0, n)
	for _, p := range sorted {
		if p.Immunity == 0 {
			picked = append(picked, p)
			if len(picked) == n {
				return picked
			}
		}
	}
	for _, p := range sorted {
		if p.Immunity > 0 {
			picked = append(picked, p)
			if len(picked) == n {
				return picked
			}
		}
	}
	return picked
}

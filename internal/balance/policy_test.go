package balance

import (
	"testing"

	"github.com/Pintuzoft/osbase/internal/config"
	"github.com/Pintuzoft/osbase/internal/domain"
	"github.com/Pintuzoft/osbase/internal/stats"
)

type issuedMove struct {
	handle int
	side   domain.Side
}

// fakeHost records commands instead of sending them anywhere.
type fakeHost struct {
	moves      []issuedMove
	broadcasts []string
}

func (h *fakeHost) MovePlayer(handle int, side domain.Side) {
	h.moves = append(h.moves, issuedMove{handle, side})
}

func (h *fakeHost) Broadcast(text string) {
	h.broadcasts = append(h.broadcasts, text)
}

func testCfg() config.BalancerConfig {
	// Enabled is left unset: nil means on.
	return config.BalancerConfig{
		MinStreak:      3,
		MinPlayers:     4,
		ImmunityRounds: 2,
	}
}

// buildTeams creates a store and snapshot with the given handle -> skill
// shape per side. Handles are assigned in slice order.
func buildTeams(t *testing.T, tSkills, ctSkills map[int]float64) (*stats.Store, *stats.Snapshot) {
	t.Helper()
	store := stats.NewStore()
	snap := stats.NewSnapshot(store)

	var roster []domain.RosterEntry
	add := func(skills map[int]float64, side domain.Side) {
		for handle, skill := range skills {
			p := store.GetOrCreate(handle)
			p.Rounds = 1
			p.Damage = int((skill - 5000) / 10)
			roster = append(roster, domain.RosterEntry{
				Handle: handle, SteamID: "S" + string(rune('A'+handle)), Name: "p", Side: side,
			})
		}
	}
	add(tSkills, domain.SideT)
	add(ctSkills, domain.SideCT)

	snap.Rebuild(roster, true)
	return store, snap
}

func TestCountImbalanceMovesWeakest(t *testing.T) {
	// 7v3 with an even total of 10: ideal is 5v5, so exactly the two
	// lowest-skill T players must move.
	_, snap := buildTeams(t,
		map[int]float64{1: 6000, 2: 6500, 3: 9000, 4: 10000, 5: 11000, 6: 12000, 7: 13000},
		map[int]float64{8: 9000, 9: 9500, 10: 10000},
	)
	snap.Team(domain.SideT).RecordWin()
	snap.Team(domain.SideT).RecordWin()

	host := &fakeHost{}
	p := NewPolicy(host, nil, nil, testCfg())

	moves := p.Evaluate(snap, "de_dust2")

	if len(moves) != 2 {
		t.Fatalf("got %d moves, want 2", len(moves))
	}
	moved := map[int]bool{}
	for _, mv := range moves {
		if mv.Reason != ReasonCount {
			t.Errorf("move reason = %s, want %s", mv.Reason, ReasonCount)
		}
		if mv.To != domain.SideCT {
			t.Errorf("move target = %s, want CT", mv.To)
		}
		moved[mv.Player.Handle] = true
	}
	if !moved[1] || !moved[2] {
		t.Errorf("moved %v, want the two weakest (handles 1 and 2)", moved)
	}

	if snap.NumPlayers(domain.SideT) != 5 || snap.NumPlayers(domain.SideCT) != 5 {
		t.Errorf("post-move sizes %d/%d, want 5/5", snap.NumPlayers(domain.SideT), snap.NumPlayers(domain.SideCT))
	}
	if snap.Team(domain.SideT).Streak != 0 {
		t.Error("forced roster change must reset streaks")
	}
	if len(host.moves) != 2 {
		t.Errorf("host received %d move commands, want 2", len(host.moves))
	}
	for _, mv := range moves {
		if mv.Player.Immunity != 2 {
			t.Errorf("moved player immunity = %d, want 2", mv.Player.Immunity)
		}
	}
}

func TestSustainedAdvantageSwapsSecondBestWithWorst(t *testing.T) {
	// Sizes are balanced (3v2 with an odd total of 5, extra to T by
	// default). T has the streak: its second-best swaps with CT's worst;
	// the top performer never moves.
	_, snap := buildTeams(t,
		map[int]float64{1: 15000, 2: 12000, 3: 9000},
		map[int]float64{4: 7000, 5: 8000},
	)
	for i := 0; i < 3; i++ {
		snap.Team(domain.SideT).RecordWin()
		snap.Team(domain.SideCT).RecordLoss()
	}

	host := &fakeHost{}
	p := NewPolicy(host, nil, nil, testCfg())

	moves := p.Evaluate(snap, "de_inferno")

	if len(moves) != 2 {
		t.Fatalf("got %d moves, want 2 (one swap)", len(moves))
	}
	var toCT, toT int
	for _, mv := range moves {
		if mv.Reason != ReasonSwap {
			t.Errorf("move reason = %s, want %s", mv.Reason, ReasonSwap)
		}
		if mv.Player.Handle == 1 {
			t.Error("the top performer must never be moved")
		}
		switch mv.To {
		case domain.SideCT:
			toCT = mv.Player.Handle
		case domain.SideT:
			toT = mv.Player.Handle
		}
	}
	if toCT != 2 {
		t.Errorf("strong side gave handle %d, want second-best (2)", toCT)
	}
	if toT != 4 {
		t.Errorf("weak side gave handle %d, want worst (4)", toT)
	}

	if snap.Team(domain.SideT).Streak != 0 || snap.Team(domain.SideCT).Streak != 0 {
		t.Error("swap must reset both streaks")
	}
}

func TestNoSwapBelowMinPlayers(t *testing.T) {
	_, snap := buildTeams(t,
		map[int]float64{1: 12000, 2: 9000},
		map[int]float64{3: 8000},
	)
	for i := 0; i < 4; i++ {
		snap.Team(domain.SideT).RecordWin()
	}

	host := &fakeHost{}
	p := NewPolicy(host, nil, nil, testCfg())

	if moves := p.Evaluate(snap, "de_dust2"); moves != nil {
		t.Fatalf("got %d moves with only 3 players, want none", len(moves))
	}
	if snap.Team(domain.SideT).Streak != 4 {
		t.Error("streak must be left untouched when no swap occurs")
	}
}

func TestNoSwapBelowMinStreak(t *testing.T) {
	_, snap := buildTeams(t,
		map[int]float64{1: 12000, 2: 9000},
		map[int]float64{3: 8000, 4: 7000},
	)
	snap.Team(domain.SideT).RecordWin()
	snap.Team(domain.SideT).RecordWin()

	host := &fakeHost{}
	p := NewPolicy(host, nil, nil, testCfg())

	if moves := p.Evaluate(snap, "de_dust2"); moves != nil {
		t.Fatalf("got %d moves with streak 2, want none", len(moves))
	}
}

func TestCountCorrectionTakesPrecedence(t *testing.T) {
	// Sizes are off AND the oversized side has a long streak: only the
	// count correction may run this cycle.
	_, snap := buildTeams(t,
		map[int]float64{1: 6000, 2: 9000, 3: 10000, 4: 12000},
		map[int]float64{5: 8000, 6: 9500},
	)
	for i := 0; i < 5; i++ {
		snap.Team(domain.SideT).RecordWin()
	}

	host := &fakeHost{}
	p := NewPolicy(host, nil, nil, testCfg())

	moves := p.Evaluate(snap, "de_dust2")
	if len(moves) != 1 {
		t.Fatalf("got %d moves, want 1 count move", len(moves))
	}
	if moves[0].Reason != ReasonCount {
		t.Errorf("reason = %s, want %s", moves[0].Reason, ReasonCount)
	}
	if moves[0].Player.Handle != 1 {
		t.Errorf("moved handle %d, want weakest (1)", moves[0].Player.Handle)
	}
}

func TestDisabledPolicyDoesNothing(t *testing.T) {
	_, snap := buildTeams(t,
		map[int]float64{1: 6000, 2: 9000, 3: 10000},
		map[int]float64{4: 8000},
	)

	cfg := testCfg()
	disabled := false
	cfg.Enabled = &disabled
	host := &fakeHost{}
	p := NewPolicy(host, nil, nil, cfg)

	if moves := p.Evaluate(snap, "de_dust2"); moves != nil {
		t.Fatal("disabled policy still moved players")
	}
	if len(host.moves) != 0 {
		t.Fatal("disabled policy issued commands")
	}
}

func TestIdealSizesOddTotalFollowsBombsites(t *testing.T) {
	host := &fakeHost{}

	// Two-site maps lean the extra player to CT.
	sites := NewSiteTable(t.TempDir() + "/sites.cfg")
	p := NewPolicy(host, nil, sites, testCfg())
	idealT, idealCT := p.idealSizes(5, "de_dust2")
	if idealT != 2 || idealCT != 3 {
		t.Errorf("de_dust2 ideal = %d/%d, want 2/3", idealT, idealCT)
	}

	// Hostage maps default to one site and lean T.
	idealT, idealCT = p.idealSizes(5, "cs_office")
	if idealT != 3 || idealCT != 2 {
		t.Errorf("cs_office ideal = %d/%d, want 3/2", idealT, idealCT)
	}

	// Config override wins.
	cfg := testCfg()
	cfg.ExtraPlayerSide = "T"
	p = NewPolicy(host, nil, sites, cfg)
	idealT, idealCT = p.idealSizes(5, "de_dust2")
	if idealT != 3 || idealCT != 2 {
		t.Errorf("override ideal = %d/%d, want 3/2", idealT, idealCT)
	}
}

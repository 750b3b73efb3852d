package stats

import "testing"

func TestCalcSkillNeutralForZeroRounds(t *testing.T) {
	players := []*PlayerStats{
		{},
		{Kills: 50, Damage: 9999, HeadshotKills: 20},
		{Deaths: 40, ShotsFired: 500},
	}
	for _, p := range players {
		if got := CalcSkill(p); got != NeutralSkill {
			t.Errorf("CalcSkill with 0 rounds = %v, want %v", got, NeutralSkill)
		}
	}
}

func TestCalcSkillDeterministic(t *testing.T) {
	p := &PlayerStats{Rounds: 5, Kills: 10, Deaths: 4, Assists: 3, Damage: 800, ShotsFired: 100, ShotsHit: 40}
	a := CalcSkill(p)
	b := CalcSkill(p)
	if a != b {
		t.Errorf("CalcSkill not deterministic: %v != %v", a, b)
	}
}

func TestCalcSkillMonotonicity(t *testing.T) {
	base := PlayerStats{Rounds: 10, Kills: 5, Deaths: 5, Assists: 2, Damage: 500}

	inc := func(mutate func(*PlayerStats)) float64 {
		p := base
		mutate(&p)
		return CalcSkill(&p)
	}

	baseline := CalcSkill(&base)

	if inc(func(p *PlayerStats) { p.Kills++ }) < baseline {
		t.Error("skill decreased when kills increased")
	}
	if inc(func(p *PlayerStats) { p.Assists++ }) < baseline {
		t.Error("skill decreased when assists increased")
	}
	if inc(func(p *PlayerStats) { p.HeadshotKills++ }) < baseline {
		t.Error("skill decreased when headshot kills increased")
	}
	if inc(func(p *PlayerStats) { p.Deaths++ }) > baseline {
		t.Error("skill increased when deaths increased")
	}
}

func TestCalcSkillAccuracyBonus(t *testing.T) {
	low := &PlayerStats{Rounds: 5, ShotsFired: 100, ShotsHit: 10}  // 10%, below baseline
	high := &PlayerStats{Rounds: 5, ShotsFired: 100, ShotsHit: 50} // 50%, above baseline
	if CalcSkill(high) <= CalcSkill(low) {
		t.Errorf("accuracy above baseline should raise skill: %v <= %v", CalcSkill(high), CalcSkill(low))
	}
}

func TestCalcSkillClamped(t *testing.T) {
	monster := &PlayerStats{Rounds: 1, Kills: 1000, Damage: 100000}
	if got := CalcSkill(monster); got > MaxSkill {
		t.Errorf("skill %v exceeds max %v", got, MaxSkill)
	}
	feeder := &PlayerStats{Rounds: 1, Deaths: 1000}
	if got := CalcSkill(feeder); got < MinSkill {
		t.Errorf("skill %v below min %v", got, MinSkill)
	}
}

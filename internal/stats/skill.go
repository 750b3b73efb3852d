package stats

// Skill formula constants. The neutral default sits mid-range so new or idle
// players are never treated as worst-in-team.
const (
	NeutralSkill = 10000.0
	MinSkill     = 0.0
	MaxSkill     = 20000.0

	skillBaseline     = 5000.0
	damagePerRoundMul = 10.0
	killBonus         = 50.0
	assistBonus       = 15.0
	headshotBonus     = 25.0
	deathPenalty      = 30.0

	accuracyBaseline = 0.20
	accuracyMul      = 5000.0
)

// CalcSkill derives the in-session skill score from combat counters. It is
// pure: the same counters always produce the same score. Players with zero
// rounds played get the neutral default regardless of other counters.
func CalcSkill(p *PlayerStats) float64 {
	if p.Rounds == 0 {
		return NeutralSkill
	}

	skill := skillBaseline
	skill += damagePerRoundMul * float64(p.Damage) / float64(p.Rounds)
	skill += killBonus * float64(p.Kills)
	skill += assistBonus * float64(p.Assists)
	skill += headshotBonus * float64(p.HeadshotKills)
	skill -= deathPenalty * float64(p.Deaths)

	if acc := p.Accuracy(); acc > accuracyBaseline {
		skill += accuracyMul * (acc - accuracyBaseline)
	}

	if skill < MinSkill {
		return MinSkill
	}
	if skill > MaxSkill {
		return MaxSkill
	}
	return skill
}

package stats

// PlayerStats is the mutable per-player aggregate for the current map.
// Counters key off the transient handle; SteamID is carried along so stale
// records can be detected when the engine reuses a handle.
type PlayerStats struct {
	Handle  int
	SteamID string
	Name    string

	Rounds      int
	RoundWins   int
	RoundLosses int

	Kills         int
	Deaths        int
	Assists       int
	Damage        int
	ShotsFired    int
	ShotsHit      int
	HeadshotHits  int
	HeadshotKills int

	// Immunity counts rounds during which the balancer will not move this
	// player again. Set after a forced move, decremented at round end.
	Immunity int

	Disconnected bool
}

// Accuracy returns hits over shots fired, or 0 when nothing was fired.
func (p *PlayerStats) Accuracy() float64 {
	if p.ShotsFired == 0 {
		return 0
	}
	return float64(p.ShotsHit) / float64(p.ShotsFired)
}

// Store tracks PlayerStats for every handle seen on the current map.
// All mutators auto-create a record for an unseen handle: a stat update must
// never be dropped because bookkeeping lagged a spawn event.
type Store struct {
	players map[int]*PlayerStats
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{players: make(map[int]*PlayerStats)}
}

// Get returns the record for a handle, if one exists.
func (s *Store) Get(handle int) (*PlayerStats, bool) {
	p, ok := s.players[handle]
	return p, ok
}

// GetOrCreate returns the record for a handle, creating it on first sight.
func (s *Store) GetOrCreate(handle int) *PlayerStats {
	if p, ok := s.players[handle]; ok {
		return p
	}
	p := &PlayerStats{Handle: handle}
	s.players[handle] = p
	return p
}

// Remove deletes the record for a handle.
func (s *Store) Remove(handle int) {
	delete(s.players, handle)
}

// Len returns the number of tracked records.
func (s *Store) Len() int {
	return len(s.players)
}

// All returns every tracked record in unspecified order.
func (s *Store) All() []*PlayerStats {
	out := make([]*PlayerStats, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	return out
}

// RecordDamage credits damage dealt by attacker to victim. Head hits count
// toward the headshot-hit tally used for accuracy display.
func (s *Store) RecordDamage(attacker, victim, amount int, headshot bool) {
	a := s.GetOrCreate(attacker)
	a.Damage += amount
	a.ShotsHit++
	if headshot {
		a.HeadshotHits++
	}
	// Make sure the victim is tracked even if we never saw them attack.
	s.GetOrCreate(victim)
}

// RecordDeath credits a kill to attacker, a death to victim and an assist to
// assister when non-negative. A suicide (attacker == victim) counts only the
// death.
func (s *Store) RecordDeath(attacker, victim, assister int, headshot bool) {
	v := s.GetOrCreate(victim)
	v.Deaths++

	if attacker != victim {
		a := s.GetOrCreate(attacker)
		a.Kills++
		if headshot {
			a.HeadshotKills++
		}
	}

	if assister >= 0 && assister != victim {
		s.GetOrCreate(assister).Assists++
	}
}

// RecordShot counts a shot fired by shooter.
func (s *Store) RecordShot(shooter int) {
	s.GetOrCreate(shooter).ShotsFired++
}

// RecordRoundBoundary increments rounds played for all tracked players.
func (s *Store) RecordRoundBoundary() {
	for _, p := range s.players {
		p.Rounds++
	}
}

// IncRounds increments rounds played for the given handles only.
func (s *Store) IncRounds(handles []int) {
	for _, h := range handles {
		if p, ok := s.players[h]; ok {
			p.Rounds++
		}
	}
}

// ResetWarmupCounters zeroes round and combat counters without removing
// identities. Called when warmup ends so warmup activity never pollutes
// match scoring.
func (s *Store) ResetWarmupCounters() {
	for _, p := range s.players {
		p.Rounds = 0
		p.RoundWins = 0
		p.RoundLosses = 0
		p.Kills = 0
		p.Deaths = 0
		p.Assists = 0
		p.Damage = 0
		p.ShotsFired = 0
		p.ShotsHit = 0
		p.HeadshotHits = 0
		p.HeadshotKills = 0
	}
}

// Clear removes all records (new map).
func (s *Store) Clear() {
	s.players = make(map[int]*PlayerStats)
}

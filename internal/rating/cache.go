// Package rating maintains an asynchronously refreshed map from stable
// player identity to a long-window average skill, used as a stabler
// substitute for the volatile in-session score.
package rating

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Pintuzoft/osbase/internal/domain"
	"github.com/Pintuzoft/osbase/internal/stats"
)

// Store is the slice of the rating log the cache needs: one bulk query
// returning averaged historical skill grouped by stable identity.
type Store interface {
	AverageSkillSince(ctx context.Context, since time.Time) (map[string]float64, error)
}

// Cache holds the long-window ratings. A refresh either fully replaces the
// contents or leaves them untouched; stale data is always preferred over
// partial data.
type Cache struct {
	store  Store
	window time.Duration

	mu          sync.RWMutex
	ratings     map[string]float64
	refreshedAt time.Time
	applied     uint64

	gen uint64
	gmu sync.Mutex
}

// NewCache creates a cache reading from store over the given trailing window.
func NewCache(store Store, window time.Duration) *Cache {
	return &Cache{
		store:   store,
		window:  window,
		ratings: make(map[string]float64),
	}
}

// RefreshAll queries the trailing window and atomically swaps in the result.
// On any failure the previous contents are kept. When refreshes overlap, the
// newest request wins: an in-flight refresh is never aborted, but its result
// is dropped if a newer one already landed.
func (c *Cache) RefreshAll(ctx context.Context) error {
	c.gmu.Lock()
	c.gen++
	myGen := c.gen
	c.gmu.Unlock()

	since := time.Now().Add(-c.window)
	fresh, err := c.store.AverageSkillSince(ctx, since)
	if err != nil {
		return fmt.Errorf("rating refresh: %w", err)
	}
	if fresh == nil {
		return fmt.Errorf("rating refresh: query returned no result set")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if myGen < c.applied {
		return nil
	}
	c.ratings = fresh
	c.refreshedAt = time.Now()
	c.applied = myGen
	return nil
}

// RefreshBackground runs RefreshAll in a goroutine. Failures are logged and
// the old cache is kept; the main event loop is never blocked or degraded.
func (c *Cache) RefreshBackground(ctx context.Context) {
	go func() {
		if err := c.RefreshAll(ctx); err != nil {
			log.Printf("Warning: keeping stale rating cache: %v", err)
		}
	}()
}

// Lookup returns the cached long-window skill for a stable identity.
// Callers must fall back to the live in-session score on a miss, never to
// zero, since zero would look like a legitimate terrible-skill player.
func (c *Cache) Lookup(steamID string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.ratings[steamID]
	return v, ok
}

// RefreshedAt returns when the cache last swapped successfully.
func (c *Cache) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}

// Len returns the number of cached identities.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ratings)
}

// SkillFor returns the cached long-window skill for a player, falling back
// to the live in-session score on a miss.
func (c *Cache) SkillFor(p *stats.PlayerStats) float64 {
	if p.SteamID != "" {
		if v, ok := c.Lookup(p.SteamID); ok {
			return v
		}
	}
	return stats.CalcSkill(p)
}

// TeamAverage mirrors the snapshot's average-skill computation but prefers
// cached long-window values per member, then applies the same streak bonus.
func (c *Cache) TeamAverage(snap *stats.Snapshot, side domain.Side) float64 {
	team := snap.Team(side)
	members := team.Members()
	if len(members) == 0 {
		return 0
	}
	var sum float64
	for _, p := range members {
		sum += c.SkillFor(p)
	}
	return sum/float64(len(members)) + stats.StreakBonus*float64(team.Streak)
}

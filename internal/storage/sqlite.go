package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/Pintuzoft/osbase/internal/domain"
	_ "modernc.org/sqlite"
)

// formatTimestamp converts time.Time to SQLite-compatible UTC ISO8601 string
// The Z suffix ensures the Go sqlite driver parses it back as UTC
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

//go:embed schema.sql
var schema string

// Store provides database access
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// AppendRating writes one rating log row.
func (s *Store) AppendRating(ctx context.Context, row domain.RatingRow) error {
	recordedAt := row.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ratings (steam_id, name, skill, map_name, match_uuid, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, row.SteamID, row.Name, row.Skill, row.MapName, row.MatchUUID, formatTimestamp(recordedAt))
	if err != nil {
		return fmt.Errorf("appending rating row: %w", err)
	}
	return nil
}

// AverageSkillSince returns the average logged skill per stable identity for
// rows recorded at or after since. This is the one bulk query the rating
// cache issues on refresh.
func (s *Store) AverageSkillSince(ctx context.Context, since time.Time) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT steam_id, AVG(skill)
		FROM ratings
		WHERE recorded_at >= ? AND steam_id != ''
		GROUP BY steam_id
	`, formatTimestamp(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	averages := make(map[string]float64)
	for rows.Next() {
		var steamID string
		var avg float64
		if err := rows.Scan(&steamID, &avg); err != nil {
			return nil, err
		}
		averages[steamID] = avg
	}
	return averages, rows.Err()
}

// TopRatings returns the highest-rated identities over the trailing window,
// most recent name first per identity. Used by the CLI leaderboard.
func (s *Store) TopRatings(ctx context.Context, since time.Time, limit int) ([]domain.RatingSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT steam_id,
		       (SELECT name FROM ratings r2 WHERE r2.steam_id = r.steam_id ORDER BY r2.recorded_at DESC LIMIT 1),
		       AVG(skill),
		       COUNT(*),
		       MAX(recorded_at)
		FROM ratings r
		WHERE recorded_at >= ? AND steam_id != ''
		GROUP BY steam_id
		ORDER BY AVG(skill) DESC
		LIMIT ?
	`, formatTimestamp(since), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.RatingSummary
	for rows.Next() {
		var sum domain.RatingSummary
		if err := rows.Scan(&sum.SteamID, &sum.Name, &sum.AvgSkill, &sum.Maps, &sum.LastSeen); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// CountRatings returns the total number of logged rows.
func (s *Store) CountRatings(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ratings").Scan(&n)
	return n, err
}

package domain

import "time"

// RatingRow is one append-only rating log entry, written at map end for each
// player who played enough rounds. Rows are only ever read back in aggregate
// (grouped trailing-window average) by the rating cache.
type RatingRow struct {
	SteamID    string    `json:"steam_id"`
	Name       string    `json:"name"`
	Skill      float64   `json:"skill"`
	MapName    string    `json:"map_name"`
	MatchUUID  string    `json:"match_uuid"`
	RecordedAt time.Time `json:"recorded_at"`
}

// RatingSummary is an aggregated view of the rating log for one player,
// used by the CLI leaderboard.
type RatingSummary struct {
	SteamID  string  `json:"steam_id"`
	Name     string  `json:"name"`
	AvgSkill float64 `json:"avg_skill"`
	Maps     int     `json:"maps"`
	LastSeen string  `json:"last_seen"`
}

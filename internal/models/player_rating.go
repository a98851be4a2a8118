package models

import "time"

// PlayerRating represents a player's persisted rating state.
// Overall is always present once the player has appeared in an update;
// surface entries exist only for surfaces the player has a recorded match on.
type PlayerRating struct {
	Player         string              `json:"player" db:"player"`
	Overall        float64             `json:"rating" db:"rating"`
	SurfaceRatings map[Surface]float64 `json:"surface_ratings,omitempty" db:"surface_ratings"`
	LastMatchDate  *time.Time          `json:"last_match_date,omitempty" db:"last_match_date"`
}

// Clone returns a deep copy, so callers can hand snapshots to readers
// without exposing the engine's mutable state.
func (pr PlayerRating) Clone() PlayerRating {
	out := pr
	if pr.SurfaceRatings != nil {
		out.SurfaceRatings = make(map[Surface]float64, len(pr.SurfaceRatings))
		for s, r := range pr.SurfaceRatings {
			out.SurfaceRatings[s] = r
		}
	}
	if pr.LastMatchDate != nil {
		d := *pr.LastMatchDate
		out.LastMatchDate = &d
	}
	return out
}

// SnapshotMeta carries bookkeeping used by the incremental training driver
// to decide how much history to replay.
type SnapshotMeta struct {
	LastUpdate   time.Time `json:"last_update"`
	TotalPlayers int       `json:"total_players"`
}

// RatingsSnapshot is the full serialized form exchanged with a RatingRepository.
type RatingsSnapshot struct {
	Players map[string]PlayerRating `json:"players"`
	Meta    SnapshotMeta            `json:"meta"`
}

// NewRatingsSnapshot creates an empty snapshot
func NewRatingsSnapshot() *RatingsSnapshot {
	return &RatingsSnapshot{Players: make(map[string]PlayerRating)}
}

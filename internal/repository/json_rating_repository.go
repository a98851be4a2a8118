package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/martofrog/tennis-predictions/internal/models"
)

// metaKey is the reserved top-level key carrying snapshot metadata.
// It cannot collide with a player key because player names are normalized
// and never start with an underscore.
const metaKey = "_meta"

// JSONRatingRepository persists ratings to a single JSON file.
// It reads both the current structured format and the legacy flat format
// (player -> bare rating number), normalizing to the structured shape at load.
type JSONRatingRepository struct {
	path string
}

// NewJSONRatingRepository creates a repository backed by the given file path
func NewJSONRatingRepository(path string) *JSONRatingRepository {
	return &JSONRatingRepository{path: path}
}

// rawRatingRecord is the tagged variant at the load boundary: either a bare
// scalar (legacy format) or the structured record.
type rawRatingRecord struct {
	scalar     *float64
	structured *structuredRecord
}

type structuredRecord struct {
	Rating         float64            `json:"rating"`
	SurfaceRatings map[string]float64 `json:"surface_ratings,omitempty"`
	LastMatchDate  string             `json:"last_match_date,omitempty"`
}

func (r *rawRatingRecord) UnmarshalJSON(data []byte) error {
	var scalar float64
	if err := json.Unmarshal(data, &scalar); err == nil {
		r.scalar = &scalar
		return nil
	}
	var rec structuredRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	r.structured = &rec
	return nil
}

// normalize converts either variant to the internal shape. Legacy scalars
// get no surface ratings and no last-match-date, so no decay applies until
// the player's next match.
func (r *rawRatingRecord) normalize(player string) models.PlayerRating {
	if r.scalar != nil {
		return models.PlayerRating{Player: player, Overall: *r.scalar}
	}
	pr := models.PlayerRating{
		Player:  player,
		Overall: r.structured.Rating,
	}
	if len(r.structured.SurfaceRatings) > 0 {
		pr.SurfaceRatings = make(map[models.Surface]float64, len(r.structured.SurfaceRatings))
		for s, v := range r.structured.SurfaceRatings {
			pr.SurfaceRatings[models.Surface(s)] = v
		}
	}
	if r.structured.LastMatchDate != "" {
		if t, err := parseISOTime(r.structured.LastMatchDate); err == nil {
			pr.LastMatchDate = &t
		}
	}
	return pr
}

func parseISOTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
}

// Load reads the ratings file. A missing or empty file yields an empty
// snapshot; malformed JSON yields a RepositoryError.
func (r *JSONRatingRepository) Load(ctx context.Context) (*models.RatingsSnapshot, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewRatingsSnapshot(), nil
		}
		return nil, models.NewRepositoryError("load ratings", err)
	}
	if len(data) == 0 {
		return models.NewRatingsSnapshot(), nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, models.NewRepositoryError("parse ratings", err)
	}

	snapshot := models.NewRatingsSnapshot()
	for player, payload := range raw {
		if player == metaKey {
			var meta struct {
				LastUpdate   string `json:"last_update"`
				TotalPlayers int    `json:"total_players"`
			}
			if err := json.Unmarshal(payload, &meta); err != nil {
				return nil, models.NewRepositoryError("parse ratings metadata", err)
			}
			if meta.LastUpdate != "" {
				if t, err := parseISOTime(meta.LastUpdate); err == nil {
					snapshot.Meta.LastUpdate = t
				}
			}
			snapshot.Meta.TotalPlayers = meta.TotalPlayers
			continue
		}

		var rec rawRatingRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, models.NewRepositoryError(fmt.Sprintf("parse rating for %q", player), err)
		}
		snapshot.Players[player] = rec.normalize(player)
	}

	if snapshot.Meta.TotalPlayers == 0 {
		snapshot.Meta.TotalPlayers = len(snapshot.Players)
	}
	return snapshot, nil
}

// Save writes the snapshot atomically (temp file + rename)
func (r *JSONRatingRepository) Save(ctx context.Context, snapshot *models.RatingsSnapshot) error {
	out := make(map[string]interface{}, len(snapshot.Players)+1)
	for player, pr := range snapshot.Players {
		rec := structuredRecord{Rating: pr.Overall}
		if len(pr.SurfaceRatings) > 0 {
			rec.SurfaceRatings = make(map[string]float64, len(pr.SurfaceRatings))
			for s, v := range pr.SurfaceRatings {
				rec.SurfaceRatings[string(s)] = v
			}
		}
		if pr.LastMatchDate != nil {
			rec.LastMatchDate = pr.LastMatchDate.Format(time.RFC3339)
		}
		out[player] = rec
	}
	out[metaKey] = map[string]interface{}{
		"last_update":   snapshot.Meta.LastUpdate.Format(time.RFC3339),
		"total_players": len(snapshot.Players),
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return models.NewRepositoryError("encode ratings", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return models.NewRepositoryError("create ratings directory", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return models.NewRepositoryError("write ratings", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return models.NewRepositoryError("replace ratings file", err)
	}
	return nil
}

// Exists reports whether the ratings file is present
func (r *JSONRatingRepository) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(r.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, models.NewRepositoryError("stat ratings file", err)
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/martofrog/tennis-predictions/internal/database"
	"github.com/martofrog/tennis-predictions/internal/models"
)

// PostgresRatingRepository persists ratings in PostgreSQL, one row per player
// plus a single metadata row.
type PostgresRatingRepository struct {
	db *database.DB
}

// NewPostgresRatingRepository creates a postgres-backed rating repository
func NewPostgresRatingRepository(db *database.DB) *PostgresRatingRepository {
	return &PostgresRatingRepository{db: db}
}

// Load reads all player rating rows and the metadata row
func (r *PostgresRatingRepository) Load(ctx context.Context) (*models.RatingsSnapshot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT player, rating, surface_ratings, last_match_date FROM player_ratings`)
	if err != nil {
		return nil, models.NewRepositoryError("query player ratings", err)
	}
	defer rows.Close()

	snapshot := models.NewRatingsSnapshot()
	for rows.Next() {
		var (
			player      string
			rating      float64
			surfacesRaw []byte
			lastMatch   *time.Time
		)
		if err := rows.Scan(&player, &rating, &surfacesRaw, &lastMatch); err != nil {
			return nil, models.NewRepositoryError("scan player rating", err)
		}

		pr := models.PlayerRating{Player: player, Overall: rating, LastMatchDate: lastMatch}
		if len(surfacesRaw) > 0 {
			surfaces := make(map[string]float64)
			if err := json.Unmarshal(surfacesRaw, &surfaces); err != nil {
				return nil, models.NewRepositoryError("parse surface ratings", err)
			}
			if len(surfaces) > 0 {
				pr.SurfaceRatings = make(map[models.Surface]float64, len(surfaces))
				for s, v := range surfaces {
					pr.SurfaceRatings[models.Surface(s)] = v
				}
			}
		}
		snapshot.Players[player] = pr
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewRepositoryError("iterate player ratings", err)
	}

	var lastUpdate time.Time
	var totalPlayers int
	err = r.db.QueryRow(ctx, `SELECT last_update, total_players FROM ratings_meta`).
		Scan(&lastUpdate, &totalPlayers)
	switch {
	case err == nil:
		snapshot.Meta = models.SnapshotMeta{LastUpdate: lastUpdate, TotalPlayers: totalPlayers}
	case errors.Is(err, pgx.ErrNoRows):
		snapshot.Meta.TotalPlayers = len(snapshot.Players)
	default:
		return nil, models.NewRepositoryError("query ratings metadata", err)
	}

	return snapshot, nil
}

// Save upserts every player row and the metadata row in one transaction
func (r *PostgresRatingRepository) Save(ctx context.Context, snapshot *models.RatingsSnapshot) error {
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for player, pr := range snapshot.Players {
			surfaces := make(map[string]float64, len(pr.SurfaceRatings))
			for s, v := range pr.SurfaceRatings {
				surfaces[string(s)] = v
			}
			surfacesRaw, err := json.Marshal(surfaces)
			if err != nil {
				return err
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO player_ratings (player, rating, surface_ratings, last_match_date, updated_at)
				VALUES ($1, $2, $3, $4, now())
				ON CONFLICT (player) DO UPDATE SET
					rating = EXCLUDED.rating,
					surface_ratings = EXCLUDED.surface_ratings,
					last_match_date = EXCLUDED.last_match_date,
					updated_at = now()`,
				player, pr.Overall, surfacesRaw, pr.LastMatchDate)
			if err != nil {
				return err
			}
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO ratings_meta (id, last_update, total_players)
			VALUES (TRUE, $1, $2)
			ON CONFLICT (id) DO UPDATE SET
				last_update = EXCLUDED.last_update,
				total_players = EXCLUDED.total_players`,
			snapshot.Meta.LastUpdate, len(snapshot.Players))
		return err
	})
	if err != nil {
		return models.NewRepositoryError("save ratings", err)
	}
	return nil
}

// Exists reports whether any player ratings have been stored
func (r *PostgresRatingRepository) Exists(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM player_ratings`).Scan(&count); err != nil {
		return false, models.NewRepositoryError("count player ratings", err)
	}
	return count > 0, nil
}

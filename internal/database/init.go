package database

import (
	"context"
	"fmt"

	"github.com/martofrog/tennis-predictions/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS player_ratings (
	player          TEXT PRIMARY KEY,
	rating          DOUBLE PRECISION NOT NULL,
	surface_ratings JSONB NOT NULL DEFAULT '{}'::jsonb,
	last_match_date TIMESTAMPTZ,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS ratings_meta (
	id            BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (id),
	last_update   TIMESTAMPTZ NOT NULL,
	total_players INTEGER NOT NULL
);
`

// Initialize creates the connection pool and ensures the ratings schema exists
func Initialize(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	db, err := NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

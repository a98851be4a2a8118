package repository

import (
	"fmt"

	"github.com/martofrog/tennis-predictions/internal/config"
	"github.com/martofrog/tennis-predictions/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Rating RatingRepository
	Match  MatchRepository
}

// NewRepositories creates the repository set for the configured ratings
// backend. The postgres backend requires a live database connection; the
// json backend works entirely on the local filesystem.
func NewRepositories(cfg *config.RatingsConfig, db *database.DB) (*Repositories, error) {
	repos := &Repositories{
		Match: NewCSVMatchRepository(cfg.DataDir),
	}

	switch cfg.Backend {
	case "json":
		repos.Rating = NewJSONRatingRepository(cfg.FilePath)
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres ratings backend requires a database connection")
		}
		repos.Rating = NewPostgresRatingRepository(db)
	default:
		return nil, fmt.Errorf("unknown ratings backend: %s", cfg.Backend)
	}

	return repos, nil
}

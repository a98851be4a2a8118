package repository

import (
	"context"
	"time"

	"github.com/martofrog/tennis-predictions/internal/models"
)

// RatingRepository defines the interface for rating persistence.
// Load returns an empty snapshot when no ratings have been stored yet;
// a *models.RepositoryError is returned when stored data cannot be parsed.
type RatingRepository interface {
	Load(ctx context.Context) (*models.RatingsSnapshot, error)
	Save(ctx context.Context, snapshot *models.RatingsSnapshot) error
	Exists(ctx context.Context) (bool, error)
}

// MatchRepository defines the interface for historical match data access
type MatchRepository interface {
	// LoadMatches returns match records for the given years and tour,
	// sorted chronologically. A nil years slice loads everything available;
	// an empty Tour loads both tours.
	LoadMatches(ctx context.Context, years []int, tour models.Tour) ([]models.MatchRecord, error)
	SaveMatches(ctx context.Context, records []models.MatchRecord, year int, tour models.Tour) error
	GetByDate(ctx context.Context, date time.Time, tour models.Tour) ([]models.MatchRecord, error)
	Exists(ctx context.Context, year int, tour models.Tour) (bool, error)
}

// Package datasource provides clients for external match-result and odds providers.
package datasource

import (
	"context"
	"time"

	"github.com/martofrog/tennis-predictions/internal/models"
)

// ResultsSource defines the interface for fetching completed match results
// from external providers
type ResultsSource interface {
	// FetchMatches retrieves all completed matches for a tour season
	FetchMatches(ctx context.Context, year int, tour models.Tour) ([]models.MatchRecord, error)

	// FetchMatchesByDate retrieves completed matches for a single day
	FetchMatchesByDate(ctx context.Context, date time.Time) ([]models.MatchRecord, error)

	// Name returns the name of the results source
	Name() string

	// IsEnabled returns whether this source is currently enabled
	IsEnabled() bool
}

const sourceDisabledMsg = "source is disabled"

package datasource

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/martofrog/tennis-predictions/internal/models"
)

// FallbackSource tries an ordered list of results sources and returns the
// first successful response. A source returning zero matches is a valid
// answer, not a reason to fall through; only genuine failures advance to the
// next source.
type FallbackSource struct {
	sources []ResultsSource
	logger  *logrus.Logger
}

// NewFallbackSource creates a coordinator over ordered sources
func NewFallbackSource(sources []ResultsSource, logger *logrus.Logger) *FallbackSource {
	return &FallbackSource{sources: sources, logger: logger}
}

// Name returns the coordinator name
func (f *FallbackSource) Name() string { return "fallback" }

// IsEnabled reports whether any underlying source is enabled
func (f *FallbackSource) IsEnabled() bool {
	for _, source := range f.sources {
		if source.IsEnabled() {
			return true
		}
	}
	return false
}

// FetchMatches retrieves a season from the first source that answers
func (f *FallbackSource) FetchMatches(ctx context.Context, year int, tour models.Tour) ([]models.MatchRecord, error) {
	return f.fetch(ctx, func(source ResultsSource) ([]models.MatchRecord, error) {
		return source.FetchMatches(ctx, year, tour)
	})
}

// FetchMatchesByDate retrieves a day's results from the first source that answers
func (f *FallbackSource) FetchMatchesByDate(ctx context.Context, date time.Time) ([]models.MatchRecord, error) {
	return f.fetch(ctx, func(source ResultsSource) ([]models.MatchRecord, error) {
		return source.FetchMatchesByDate(ctx, date)
	})
}

func (f *FallbackSource) fetch(ctx context.Context, do func(ResultsSource) ([]models.MatchRecord, error)) ([]models.MatchRecord, error) {
	var lastErr error
	for _, source := range f.sources {
		if !source.IsEnabled() {
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		matches, err := do(source)
		if err != nil {
			f.logger.WithFields(logrus.Fields{
				"source": source.Name(),
				"error":  err.Error(),
			}).Warn("Results source failed, trying next")
			lastErr = err
			continue
		}
		return matches, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, models.ErrNoProviders
}

// Package service implements the application-level operations: rating
// training, incremental updates and match prediction.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/martofrog/tennis-predictions/internal/datasource"
	"github.com/martofrog/tennis-predictions/internal/logger"
	"github.com/martofrog/tennis-predictions/internal/metrics"
	"github.com/martofrog/tennis-predictions/internal/models"
	"github.com/martofrog/tennis-predictions/internal/rating"
	"github.com/martofrog/tennis-predictions/internal/repository"
)

// TrainingMetrics summarizes a training or update run
type TrainingMetrics struct {
	MatchesProcessed int           `json:"matches_processed"`
	MatchesSkipped   int           `json:"matches_skipped"`
	PlayersRated     int           `json:"players_rated"`
	Duration         time.Duration `json:"duration"`
}

// String renders a one-line summary
func (m *TrainingMetrics) String() string {
	return fmt.Sprintf("processed %d matches (%d skipped), %d players rated in %s",
		m.MatchesProcessed, m.MatchesSkipped, m.PlayersRated, m.Duration.Round(time.Millisecond))
}

// TrainingService feeds historical and daily match results through the
// rating engine and persists the outcome.
type TrainingService struct {
	engine  *rating.Engine
	matches repository.MatchRepository
	results datasource.ResultsSource
	logger  *logrus.Logger
	audit   *logger.AuditLogger

	// now is injectable for tests
	now func() time.Time
}

// NewTrainingService creates a training service. results may be nil when
// only local match data is used.
func NewTrainingService(engine *rating.Engine, matches repository.MatchRepository, results datasource.ResultsSource, log *logrus.Logger) *TrainingService {
	return &TrainingService{
		engine:  engine,
		matches: matches,
		results: results,
		logger:  log,
		audit:   logger.NewAuditLogger(log),
		now:     time.Now,
	}
}

// Train replays stored match history through the engine in chronological
// order and saves the resulting ratings. A nil years slice replays every
// available season; an empty tour replays both tours.
func (s *TrainingService) Train(ctx context.Context, years []int, tour models.Tour) (*TrainingMetrics, error) {
	start := s.now()

	records, err := s.matches.LoadMatches(ctx, years, tour)
	if err != nil {
		return nil, fmt.Errorf("loading match history: %w", err)
	}

	trainingMetrics := s.applyRecords(records)
	trainingMetrics.Duration = s.now().Sub(start)

	if err := s.saveRatings(ctx, trainingMetrics); err != nil {
		return trainingMetrics, err
	}

	metrics.RecordTrainingDuration(trainingMetrics.Duration.Seconds())
	s.logger.WithFields(logrus.Fields{
		"tour":      tour,
		"processed": trainingMetrics.MatchesProcessed,
		"skipped":   trainingMetrics.MatchesSkipped,
		"players":   trainingMetrics.PlayersRated,
	}).Info("Training complete")
	return trainingMetrics, nil
}

// IngestSeason downloads a season from the results source and stores it in
// the match repository without touching ratings.
func (s *TrainingService) IngestSeason(ctx context.Context, year int, tour models.Tour) (int, error) {
	if s.results == nil {
		return 0, fmt.Errorf("no results source configured")
	}

	records, err := s.results.FetchMatches(ctx, year, tour)
	if err != nil {
		return 0, fmt.Errorf("fetching %s %d season: %w", tour, year, err)
	}
	if len(records) == 0 {
		s.logger.WithFields(logrus.Fields{"tour": tour, "year": year}).Info("Season not yet available")
		return 0, nil
	}

	if err := s.matches.SaveMatches(ctx, records, year, tour); err != nil {
		return 0, fmt.Errorf("storing %s %d season: %w", tour, year, err)
	}
	return len(records), nil
}

// DailyUpdate fetches results for the given day and applies only those the
// engine has not seen yet, then saves. Re-running for the same day is a
// no-op because already-processed dates are filtered out.
func (s *TrainingService) DailyUpdate(ctx context.Context, date time.Time) (*TrainingMetrics, error) {
	if s.results == nil {
		return nil, fmt.Errorf("no results source configured")
	}
	start := s.now()

	records, err := s.results.FetchMatchesByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("fetching results for %s: %w", date.Format("2006-01-02"), err)
	}

	lastProcessed := s.engine.LastProcessed()
	fresh := make([]models.MatchRecord, 0, len(records))
	for _, record := range records {
		if !record.MatchDate.After(lastProcessed) {
			continue
		}
		fresh = append(fresh, record)
	}

	trainingMetrics := s.applyRecords(fresh)
	trainingMetrics.Duration = s.now().Sub(start)

	if trainingMetrics.MatchesProcessed > 0 {
		if err := s.saveRatings(ctx, trainingMetrics); err != nil {
			return trainingMetrics, err
		}
	}

	s.logger.WithFields(logrus.Fields{
		"date":      date.Format("2006-01-02"),
		"fetched":   len(records),
		"processed": trainingMetrics.MatchesProcessed,
	}).Info("Daily update complete")
	return trainingMetrics, nil
}

// ApplyResult feeds a single finished match through the engine and saves
// the updated ratings. Used by the live score stream, where results arrive
// one at a time rather than in batches.
func (s *TrainingService) ApplyResult(ctx context.Context, record models.MatchRecord) error {
	if record.Winner == "" || record.Loser == "" || record.MatchDate.IsZero() {
		metrics.RecordIngestionError()
		return fmt.Errorf("incomplete match record: winner=%q loser=%q", record.Winner, record.Loser)
	}

	s.engine.Apply(record.Winner, record.Loser, record.WinnerScore, record.LoserScore,
		record.Surface, record.MatchDate)
	metrics.RecordMatchProcessed(string(record.Tour))

	trainingMetrics := &TrainingMetrics{MatchesProcessed: 1, PlayersRated: s.engine.PlayerCount()}
	return s.saveRatings(ctx, trainingMetrics)
}

// applyRecords feeds records through the engine. A malformed record is
// counted and skipped, never aborts the run.
func (s *TrainingService) applyRecords(records []models.MatchRecord) *TrainingMetrics {
	result := &TrainingMetrics{}

	for _, record := range records {
		if record.Winner == "" || record.Loser == "" || record.MatchDate.IsZero() {
			result.MatchesSkipped++
			metrics.RecordIngestionError()
			continue
		}

		s.engine.Apply(record.Winner, record.Loser, record.WinnerScore, record.LoserScore,
			record.Surface, record.MatchDate)
		result.MatchesProcessed++
		metrics.RecordMatchProcessed(string(record.Tour))
	}

	result.PlayersRated = s.engine.PlayerCount()
	return result
}

func (s *TrainingService) saveRatings(ctx context.Context, m *TrainingMetrics) error {
	if err := s.engine.Save(ctx); err != nil {
		return fmt.Errorf("saving ratings: %w", err)
	}

	s.audit.LogRatingsSaved(m.PlayersRated, m.MatchesProcessed, m.MatchesSkipped)
	metrics.UpdateRatedPlayers(float64(m.PlayersRated))
	metrics.UpdateLastRatingsUpdate(float64(s.now().Unix()))
	return nil
}

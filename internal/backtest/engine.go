package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/martofrog/tennis-predictions/internal/models"
	"github.com/martofrog/tennis-predictions/internal/rating"
	"github.com/martofrog/tennis-predictions/internal/repository"
)

// Engine replays stored match history through a fresh rating engine. Every
// match after the warmup window is forecast first and applied second, so no
// forecast ever sees its own result.
type Engine struct {
	config  Config
	rating  rating.Config
	matches repository.MatchRepository
	logger  *logrus.Logger
}

// NewEngine creates a backtest engine
func NewEngine(cfg Config, ratingCfg rating.Config, matches repository.MatchRepository, logger *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if matches == nil {
		return nil, fmt.Errorf("match repository is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{config: cfg, rating: ratingCfg, matches: matches, logger: logger}, nil
}

// Run replays the given seasons and scores every post-warmup forecast.
// A nil years slice replays everything available; an empty tour replays both
// tours.
func (e *Engine) Run(ctx context.Context, years []int, tour models.Tour) (*Report, error) {
	records, err := e.matches.LoadMatches(ctx, years, tour)
	if err != nil {
		return nil, fmt.Errorf("loading match history: %w", err)
	}

	engine, err := rating.NewEngine(ctx, e.rating, discardRepository{}, e.logger)
	if err != nil {
		return nil, fmt.Errorf("creating rating engine: %w", err)
	}

	card := newScorecard(e.config.CalibrationBuckets)
	warmup := 0
	for i, record := range records {
		if record.Winner == "" || record.Loser == "" || record.MatchDate.IsZero() {
			continue
		}
		// Ratings must reflect only matches already played
		engine.SetClock(func() time.Time { return record.MatchDate })

		if i >= e.config.WarmupMatches {
			winnerProb, _ := engine.PredictMatch(record.Winner, record.Loser, record.Surface)
			card.record(winnerProb, record.MatchDate)
		} else {
			warmup++
		}

		engine.Apply(record.Winner, record.Loser, record.WinnerScore, record.LoserScore,
			record.Surface, record.MatchDate)
	}

	report := card.report(warmup)
	e.logger.WithFields(logrus.Fields{
		"tour":      tour,
		"evaluated": report.MatchesEvaluated,
		"accuracy":  report.Accuracy,
	}).Info("Backtest complete")
	return report, nil
}

// discardRepository satisfies the rating store without persisting anything.
// Backtest ratings are throwaway state.
type discardRepository struct{}

func (discardRepository) Load(ctx context.Context) (*models.RatingsSnapshot, error) {
	return models.NewRatingsSnapshot(), nil
}

func (discardRepository) Save(ctx context.Context, snapshot *models.RatingsSnapshot) error {
	return nil
}

func (discardRepository) Exists(ctx context.Context) (bool, error) {
	return false, nil
}

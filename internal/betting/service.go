package betting

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/martofrog/tennis-predictions/internal/config"
	"github.com/martofrog/tennis-predictions/internal/logger"
	"github.com/martofrog/tennis-predictions/internal/metrics"
	"github.com/martofrog/tennis-predictions/internal/models"
)

// OddsProvider fetches upcoming match odds from a bookmaker aggregator
type OddsProvider interface {
	GetOdds(ctx context.Context, sport string, regions string) ([]models.MatchOdds, error)
}

// Service wires odds retrieval, edge calculation and bet selection into the
// two user-facing operations: a full value bet scan and the daily shortlist.
type Service struct {
	provider   OddsProvider
	calculator *EdgeCalculator
	selector   *Selector
	cfg        config.BettingConfig
	cache      *cache.Cache
	logger     *logrus.Logger
	audit      *logger.AuditLogger

	// now is injectable for tests
	now func() time.Time
}

// NewService creates a betting service
func NewService(provider OddsProvider, calculator *EdgeCalculator, selector *Selector, cfg config.BettingConfig, log *logrus.Logger) *Service {
	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	return &Service{
		provider:   provider,
		calculator: calculator,
		selector:   selector,
		cfg:        cfg,
		cache:      cache.New(ttl, ttl*2),
		logger:     log,
		audit:      logger.NewAuditLogger(log),
		now:        time.Now,
	}
}

// FindValueBets scans all upcoming matches for the sport and returns every
// quote whose probability edge meets minEdge. Results are cached for the
// configured TTL; pass useCache=false to force a fresh scan.
func (s *Service) FindValueBets(ctx context.Context, sport string, minEdge float64, useCache bool) ([]models.ValueBet, error) {
	if minEdge < 0 {
		return nil, fmt.Errorf("minimum edge must not be negative, got %.2f", minEdge)
	}

	cacheKey := fmt.Sprintf("value_bets:%s:%.2f", sport, minEdge)
	if useCache {
		if cached, found := s.cache.Get(cacheKey); found {
			s.logger.WithField("sport", sport).Debug("Serving value bets from cache")
			return cached.([]models.ValueBet), nil
		}
	}

	matches, err := s.provider.GetOdds(ctx, sport, s.cfg.Regions)
	if err != nil {
		return nil, fmt.Errorf("fetching odds for %s: %w", sport, err)
	}

	bets, err := s.calculator.FindValueBets(matches, minEdge)
	if err != nil {
		return nil, err
	}
	s.selector.SizeStakes(bets)

	metrics.RecordValueBetsFound(len(bets))
	s.cache.Set(cacheKey, bets, cache.DefaultExpiration)

	s.logger.WithFields(logrus.Fields{
		"sport":      sport,
		"matches":    len(matches),
		"value_bets": len(bets),
	}).Info("Value bet scan complete")
	return bets, nil
}

// TodaysValueBets returns the best available bet per match commencing within
// the configured window from now. Running it twice without new odds yields
// the same result.
func (s *Service) TodaysValueBets(ctx context.Context, sport string, minEdge float64) ([]models.ValueBet, error) {
	bets, err := s.FindValueBets(ctx, sport, minEdge, true)
	if err != nil {
		return nil, err
	}

	start := s.now()
	end := start.Add(time.Duration(s.cfg.WindowHours) * time.Hour)
	windowed := FilterWindow(bets, start, end)

	selected := s.selector.SelectBestPerMatch(windowed)
	for i := range selected {
		s.audit.LogValueBetRecommendation(&selected[i])
	}
	return selected, nil
}

// SetClock overrides the service clock
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Package betting turns model probabilities and market odds into quantified
// betting edges and value bet recommendations.
package betting

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/martofrog/tennis-predictions/internal/models"
	"github.com/martofrog/tennis-predictions/internal/odds"
)

// Predictor supplies model win probabilities for a match
type Predictor interface {
	PredictMatch(player1, player2 string, surface models.Surface) (float64, float64)
}

// EdgeConfig holds the recommendation thresholds, in EV percent
type EdgeConfig struct {
	StrongBetThreshold float64
	BetThreshold       float64
}

// DefaultEdgeConfig returns the standard recommendation tiers
func DefaultEdgeConfig() EdgeConfig {
	return EdgeConfig{StrongBetThreshold: 10.0, BetThreshold: 5.0}
}

// EdgeCalculator combines model probabilities with market-implied
// probabilities to score betting opportunities.
type EdgeCalculator struct {
	predictor Predictor
	cfg       EdgeConfig
	logger    *logrus.Logger
}

// NewEdgeCalculator creates an edge calculator
func NewEdgeCalculator(predictor Predictor, cfg EdgeConfig, logger *logrus.Logger) *EdgeCalculator {
	return &EdgeCalculator{predictor: predictor, cfg: cfg, logger: logger}
}

// CalculateEdge scores one side of a match. ourProb and bookieProb are
// probabilities; decimalOdds are the offered decimal odds for that side.
func (c *EdgeCalculator) CalculateEdge(player string, ourProb, bookieProb, decimalOdds float64) models.BettingEdge {
	probabilityEdge := (ourProb - bookieProb) * 100
	expectedValue := (ourProb*decimalOdds - 1) * 100

	recommendation := models.RecommendationPass
	switch {
	case expectedValue >= c.cfg.StrongBetThreshold:
		recommendation = models.RecommendationStrongBet
	case expectedValue >= c.cfg.BetThreshold:
		recommendation = models.RecommendationBet
	}

	return models.BettingEdge{
		Player:          player,
		ProbabilityEdge: probabilityEdge,
		ExpectedValue:   expectedValue,
		Recommendation:  recommendation,
	}
}

// FindValueBets evaluates every bookmaker quote on every match and returns
// the sides whose probability edge meets minEdge. Both sides of each quote
// are evaluated independently: a well-calibrated market should never clear
// the bar on both, but the engine does not assume that. Invalid odds in a
// quote are surfaced, never silently corrected.
func (c *EdgeCalculator) FindValueBets(matches []models.MatchOdds, minEdge float64) ([]models.ValueBet, error) {
	var valueBets []models.ValueBet

	for i := range matches {
		match := &matches[i]
		prob1, prob2 := c.predictor.PredictMatch(match.Player1, match.Player2, match.Surface)

		for _, quote := range match.Bookmakers {
			bets, err := c.evaluateQuote(match, quote, prob1, prob2, minEdge)
			if err != nil {
				return nil, fmt.Errorf("quote from %s on %s vs %s: %w",
					quote.Bookmaker, match.Player1, match.Player2, err)
			}
			valueBets = append(valueBets, bets...)
		}
	}

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			"matches":    len(matches),
			"value_bets": len(valueBets),
			"min_edge":   minEdge,
		}).Debug("Value bet scan complete")
	}
	return valueBets, nil
}

func (c *EdgeCalculator) evaluateQuote(match *models.MatchOdds, quote models.BookmakerOdds, prob1, prob2, minEdge float64) ([]models.ValueBet, error) {
	implied1, err := odds.ToProbability(quote.Player1Odds, quote.Format)
	if err != nil {
		return nil, err
	}
	implied2, err := odds.ToProbability(quote.Player2Odds, quote.Format)
	if err != nil {
		return nil, err
	}
	decimal1, err := odds.ToDecimal(quote.Player1Odds, quote.Format)
	if err != nil {
		return nil, err
	}
	decimal2, err := odds.ToDecimal(quote.Player2Odds, quote.Format)
	if err != nil {
		return nil, err
	}

	sides := []struct {
		player      string
		isPlayer1   bool
		ourProb     float64
		implied     float64
		quoted      float64
		decimalOdds float64
	}{
		{match.Player1, true, prob1, implied1, quote.Player1Odds, decimal1},
		{match.Player2, false, prob2, implied2, quote.Player2Odds, decimal2},
	}

	var bets []models.ValueBet
	for _, side := range sides {
		edge := c.CalculateEdge(side.player, side.ourProb, side.implied, side.decimalOdds)
		if edge.ProbabilityEdge < minEdge {
			continue
		}

		matchID := match.ID
		if matchID == "" {
			matchID = match.Key()
		}

		bets = append(bets, models.ValueBet{
			ID:                      uuid.New(),
			MatchID:                 matchID,
			Player1:                 match.Player1,
			Player2:                 match.Player2,
			BetOnPlayer:             side.player,
			IsPlayer1Bet:            side.isPlayer1,
			Bookmaker:               quote.Bookmaker,
			Odds:                    side.quoted,
			OddsFormat:              quote.Format,
			OurProbability:          side.ourProb,
			BookmakerProbability:    side.implied,
			EdgePercentage:          edge.ProbabilityEdge,
			ExpectedValuePercentage: edge.ExpectedValue,
			CommenceTime:            match.CommenceTime,
			Surface:                 match.Surface,
			Tour:                    match.Tour,
		})
	}
	return bets, nil
}

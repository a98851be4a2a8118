package models

import (
	"time"

	"github.com/google/uuid"
)

// Recommendation represents the tiered betting recommendation
type Recommendation string

const (
	RecommendationStrongBet Recommendation = "strong_bet"
	RecommendationBet       Recommendation = "bet"
	RecommendationPass      Recommendation = "pass"
)

// BettingEdge represents the calculated edge for one side of a match
type BettingEdge struct {
	Player          string         `json:"player"`
	ProbabilityEdge float64        `json:"probability_edge"` // percentage points
	ExpectedValue   float64        `json:"expected_value"`   // percent
	Recommendation  Recommendation `json:"recommendation"`
}

// ValueBet represents a value betting opportunity on a single match side
type ValueBet struct {
	ID                      uuid.UUID  `json:"id"`
	MatchID                 string     `json:"match_id"`
	Player1                 string     `json:"player1"`
	Player2                 string     `json:"player2"`
	BetOnPlayer             string     `json:"bet_on_player"`
	IsPlayer1Bet            bool       `json:"is_player1_bet"`
	Bookmaker               string     `json:"bookmaker"`
	Odds                    float64    `json:"odds"`
	OddsFormat              OddsFormat `json:"odds_format"`
	OurProbability          float64    `json:"our_probability"`
	BookmakerProbability    float64    `json:"bookmaker_probability"`
	EdgePercentage          float64    `json:"edge_percentage"`
	ExpectedValuePercentage float64    `json:"expected_value_percentage"`
	RecommendedStake        *float64   `json:"recommended_stake,omitempty"` // fraction of bankroll, nil when edge <= 0
	CommenceTime            time.Time  `json:"commence_time"`
	Surface                 Surface    `json:"surface"`
	Tour                    Tour       `json:"tour"`
}

// Key returns the order-independent match identity for deduplication
func (v *ValueBet) Key() string {
	return MatchKey(v.Player1, v.Player2)
}

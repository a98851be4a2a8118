package models

import "time"

// OddsFormat represents the representation of betting odds
type OddsFormat string

const (
	OddsFormatDecimal  OddsFormat = "decimal"
	OddsFormatAmerican OddsFormat = "american"
)

// BookmakerOdds represents a single bookmaker's head-to-head quote on a match
type BookmakerOdds struct {
	Bookmaker   string     `json:"bookmaker"`
	Player1Odds float64    `json:"player1_odds"`
	Player2Odds float64    `json:"player2_odds"`
	Format      OddsFormat `json:"odds_format"`
	LastUpdated time.Time  `json:"last_updated,omitempty"`
}

// MatchOdds represents an upcoming match with quotes from multiple bookmakers
type MatchOdds struct {
	ID           string          `json:"id"`
	Player1      string          `json:"player1"`
	Player2      string          `json:"player2"`
	CommenceTime time.Time       `json:"commence_time"`
	Surface      Surface         `json:"surface"`
	Tour         Tour            `json:"tour"`
	Bookmakers   []BookmakerOdds `json:"bookmakers"`
}

// Key returns the order-independent match identity
func (m *MatchOdds) Key() string {
	return MatchKey(m.Player1, m.Player2)
}

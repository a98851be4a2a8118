package models

import (
	"math"
	"time"
)

// MatchPrediction represents a forecast for a single match
type MatchPrediction struct {
	Player1               string    `json:"player1"`
	Player2               string    `json:"player2"`
	Player1WinProbability float64   `json:"player1_win_probability"`
	Player2WinProbability float64   `json:"player2_win_probability"`
	Player1Rating         float64   `json:"player1_rating"`
	Player2Rating         float64   `json:"player2_rating"`
	Surface               Surface   `json:"surface"`
	SurfaceAdjustment     float64   `json:"surface_adjustment"`
	PredictedAt           time.Time `json:"predicted_at"`
}

// Favorite returns the player with the higher win probability
func (p *MatchPrediction) Favorite() string {
	if p.Player1WinProbability > p.Player2WinProbability {
		return p.Player1
	}
	return p.Player2
}

// Confidence returns the prediction's distance from a coin flip
func (p *MatchPrediction) Confidence() float64 {
	return math.Abs(p.Player1WinProbability - 0.5)
}

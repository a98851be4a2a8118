// Package odds provides conversions between market odds and implied probabilities.
package odds

import (
	"fmt"
	"math"

	"github.com/martofrog/tennis-predictions/internal/models"
)

// DecimalToProbability converts decimal odds to an implied probability.
// Fails for odds <= 0.
func DecimalToProbability(odds float64) (float64, error) {
	if odds <= 0 {
		return 0, fmt.Errorf("%w: decimal odds must be positive, got %v", models.ErrInvalidOdds, odds)
	}
	return 1 / odds, nil
}

// AmericanToProbability converts American odds to an implied probability.
// Fails for odds == 0.
func AmericanToProbability(odds float64) (float64, error) {
	if odds == 0 {
		return 0, fmt.Errorf("%w: american odds cannot be zero", models.ErrInvalidOdds)
	}
	if odds > 0 {
		return 100 / (odds + 100), nil
	}
	return math.Abs(odds) / (math.Abs(odds) + 100), nil
}

// ProbabilityToDecimal converts a probability to decimal odds.
// Fails unless p is in the open interval (0, 1).
func ProbabilityToDecimal(p float64) (float64, error) {
	if p <= 0 || p >= 1 {
		return 0, fmt.Errorf("%w: got %v", models.ErrInvalidProbability, p)
	}
	return 1 / p, nil
}

// ProbabilityToAmerican converts a probability to American odds.
// Fails unless p is in the open interval (0, 1).
func ProbabilityToAmerican(p float64) (float64, error) {
	if p <= 0 || p >= 1 {
		return 0, fmt.Errorf("%w: got %v", models.ErrInvalidProbability, p)
	}
	if p >= 0.5 {
		return -p * 100 / (1 - p), nil
	}
	return (1-p)*100/p, nil
}

// ToProbability converts odds in the given format to an implied probability
func ToProbability(odds float64, format models.OddsFormat) (float64, error) {
	switch format {
	case models.OddsFormatAmerican:
		return AmericanToProbability(odds)
	default:
		return DecimalToProbability(odds)
	}
}

// ToDecimal converts odds in the given format to decimal odds
func ToDecimal(odds float64, format models.OddsFormat) (float64, error) {
	if format != models.OddsFormatAmerican {
		if odds <= 0 {
			return 0, fmt.Errorf("%w: decimal odds must be positive, got %v", models.ErrInvalidOdds, odds)
		}
		return odds, nil
	}
	p, err := AmericanToProbability(odds)
	if err != nil {
		return 0, err
	}
	return 1 / p, nil
}

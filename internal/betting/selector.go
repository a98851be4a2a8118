package betting

import (
	"time"

	"github.com/martofrog/tennis-predictions/internal/models"
	"github.com/martofrog/tennis-predictions/internal/odds"
)

// Selector reduces a raw value bet scan to one recommendation per match and
// sizes stakes with a fractional Kelly criterion.
type Selector struct {
	kellyFraction float64
}

// NewSelector creates a selector. kellyFraction scales the full Kelly stake;
// 0.25 is the conservative default.
func NewSelector(kellyFraction float64) *Selector {
	if kellyFraction <= 0 {
		kellyFraction = 0.25
	}
	return &Selector{kellyFraction: kellyFraction}
}

// SelectBestPerMatch keeps only the highest-EV bet for each match, keyed by
// the player pair so the same fixture from different providers collapses to
// one entry. Output order follows first appearance in the input, which makes
// the operation deterministic and idempotent.
func (s *Selector) SelectBestPerMatch(bets []models.ValueBet) []models.ValueBet {
	best := make(map[string]int)
	var order []string

	for i := range bets {
		key := bets[i].Key()
		existing, ok := best[key]
		if !ok {
			best[key] = i
			order = append(order, key)
			continue
		}
		if bets[i].ExpectedValuePercentage > bets[existing].ExpectedValuePercentage {
			best[key] = i
		}
	}

	selected := make([]models.ValueBet, 0, len(order))
	for _, key := range order {
		selected = append(selected, bets[best[key]])
	}
	return selected
}

// RecommendedStake returns the fraction of bankroll to stake on the bet, or
// nil when no stake can be recommended (non-positive edge or unusable odds).
func (s *Selector) RecommendedStake(bet *models.ValueBet) *float64 {
	if bet.EdgePercentage <= 0 {
		return nil
	}

	decimalOdds, err := odds.ToDecimal(bet.Odds, bet.OddsFormat)
	if err != nil {
		return nil
	}

	b := decimalOdds - 1
	if b <= 0 {
		return nil
	}

	p := bet.OurProbability
	q := 1 - p
	kelly := (b*p - q) / b
	if kelly < 0 {
		kelly = 0
	}

	stake := kelly * s.kellyFraction
	return &stake
}

// SizeStakes fills in RecommendedStake for every bet in place
func (s *Selector) SizeStakes(bets []models.ValueBet) {
	for i := range bets {
		bets[i].RecommendedStake = s.RecommendedStake(&bets[i])
	}
}

// FilterWindow keeps bets whose commence time falls in [start, end], both
// ends inclusive
func FilterWindow(bets []models.ValueBet, start, end time.Time) []models.ValueBet {
	filtered := make([]models.ValueBet, 0, len(bets))
	for _, bet := range bets {
		if bet.CommenceTime.Before(start) || bet.CommenceTime.After(end) {
			continue
		}
		filtered = append(filtered, bet)
	}
	return filtered
}

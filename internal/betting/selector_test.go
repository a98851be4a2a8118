package betting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martofrog/tennis-predictions/internal/models"
)

func valueBet(player1, player2, bookmaker string, ev float64) models.ValueBet {
	return models.ValueBet{
		Player1:                 player1,
		Player2:                 player2,
		BetOnPlayer:             player1,
		IsPlayer1Bet:            true,
		Bookmaker:               bookmaker,
		Odds:                    2.0,
		OddsFormat:              models.OddsFormatDecimal,
		OurProbability:          0.6,
		EdgePercentage:          10,
		ExpectedValuePercentage: ev,
	}
}

func TestSelectBestPerMatch(t *testing.T) {
	selector := NewSelector(0.25)

	bets := []models.ValueBet{
		valueBet("Ana Ash", "Bea Boone", "BookA", 8.0),
		valueBet("Ana Ash", "Bea Boone", "BookB", 12.0),
		valueBet("Cara Crest", "Dana Dale", "BookA", 6.0),
		// Same fixture with the players swapped still collapses
		valueBet("Bea Boone", "Ana Ash", "BookC", 10.0),
	}

	selected := selector.SelectBestPerMatch(bets)
	require.Len(t, selected, 2)
	assert.Equal(t, "BookB", selected[0].Bookmaker)
	assert.Equal(t, "Cara Crest", selected[1].Player1)
}

func TestSelectBestPerMatchIsIdempotent(t *testing.T) {
	selector := NewSelector(0.25)

	bets := []models.ValueBet{
		valueBet("Ana Ash", "Bea Boone", "BookA", 8.0),
		valueBet("Ana Ash", "Bea Boone", "BookB", 12.0),
	}

	once := selector.SelectBestPerMatch(bets)
	twice := selector.SelectBestPerMatch(once)
	assert.Equal(t, once, twice)
}

func TestRecommendedStake(t *testing.T) {
	selector := NewSelector(0.25)

	// p=0.6 at decimal 2.0: full Kelly is 0.2, quarter Kelly 0.05
	bet := valueBet("Ana Ash", "Bea Boone", "BookA", 20.0)
	stake := selector.RecommendedStake(&bet)
	require.NotNil(t, stake)
	assert.InDelta(t, 0.05, *stake, 1e-9)
}

func TestRecommendedStakeNonPositiveEdge(t *testing.T) {
	selector := NewSelector(0.25)

	bet := valueBet("Ana Ash", "Bea Boone", "BookA", -2.0)
	bet.EdgePercentage = -1

	assert.Nil(t, selector.RecommendedStake(&bet))
}

func TestRecommendedStakeNeverNegative(t *testing.T) {
	selector := NewSelector(0.25)

	// Positive probability edge but negative Kelly numerator
	bet := valueBet("Ana Ash", "Bea Boone", "BookA", -5.0)
	bet.OurProbability = 0.45
	bet.Odds = 2.0

	stake := selector.RecommendedStake(&bet)
	require.NotNil(t, stake)
	assert.Equal(t, 0.0, *stake)
}

func TestFilterWindow(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	inWindow := valueBet("Ana Ash", "Bea Boone", "BookA", 8.0)
	inWindow.CommenceTime = now.Add(2 * time.Hour)
	tooLate := valueBet("Cara Crest", "Dana Dale", "BookA", 8.0)
	tooLate.CommenceTime = now.Add(30 * time.Hour)
	alreadyStarted := valueBet("Eva Elm", "Fay Fern", "BookA", 8.0)
	alreadyStarted.CommenceTime = now.Add(-time.Hour)

	filtered := FilterWindow([]models.ValueBet{inWindow, tooLate, alreadyStarted}, now, now.Add(24*time.Hour))
	require.Len(t, filtered, 1)
	assert.Equal(t, "Ana Ash", filtered[0].Player1)
}

func TestFilterWindowIncludesBothEnds(t *testing.T) {
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	atStart := valueBet("Ana Ash", "Bea Boone", "BookA", 8.0)
	atStart.CommenceTime = start
	atEnd := valueBet("Cara Crest", "Dana Dale", "BookA", 8.0)
	atEnd.CommenceTime = end

	filtered := FilterWindow([]models.ValueBet{atStart, atEnd}, start, end)
	assert.Len(t, filtered, 2)
}

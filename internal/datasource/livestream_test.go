package datasource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreUpdateResult(t *testing.T) {
	when := time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC)

	t.Run("player one wins", func(t *testing.T) {
		update := ScoreUpdate{
			Player1:   "ana  ash",
			Player2:   "Bea Boone",
			Score:     "6-4 7-6(5)",
			Status:    "finished",
			Timestamp: when,
		}

		record, ok := update.Result()
		require.True(t, ok)
		assert.Equal(t, "Ana Ash", record.Winner)
		assert.Equal(t, "Bea Boone", record.Loser)
		assert.Equal(t, "6-4 7-6(5)", record.WinnerScore)
		assert.Equal(t, "4-6 6(5)-7", record.LoserScore)
		assert.Equal(t, when, record.MatchDate)
	})

	t.Run("player two wins", func(t *testing.T) {
		update := ScoreUpdate{
			Player1:   "Ana Ash",
			Player2:   "Bea Boone",
			Score:     "4-6 6-3 3-6",
			Status:    "finished",
			Timestamp: when,
		}

		record, ok := update.Result()
		require.True(t, ok)
		assert.Equal(t, "Bea Boone", record.Winner)
		assert.Equal(t, "Ana Ash", record.Loser)
		assert.Equal(t, "6-4 3-6 6-3", record.WinnerScore)
		assert.Equal(t, "4-6 6-3 3-6", record.LoserScore)
	})

	t.Run("not finished", func(t *testing.T) {
		update := ScoreUpdate{Player1: "Ana Ash", Player2: "Bea Boone", Score: "6-4", Status: "in_progress", Timestamp: when}
		_, ok := update.Result()
		assert.False(t, ok)
	})

	t.Run("undecided score", func(t *testing.T) {
		update := ScoreUpdate{Player1: "Ana Ash", Player2: "Bea Boone", Score: "6-4 4-6", Status: "finished", Timestamp: when}
		_, ok := update.Result()
		assert.False(t, ok)
	})
}

func TestTrimTiebreak(t *testing.T) {
	assert.Equal(t, "6", trimTiebreak("6(5)"))
	assert.Equal(t, "7", trimTiebreak("7"))
}

package rating

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martofrog/tennis-predictions/internal/models"
)

type memoryRepo struct {
	snapshot *models.RatingsSnapshot
	saved    *models.RatingsSnapshot
}

func (m *memoryRepo) Load(ctx context.Context) (*models.RatingsSnapshot, error) {
	if m.snapshot == nil {
		return models.NewRatingsSnapshot(), nil
	}
	return m.snapshot, nil
}

func (m *memoryRepo) Save(ctx context.Context, snapshot *models.RatingsSnapshot) error {
	m.saved = snapshot
	return nil
}

func (m *memoryRepo) Exists(ctx context.Context) (bool, error) {
	return m.snapshot != nil, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestEngine(t *testing.T, repo *memoryRepo) *Engine {
	t.Helper()
	if repo == nil {
		repo = &memoryRepo{}
	}
	engine, err := NewEngine(context.Background(), DefaultConfig(), repo, quietLogger())
	require.NoError(t, err)
	// Pin the clock so read-time decay is deterministic
	engine.SetClock(func() time.Time { return date(2024, 12, 31) })
	return engine
}

func snapshotWith(players map[string]models.PlayerRating) *models.RatingsSnapshot {
	snapshot := models.NewRatingsSnapshot()
	for name, pr := range players {
		snapshot.Players[name] = pr
	}
	snapshot.Meta.TotalPlayers = len(players)
	return snapshot
}

func TestGetRatingUnknownPlayer(t *testing.T) {
	engine := newTestEngine(t, nil)

	assert.Equal(t, 1500.0, engine.GetRating("Nobody Known", models.SurfaceHard))
}

func TestGetRatingNormalizesNames(t *testing.T) {
	engine := newTestEngine(t, nil)
	engine.SetClock(func() time.Time { return date(2024, 6, 1) })
	engine.Apply("Rafael Nadal", "Some Guy", "6-0 6-0", "0-6 0-6", models.SurfaceClay, date(2024, 5, 1))

	r1 := engine.GetRating("rafael  nadal", models.SurfaceClay)
	r2 := engine.GetRating("RAFAEL NADAL", models.SurfaceClay)
	assert.Equal(t, r1, r2)
	assert.Greater(t, r1, 1500.0)
}

func TestApplyStraightSetsAgainstNewcomer(t *testing.T) {
	repo := &memoryRepo{snapshot: snapshotWith(map[string]models.PlayerRating{
		"Alex Alder": {Player: "Alex Alder", Overall: 1600},
	})}
	engine := newTestEngine(t, repo)

	winnerRating, loserRating := engine.Apply("Alex Alder", "Ben Birch", "6-4 6-3", "4-6 3-6",
		models.SurfaceHard, date(2024, 3, 10))

	// Newcomer seeds at 1550 against a 1600 opponent; expected score for the
	// favorite is 1/(1+10^-0.125) and the straight-sets multiplier is 1.2.
	assert.InDelta(t, 1616.46, winnerRating, 0.05)
	assert.InDelta(t, 1533.54, loserRating, 0.05)
}

func TestApplyIsZeroSum(t *testing.T) {
	repo := &memoryRepo{snapshot: snapshotWith(map[string]models.PlayerRating{
		"Alex Alder": {Player: "Alex Alder", Overall: 1720},
		"Ben Birch":  {Player: "Ben Birch", Overall: 1580},
	})}
	engine := newTestEngine(t, repo)
	engine.SetClock(func() time.Time { return date(2024, 7, 1) })

	before := engine.GetRating("Alex Alder", "") + engine.GetRating("Ben Birch", "")
	engine.Apply("Ben Birch", "Alex Alder", "7-5 4-6 6-4", "5-7 6-4 4-6",
		models.SurfaceGrass, date(2024, 6, 20))
	after := engine.GetRating("Alex Alder", models.SurfaceGrass) + engine.GetRating("Ben Birch", models.SurfaceGrass)

	assert.InDelta(t, before, after, 1e-9)
}

func TestApplyBothPlayersNew(t *testing.T) {
	engine := newTestEngine(t, nil)

	winnerRating, loserRating := engine.Apply("Cara Crest", "Dana Dale", "6-2 6-2", "2-6 2-6",
		models.SurfaceHard, date(2024, 1, 5))

	// Both seed at the default 1500, expected score 0.5, multiplier 1.2
	assert.InDelta(t, 1519.2, winnerRating, 1e-9)
	assert.InDelta(t, 1480.8, loserRating, 1e-9)
}

func TestNewcomerSeedingTiers(t *testing.T) {
	tests := []struct {
		name           string
		opponentRating float64
		wantFinal      float64
	}{
		{name: "elite opponent", opponentRating: 2250, wantFinal: 1895.48},
		{name: "strong opponent", opponentRating: 2000, wantFinal: 1694.20},
		{name: "established opponent", opponentRating: 1800, wantFinal: 1590.77},
		{name: "above average opponent", opponentRating: 1650, wantFinal: 1536.18},
		{name: "average opponent", opponentRating: 1500, wantFinal: 1480.80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memoryRepo{snapshot: snapshotWith(map[string]models.PlayerRating{
				"Known Player": {Player: "Known Player", Overall: tt.opponentRating},
			})}
			engine := newTestEngine(t, repo)

			_, newcomerRating := engine.Apply("Known Player", "Fresh Face", "6-1 6-2", "1-6 2-6",
				models.SurfaceHard, date(2024, 2, 1))

			assert.InDelta(t, tt.wantFinal, newcomerRating, 0.05)
		})
	}
}

func TestSurfaceRatingsDivergeFromOverall(t *testing.T) {
	engine := newTestEngine(t, nil)

	engine.Apply("Eva Elm", "Fay Fern", "6-3 6-3", "3-6 3-6", models.SurfaceClay, date(2024, 4, 1))
	engine.Apply("Fay Fern", "Eva Elm", "6-3 6-3", "3-6 3-6", models.SurfaceGrass, date(2024, 6, 1))

	assert.True(t, engine.HasSurfaceRating("Eva Elm", models.SurfaceClay))
	assert.True(t, engine.HasSurfaceRating("Eva Elm", models.SurfaceGrass))
	assert.False(t, engine.HasSurfaceRating("Eva Elm", models.SurfaceHard))

	clay := engine.GetRating("Eva Elm", models.SurfaceClay)
	grass := engine.GetRating("Eva Elm", models.SurfaceGrass)
	assert.Greater(t, clay, grass)
}

func TestPredictMatchSurfaceAdvantage(t *testing.T) {
	engine := newTestEngine(t, nil)

	// Gia gets clay history, Hope gets none
	engine.Apply("Gia Glen", "Warmup Opponent", "6-4 6-4", "4-6 4-6", models.SurfaceClay, date(2024, 4, 1))
	engine.Apply("Hope Hill", "Other Opponent", "6-4 6-4", "4-6 4-6", models.SurfaceHard, date(2024, 4, 2))

	onClay1, _ := engine.PredictMatch("Gia Glen", "Hope Hill", models.SurfaceClay)
	onHard1, _ := engine.PredictMatch("Gia Glen", "Hope Hill", models.SurfaceHard)

	// Clay history pushes Gia's clay forecast above her hard-court one,
	// where the half surface advantage goes to Hope instead.
	assert.Greater(t, onClay1, onHard1)
}

func TestPredictMatchProbabilitiesSumToOne(t *testing.T) {
	engine := newTestEngine(t, nil)
	engine.Apply("Ivy Oak", "June Lake", "6-0 6-0", "0-6 0-6", models.SurfaceHard, date(2024, 1, 1))

	p1, p2 := engine.PredictMatch("Ivy Oak", "June Lake", models.SurfaceHard)
	assert.InDelta(t, 1.0, p1+p2, 1e-12)
	assert.Greater(t, p1, p2)
}

func TestInactivityDecay(t *testing.T) {
	lastMatch := date(2025, 1, 15)
	repo := &memoryRepo{snapshot: snapshotWith(map[string]models.PlayerRating{
		"Idle Player": {Player: "Idle Player", Overall: 1600, LastMatchDate: &lastMatch},
	})}
	engine := newTestEngine(t, repo)

	// Inside the three month grace period: no decay
	engine.SetClock(func() time.Time { return date(2025, 4, 10) })
	assert.Equal(t, 1600.0, engine.GetRating("Idle Player", ""))

	// Five calendar months out: two months past grace at 1.5% per month
	engine.SetClock(func() time.Time { return date(2025, 6, 10) })
	assert.InDelta(t, 1600*0.985*0.985, engine.GetRating("Idle Player", ""), 1e-9)
}

func TestDecayIsMonotonicAndFloored(t *testing.T) {
	lastMatch := date(2020, 1, 15)
	repo := &memoryRepo{snapshot: snapshotWith(map[string]models.PlayerRating{
		"Idle Player": {Player: "Idle Player", Overall: 1600, LastMatchDate: &lastMatch},
	})}
	engine := newTestEngine(t, repo)

	previous := 1600.0
	for months := 1; months <= 120; months++ {
		clock := date(2020, 1, 15).AddDate(0, months, 0)
		engine.SetClock(func() time.Time { return clock })

		current := engine.GetRating("Idle Player", "")
		assert.LessOrEqual(t, current, previous)
		assert.GreaterOrEqual(t, current, 1200.0)
		previous = current
	}

	// A decade out the floor has long been reached
	assert.Equal(t, 1200.0, previous)
}

func TestDecayDoesNotTouchStoredState(t *testing.T) {
	lastMatch := date(2024, 1, 15)
	repo := &memoryRepo{snapshot: snapshotWith(map[string]models.PlayerRating{
		"Idle Player": {Player: "Idle Player", Overall: 1600, LastMatchDate: &lastMatch},
	})}
	engine := newTestEngine(t, repo)
	engine.SetClock(func() time.Time { return date(2025, 1, 15) })

	require.Less(t, engine.GetRating("Idle Player", ""), 1600.0)

	// The persisted snapshot still carries the undecayed value
	snapshot := engine.Snapshot()
	assert.Equal(t, 1600.0, snapshot.Players["Idle Player"].Overall)
}

func TestSnapshotRoundTrip(t *testing.T) {
	repo := &memoryRepo{}
	engine := newTestEngine(t, repo)

	engine.Apply("Kai Reed", "Lee Shaw", "6-4 6-4", "4-6 4-6", models.SurfaceHard, date(2024, 8, 1))
	engine.Apply("Kai Reed", "Max Tate", "7-5 2-6 6-3", "5-7 6-2 3-6", models.SurfaceClay, date(2024, 8, 8))

	require.NoError(t, engine.Save(context.Background()))
	require.NotNil(t, repo.saved)
	assert.Equal(t, 3, repo.saved.Meta.TotalPlayers)
	assert.Equal(t, date(2024, 8, 8), repo.saved.Meta.LastUpdate)

	// Restoring from the saved snapshot reproduces the same ratings
	restored, err := NewEngine(context.Background(), DefaultConfig(), &memoryRepo{snapshot: repo.saved}, quietLogger())
	require.NoError(t, err)
	restored.SetClock(func() time.Time { return date(2024, 12, 31) })
	for _, surface := range []models.Surface{"", models.SurfaceHard, models.SurfaceClay} {
		assert.Equal(t,
			engine.GetRating("Kai Reed", surface),
			restored.GetRating("Kai Reed", surface))
	}
	assert.Equal(t, engine.LastProcessed(), restored.LastProcessed())
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	engine := newTestEngine(t, nil)
	engine.Apply("Nia Vale", "Ora West", "6-2 6-2", "2-6 2-6", models.SurfaceHard, date(2024, 3, 1))

	snapshot := engine.Snapshot()
	snapshot.Players["Nia Vale"].SurfaceRatings[models.SurfaceHard] = 9999

	assert.NotEqual(t, 9999.0, engine.GetRating("Nia Vale", models.SurfaceHard))
}

func TestLastProcessedTracksLatestDate(t *testing.T) {
	engine := newTestEngine(t, nil)

	engine.Apply("Pam Yule", "Quin Zane", "6-1 6-1", "1-6 1-6", models.SurfaceHard, date(2024, 5, 10))
	engine.Apply("Quin Zane", "Pam Yule", "6-1 6-1", "1-6 1-6", models.SurfaceHard, date(2024, 5, 12))

	assert.Equal(t, date(2024, 5, 12), engine.LastProcessed())
}

func TestAllRatingsSorted(t *testing.T) {
	engine := newTestEngine(t, nil)
	engine.Apply("Ace Player", "Base Player", "6-0 6-0", "0-6 0-6", models.SurfaceHard, date(2024, 1, 1))

	all := engine.AllRatings("")
	assert.Len(t, all, 2)
	assert.Greater(t, all["Ace Player"], all["Base Player"])
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

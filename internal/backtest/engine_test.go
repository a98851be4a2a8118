package backtest

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martofrog/tennis-predictions/internal/models"
	"github.com/martofrog/tennis-predictions/internal/rating"
)

type stubMatchRepo struct {
	records []models.MatchRecord
}

func (r *stubMatchRepo) LoadMatches(ctx context.Context, years []int, tour models.Tour) ([]models.MatchRecord, error) {
	return r.records, nil
}

func (r *stubMatchRepo) SaveMatches(ctx context.Context, records []models.MatchRecord, year int, tour models.Tour) error {
	return nil
}

func (r *stubMatchRepo) GetByDate(ctx context.Context, date time.Time, tour models.Tour) ([]models.MatchRecord, error) {
	return nil, nil
}

func (r *stubMatchRepo) Exists(ctx context.Context, year int, tour models.Tour) (bool, error) {
	return false, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// dominantHistory has one player beating everyone repeatedly, so post-warmup
// forecasts favor the dominant player and score well.
func dominantHistory(n int) []models.MatchRecord {
	records := make([]models.MatchRecord, 0, n)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	opponents := []string{"Bea Boone", "Cara Cole", "Dee Dunn"}
	for i := 0; i < n; i++ {
		records = append(records, models.MatchRecord{
			Winner:      "Ana Ash",
			Loser:       opponents[i%len(opponents)],
			WinnerScore: "6-4 6-3",
			LoserScore:  "4-6 3-6",
			Surface:     models.SurfaceHard,
			Tour:        models.TourWTA,
			MatchDate:   base.AddDate(0, 0, i),
		})
	}
	return records
}

func TestRunScoresPostWarmupForecasts(t *testing.T) {
	cfg := Config{WarmupMatches: 10, CalibrationBuckets: 10}
	engine, err := NewEngine(cfg, rating.DefaultConfig(), &stubMatchRepo{records: dominantHistory(30)}, quietLogger())
	require.NoError(t, err)

	report, err := engine.Run(context.Background(), nil, models.TourWTA)
	require.NoError(t, err)

	assert.Equal(t, 10, report.WarmupMatches)
	assert.Equal(t, 20, report.MatchesEvaluated)
	// After 10 one-sided warmup matches the dominant player is always the
	// model favorite, so every evaluated forecast is correct.
	assert.Equal(t, 20, report.Correct)
	assert.Equal(t, 1.0, report.Accuracy)
	assert.Less(t, report.BrierScore, 0.25, "forecasts beat a coin flip")
	assert.True(t, report.LastMatch.After(report.FirstMatch))
}

func TestRunSkipsMalformedRecords(t *testing.T) {
	records := dominantHistory(5)
	records[2].Winner = ""

	engine, err := NewEngine(Config{WarmupMatches: 0, CalibrationBuckets: 5}, rating.DefaultConfig(), &stubMatchRepo{records: records}, quietLogger())
	require.NoError(t, err)

	report, err := engine.Run(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, 4, report.MatchesEvaluated)
}

func TestRunEmptyHistory(t *testing.T) {
	engine, err := NewEngine(DefaultConfig(), rating.DefaultConfig(), &stubMatchRepo{}, quietLogger())
	require.NoError(t, err)

	report, err := engine.Run(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Zero(t, report.MatchesEvaluated)
	assert.Zero(t, report.Accuracy)
}

func TestCalibrationBucketsPartitionForecasts(t *testing.T) {
	card := newScorecard(4)
	card.record(0.9, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))  // favorite bucket [0.75, 1)
	card.record(0.55, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)) // favorite bucket [0.5, 0.75)
	card.record(0.3, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC))  // favorite (0.7) bucket [0.5, 0.75), upset

	report := card.report(0)
	require.Len(t, report.Calibration, 4)

	total := 0
	for _, bucket := range report.Calibration {
		total += bucket.Count
	}
	assert.Equal(t, 3, total)

	mid := report.Calibration[2] // [0.5, 0.75)
	assert.Equal(t, 2, mid.Count)
	assert.InDelta(t, 0.5, mid.ActualRate, 1e-9, "one favorite won, one lost")

	top := report.Calibration[3] // [0.75, 1)
	assert.Equal(t, 1, top.Count)
	assert.Equal(t, 1.0, top.ActualRate)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{WarmupMatches: -1, CalibrationBuckets: 10}.Validate())
	assert.Error(t, Config{WarmupMatches: 0, CalibrationBuckets: 0}.Validate())
}

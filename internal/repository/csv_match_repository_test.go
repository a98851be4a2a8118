package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martofrog/tennis-predictions/internal/models"
)

func matchRecord(winner, loser string, date time.Time, tour models.Tour) models.MatchRecord {
	return models.MatchRecord{
		Winner:      winner,
		Loser:       loser,
		WinnerScore: "6-4 6-3",
		LoserScore:  "4-6 3-6",
		Surface:     models.SurfaceHard,
		Tour:        tour,
		MatchDate:   date,
	}
}

func TestSaveAndLoadMatches(t *testing.T) {
	repo := NewCSVMatchRepository(t.TempDir())
	ctx := context.Background()

	records := []models.MatchRecord{
		matchRecord("Ana Ash", "Bea Boone", time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), models.TourWTA),
		matchRecord("Cara Cole", "Ana Ash", time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), models.TourWTA),
	}
	require.NoError(t, repo.SaveMatches(ctx, records, 2025, models.TourWTA))

	loaded, err := repo.LoadMatches(ctx, []int{2025}, models.TourWTA)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// Sorted chronologically regardless of write order
	assert.Equal(t, "Cara Cole", loaded[0].Winner)
	assert.Equal(t, "Ana Ash", loaded[1].Winner)
	assert.Equal(t, "6-4 6-3", loaded[1].WinnerScore)
	assert.Equal(t, "4-6 3-6", loaded[1].LoserScore)
	assert.Equal(t, models.SurfaceHard, loaded[0].Surface)
	assert.Equal(t, models.TourWTA, loaded[0].Tour)
}

func TestLoadMatchesBothTours(t *testing.T) {
	repo := NewCSVMatchRepository(t.TempDir())
	ctx := context.Background()

	require.NoError(t, repo.SaveMatches(ctx, []models.MatchRecord{
		matchRecord("Al Amos", "Bo Byrne", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), models.TourATP),
	}, 2025, models.TourATP))
	require.NoError(t, repo.SaveMatches(ctx, []models.MatchRecord{
		matchRecord("Ana Ash", "Bea Boone", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), models.TourWTA),
	}, 2025, models.TourWTA))

	loaded, err := repo.LoadMatches(ctx, []int{2025}, "")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Ana Ash", loaded[0].Winner)
	assert.Equal(t, "Al Amos", loaded[1].Winner)
}

func TestLoadMatchesNilYearsDiscoversFiles(t *testing.T) {
	repo := NewCSVMatchRepository(t.TempDir())
	ctx := context.Background()

	for _, year := range []int{2023, 2024} {
		require.NoError(t, repo.SaveMatches(ctx, []models.MatchRecord{
			matchRecord("Al Amos", "Bo Byrne", time.Date(year, 5, 5, 0, 0, 0, 0, time.UTC), models.TourATP),
		}, year, models.TourATP))
	}

	loaded, err := repo.LoadMatches(ctx, nil, models.TourATP)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, 2023, loaded[0].MatchDate.Year())
	assert.Equal(t, 2024, loaded[1].MatchDate.Year())
}

func TestLoadMatchesMissingYearIsEmpty(t *testing.T) {
	repo := NewCSVMatchRepository(t.TempDir())

	loaded, err := repo.LoadMatches(context.Background(), []int{1999}, models.TourATP)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestLoadNormalizesPlayerNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "atp", "atp_matches_2025.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	raw := "date,tour,winner,loser,winner_score,loser_score,surface\n" +
		"2025-04-01,atp,AL  AMOS,bo byrne,6-2 6-2,2-6 2-6,clay\n" +
		"bad-date,atp,Cara Cole,Dee Dunn,6-0 6-0,0-6 0-6,clay\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	loaded, err := NewCSVMatchRepository(dir).LoadMatches(context.Background(), []int{2025}, models.TourATP)
	require.NoError(t, err)
	require.Len(t, loaded, 1, "undated rows are skipped")
	assert.Equal(t, models.NormalizePlayerName("AL  AMOS"), loaded[0].Winner)
	assert.Equal(t, models.NormalizePlayerName("bo byrne"), loaded[0].Loser)
	assert.Equal(t, models.SurfaceClay, loaded[0].Surface)
}

func TestGetByDate(t *testing.T) {
	repo := NewCSVMatchRepository(t.TempDir())
	ctx := context.Background()

	day := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveMatches(ctx, []models.MatchRecord{
		matchRecord("Al Amos", "Bo Byrne", day, models.TourATP),
		matchRecord("Cara Cole", "Dee Dunn", day.AddDate(0, 0, 1), models.TourATP),
	}, 2025, models.TourATP))
	// Previous season is scanned too
	require.NoError(t, repo.SaveMatches(ctx, []models.MatchRecord{
		matchRecord("Ed Egan", "Fay Ford", time.Date(2024, 7, 14, 0, 0, 0, 0, time.UTC), models.TourATP),
	}, 2024, models.TourATP))

	matches, err := repo.GetByDate(ctx, day, models.TourATP)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Al Amos", matches[0].Winner)
}

func TestMatchFileExists(t *testing.T) {
	repo := NewCSVMatchRepository(t.TempDir())
	ctx := context.Background()

	exists, err := repo.Exists(ctx, 2025, models.TourATP)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.SaveMatches(ctx, nil, 2025, models.TourATP))

	exists, err = repo.Exists(ctx, 2025, models.TourATP)
	require.NoError(t, err)
	assert.True(t, exists)
}

package datasource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martofrog/tennis-predictions/internal/models"
)

type stubSource struct {
	name    string
	enabled bool
	matches []models.MatchRecord
	err     error
	calls   int
}

func (s *stubSource) Name() string    { return s.name }
func (s *stubSource) IsEnabled() bool { return s.enabled }

func (s *stubSource) FetchMatches(ctx context.Context, year int, tour models.Tour) ([]models.MatchRecord, error) {
	s.calls++
	return s.matches, s.err
}

func (s *stubSource) FetchMatchesByDate(ctx context.Context, date time.Time) ([]models.MatchRecord, error) {
	s.calls++
	return s.matches, s.err
}

func TestFallbackUsesFirstEnabledSource(t *testing.T) {
	disabled := &stubSource{name: "a", enabled: false}
	primary := &stubSource{name: "b", enabled: true, matches: []models.MatchRecord{{Winner: "Ana Ash", Loser: "Bea Boone"}}}
	secondary := &stubSource{name: "c", enabled: true}

	fallback := NewFallbackSource([]ResultsSource{disabled, primary, secondary}, testLogger())
	matches, err := fallback.FetchMatches(context.Background(), 2026, models.TourATP)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	assert.Equal(t, 0, disabled.calls)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls, "later sources are not consulted after a success")
}

func TestFallbackAdvancesOnError(t *testing.T) {
	failing := &stubSource{name: "a", enabled: true, err: errors.New("connection refused")}
	working := &stubSource{name: "b", enabled: true, matches: []models.MatchRecord{{Winner: "Ana Ash", Loser: "Bea Boone"}}}

	fallback := NewFallbackSource([]ResultsSource{failing, working}, testLogger())
	matches, err := fallback.FetchMatchesByDate(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, working.calls)
}

func TestFallbackEmptyResultIsSuccess(t *testing.T) {
	empty := &stubSource{name: "a", enabled: true}
	untouched := &stubSource{name: "b", enabled: true, matches: []models.MatchRecord{{Winner: "X", Loser: "Y"}}}

	fallback := NewFallbackSource([]ResultsSource{empty, untouched}, testLogger())
	matches, err := fallback.FetchMatches(context.Background(), 2026, models.TourATP)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, 0, untouched.calls, "zero matches is an answer, not a failure")
}

func TestFallbackReturnsLastError(t *testing.T) {
	first := &stubSource{name: "a", enabled: true, err: errors.New("first failure")}
	last := &stubSource{name: "b", enabled: true, err: errors.New("last failure")}

	fallback := NewFallbackSource([]ResultsSource{first, last}, testLogger())
	_, err := fallback.FetchMatches(context.Background(), 2026, models.TourATP)
	require.Error(t, err)
	assert.EqualError(t, err, "last failure")
}

func TestFallbackNoEnabledSources(t *testing.T) {
	fallback := NewFallbackSource([]ResultsSource{&stubSource{name: "a", enabled: false}}, testLogger())
	_, err := fallback.FetchMatches(context.Background(), 2026, models.TourATP)
	require.ErrorIs(t, err, models.ErrNoProviders)
	assert.False(t, fallback.IsEnabled())
}

func TestFallbackHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &stubSource{name: "a", enabled: true}
	fallback := NewFallbackSource([]ResultsSource{source}, testLogger())
	_, err := fallback.FetchMatches(ctx, 2026, models.TourATP)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, source.calls)
}

package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRatings struct {
	players int
	last    time.Time
}

func (s *stubRatings) PlayerCount() int          { return s.players }
func (s *stubRatings) LastProcessed() time.Time  { return s.last }

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(ctx context.Context) error { return s.err }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestHandleHealth(t *testing.T) {
	server := NewServer(Config{ServiceName: "tennis-predictions", Version: "test", Logger: quietLogger()})

	rec := httptest.NewRecorder()
	server.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "tennis-predictions", response.Service)
	assert.Equal(t, "test", response.Version)
}

func TestHandleReadyNotReadyUntilSet(t *testing.T) {
	server := NewServer(Config{ServiceName: "tennis-predictions", Logger: quietLogger()})

	rec := httptest.NewRecorder()
	server.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	server.SetReady(true)
	rec = httptest.NewRecorder()
	server.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleReadyEmptyRatings(t *testing.T) {
	server := NewServer(Config{
		ServiceName: "tennis-predictions",
		Logger:      quietLogger(),
		Ratings:     &stubRatings{players: 0},
	})
	server.SetReady(true)

	rec := httptest.NewRecorder()
	server.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var response ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "empty", response.Checks["ratings"])
}

func TestHandleReadyWithRatingsAndDatabase(t *testing.T) {
	server := NewServer(Config{
		ServiceName: "tennis-predictions",
		Logger:      quietLogger(),
		Ratings:     &stubRatings{players: 1200, last: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)},
		DB:          &stubPinger{},
	})
	server.SetReady(true)

	rec := httptest.NewRecorder()
	server.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var response ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "ok", response.Checks["database"])
	assert.Contains(t, response.Checks["ratings"], "1200 players")
	assert.Contains(t, response.Checks["ratings"], "2026-08-30")
}

func TestHandleReadyDatabaseDown(t *testing.T) {
	server := NewServer(Config{
		ServiceName: "tennis-predictions",
		Logger:      quietLogger(),
		Ratings:     &stubRatings{players: 10, last: time.Now()},
		DB:          &stubPinger{err: errors.New("connection refused")},
	})
	server.SetReady(true)

	rec := httptest.NewRecorder()
	server.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

package datasource

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/martofrog/tennis-predictions/internal/models"
)

const statusFinished = "finished"

// ScoreUpdate is a live score event from the stream
type ScoreUpdate struct {
	MatchID   string    `json:"match_id"`
	Player1   string    `json:"player1"`
	Player2   string    `json:"player2"`
	Score     string    `json:"score"`
	Status    string    `json:"status"` // "in_progress", "finished", "suspended"
	Timestamp time.Time `json:"timestamp"`
}

// Result converts a finished update into a match record. The score lists
// Player1's games first in each set, so the winner is whichever side took
// more sets. Updates that are not finished, or whose score does not decide
// a winner, produce no record.
func (u ScoreUpdate) Result() (models.MatchRecord, bool) {
	if u.Status != statusFinished {
		return models.MatchRecord{}, false
	}

	p1Sets, p2Sets := 0, 0
	for _, set := range strings.Fields(u.Score) {
		parts := strings.SplitN(set, "-", 2)
		if len(parts) != 2 {
			continue
		}
		g1, err1 := strconv.Atoi(trimTiebreak(parts[0]))
		g2, err2 := strconv.Atoi(trimTiebreak(parts[1]))
		if err1 != nil || err2 != nil {
			continue
		}
		switch {
		case g1 > g2:
			p1Sets++
		case g2 > g1:
			p2Sets++
		}
	}
	if p1Sets == p2Sets {
		return models.MatchRecord{}, false
	}

	record := models.MatchRecord{
		Winner:      models.NormalizePlayerName(u.Player1),
		Loser:       models.NormalizePlayerName(u.Player2),
		WinnerScore: u.Score,
		LoserScore:  flipScore(u.Score),
		MatchDate:   u.Timestamp,
	}
	if p2Sets > p1Sets {
		record.Winner, record.Loser = record.Loser, record.Winner
		record.WinnerScore, record.LoserScore = record.LoserScore, record.WinnerScore
	}
	return record, true
}

// trimTiebreak drops a trailing tiebreak annotation, "6(5)" -> "6".
func trimTiebreak(games string) string {
	if i := strings.IndexByte(games, '('); i >= 0 {
		return games[:i]
	}
	return games
}

// ScoreHandler is called for each score update received from the stream
type ScoreHandler func(update ScoreUpdate) error

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// LiveScoreStream maintains a WebSocket connection to a live score feed and
// dispatches updates to registered handlers. Finished matches arriving on the
// stream can be fed straight into the rating pipeline.
type LiveScoreStream struct {
	url             string
	reconnectConfig ReconnectConfig
	logger          *logrus.Logger

	mu              sync.RWMutex
	conn            *websocket.Conn
	isConnected     bool
	handlers        []ScoreHandler
	lastMessageTime time.Time
}

// NewLiveScoreStream creates a new live score stream client
func NewLiveScoreStream(url string, logger *logrus.Logger) *LiveScoreStream {
	return &LiveScoreStream{
		url:             url,
		reconnectConfig: DefaultReconnectConfig(),
		logger:          logger,
		handlers:        make([]ScoreHandler, 0),
	}
}

// Connect establishes the WebSocket connection and starts the read loop
func (s *LiveScoreStream) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isConnected {
		return fmt.Errorf("already connected")
	}

	s.logger.WithField("url", s.url).Info("Connecting to live score stream")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to stream: %w", err)
	}

	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()

	go s.readMessages(ctx)
	return nil
}

// AddHandler registers a score update handler
func (s *LiveScoreStream) AddHandler(handler ScoreHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// readMessages reads updates until the connection drops, then reconnects
// with exponential backoff.
func (s *LiveScoreStream) readMessages(ctx context.Context) {
	for {
		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()
		if conn == nil {
			return
		}

		var update ScoreUpdate
		if err := conn.ReadJSON(&update); err != nil {
			s.mu.Lock()
			s.isConnected = false
			s.mu.Unlock()

			if ctx.Err() != nil {
				return
			}
			s.logger.WithError(err).Warn("Live stream read failed, reconnecting")
			if !s.reconnect(ctx) {
				return
			}
			continue
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		handlers := s.handlers
		s.mu.Unlock()

		for _, handler := range handlers {
			if err := handler(update); err != nil {
				s.logger.WithError(err).Warn("Score handler error")
			}
		}
	}
}

// reconnect retries the connection per the reconnect config. Returns false
// when retries are exhausted or the context is done.
func (s *LiveScoreStream) reconnect(ctx context.Context) bool {
	backoff := s.reconnectConfig.InitialBackoff

	for attempt := 1; attempt <= s.reconnectConfig.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}

		dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
		conn, _, err := dialer.DialContext(ctx, s.url, nil)
		if err == nil {
			s.mu.Lock()
			s.conn = conn
			s.isConnected = true
			s.lastMessageTime = time.Now()
			s.mu.Unlock()
			s.logger.WithField("attempt", attempt).Info("Live stream reconnected")
			return true
		}

		s.logger.WithFields(logrus.Fields{
			"attempt": attempt,
			"backoff": backoff.String(),
		}).Warn("Live stream reconnect failed")

		backoff = time.Duration(float64(backoff) * s.reconnectConfig.BackoffMultiplier)
		if backoff > s.reconnectConfig.MaxBackoff {
			backoff = s.reconnectConfig.MaxBackoff
		}
	}

	s.logger.Error("Live stream reconnect attempts exhausted")
	return false
}

// IsConnected returns whether the stream is connected
func (s *LiveScoreStream) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// LastMessageTime returns the time of the last received message
func (s *LiveScoreStream) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

// Close closes the stream connection
func (s *LiveScoreStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	s.isConnected = false
	return s.conn.Close()
}

// Package api exposes predictions, rankings and value bets as a thin JSON
// HTTP surface.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/martofrog/tennis-predictions/internal/betting"
	"github.com/martofrog/tennis-predictions/internal/models"
	"github.com/martofrog/tennis-predictions/internal/service"
)

// Server serves the read-only prediction API
type Server struct {
	predictions *service.PredictionService
	bets        *betting.Service
	sports      []string
	minEdge     float64
	logger      *logrus.Logger
	server      *http.Server
}

// Config holds the API server configuration
type Config struct {
	Port        string
	Predictions *service.PredictionService
	Bets        *betting.Service
	Sports      []string
	MinEdge     float64
	Logger      *logrus.Logger
}

// NewServer creates an API server
func NewServer(cfg Config) *Server {
	return &Server{
		predictions: cfg.Predictions,
		bets:        cfg.Bets,
		sports:      cfg.Sports,
		minEdge:     cfg.MinEdge,
		logger:      cfg.Logger,
		server: &http.Server{
			Addr:         ":" + cfg.Port,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/prediction", s.handlePrediction)
	mux.HandleFunc("/v1/rankings", s.handleRankings)
	mux.HandleFunc("/v1/value-bets", s.handleValueBets)
	return mux
}

// Start runs the server in the background and shuts it down when the
// context is cancelled.
func (s *Server) Start(ctx context.Context) {
	s.server.Handler = s.Handler()

	go func() {
		s.logger.WithField("addr", s.server.Addr).Info("API server starting")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("API server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(err).Warn("API server shutdown")
		}
	}()
}

type errorResponse struct {
	Error string `json:"error"`
}

// handlePrediction answers GET /v1/prediction?player1=&player2=&surface=
func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	player1 := r.URL.Query().Get("player1")
	player2 := r.URL.Query().Get("player2")
	if player1 == "" || player2 == "" {
		writeError(w, http.StatusBadRequest, "player1 and player2 are required")
		return
	}

	surface := models.ParseSurface(r.URL.Query().Get("surface"))
	writeJSON(w, http.StatusOK, s.predictions.Predict(player1, player2, surface))
}

// handleRankings answers GET /v1/rankings?surface=&limit=
func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	surface := models.Surface("")
	if raw := r.URL.Query().Get("surface"); raw != "" {
		surface = models.ParseSurface(raw)
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	writeJSON(w, http.StatusOK, s.predictions.Rankings(surface, limit))
}

// handleValueBets answers GET /v1/value-bets?sport=&min_edge=. Without a
// sport it aggregates every configured sport.
func (s *Server) handleValueBets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	minEdge := s.minEdge
	if raw := r.URL.Query().Get("min_edge"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "min_edge must be a non-negative number")
			return
		}
		minEdge = parsed
	}

	sports := s.sports
	if sport := r.URL.Query().Get("sport"); sport != "" {
		sports = []string{sport}
	}

	allBets := make([]models.ValueBet, 0)
	for _, sport := range sports {
		bets, err := s.bets.TodaysValueBets(r.Context(), sport, minEdge)
		if err != nil {
			s.logger.WithError(err).WithField("sport", sport).Error("Value bet lookup failed")
			writeError(w, http.StatusBadGateway, "value bet lookup failed")
			return
		}
		allBets = append(allBets, bets...)
	}

	writeJSON(w, http.StatusOK, allBets)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

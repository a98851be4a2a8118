// Package metrics provides the centralized Prometheus metrics registry for the prediction engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	MatchesProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tennis_predictions",
		Name:      "matches_processed_total",
		Help:      "Total number of match results applied to the rating engine by tour",
	}, []string{"tour"})
	MatchIngestionErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tennis_predictions",
		Name:      "match_ingestion_errors_total",
		Help:      "Total number of match records that failed to ingest",
	})
	ValueBetsFoundTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tennis_predictions",
		Name:      "value_bets_found_total",
		Help:      "Total number of value bets identified",
	})
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tennis_predictions",
		Name:      "provider_requests_total",
		Help:      "Total number of data provider requests by provider and status",
	}, []string{"provider", "status"})
	PredictionsServedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tennis_predictions",
		Name:      "predictions_served_total",
		Help:      "Total number of match predictions served",
	})
)

// Gauge metrics
var (
	RatedPlayers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tennis_predictions",
		Name:      "rated_players",
		Help:      "Number of players with a rating",
	})
	LastRatingsUpdate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tennis_predictions",
		Name:      "last_ratings_update_timestamp_seconds",
		Help:      "Unix timestamp of the most recent ratings update",
	})
	OddsAPIRequestsRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tennis_predictions",
		Name:      "odds_api_requests_remaining",
		Help:      "Remaining request quota reported by the odds provider",
	})
)

// Histogram metrics
var (
	TrainingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tennis_predictions",
		Name:      "training_duration_seconds",
		Help:      "Duration of rating training runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	ProviderRequestLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tennis_predictions",
		Name:      "provider_request_latency_seconds",
		Help:      "Latency of data provider requests in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(MatchesProcessedTotal)
		registry.MustRegister(MatchIngestionErrorsTotal)
		registry.MustRegister(ValueBetsFoundTotal)
		registry.MustRegister(ProviderRequestsTotal)
		registry.MustRegister(PredictionsServedTotal)

		// Register gauge metrics
		registry.MustRegister(RatedPlayers)
		registry.MustRegister(LastRatingsUpdate)
		registry.MustRegister(OddsAPIRequestsRemaining)

		// Register histogram metrics
		registry.MustRegister(TrainingDuration)
		registry.MustRegister(ProviderRequestLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordMatchProcessed records a match result applied to the engine.
func RecordMatchProcessed(tour string) {
	MatchesProcessedTotal.WithLabelValues(tour).Inc()
}

// RecordIngestionError records a match record that failed to ingest.
func RecordIngestionError() {
	MatchIngestionErrorsTotal.Inc()
}

// RecordValueBetsFound records identified value bets.
func RecordValueBetsFound(count int) {
	ValueBetsFoundTotal.Add(float64(count))
}

// RecordProviderRequest records a data provider request outcome.
// status should be one of: "success", "error", "rate_limited"
func RecordProviderRequest(provider, status string, durationSeconds float64) {
	ProviderRequestsTotal.WithLabelValues(provider, status).Inc()
	ProviderRequestLatency.Observe(durationSeconds)
}

// RecordPredictionServed records a served match prediction.
func RecordPredictionServed() {
	PredictionsServedTotal.Inc()
}

// UpdateRatedPlayers updates the rated players gauge.
func UpdateRatedPlayers(count float64) {
	RatedPlayers.Set(count)
}

// UpdateLastRatingsUpdate updates the last update timestamp gauge.
func UpdateLastRatingsUpdate(unixSeconds float64) {
	LastRatingsUpdate.Set(unixSeconds)
}

// UpdateOddsAPIQuota updates the remaining odds provider quota gauge.
func UpdateOddsAPIQuota(remaining float64) {
	OddsAPIRequestsRemaining.Set(remaining)
}

// RecordTrainingDuration records a training run duration.
func RecordTrainingDuration(durationSeconds float64) {
	TrainingDuration.Observe(durationSeconds)
}

package backtest

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// CalibrationBucket aggregates forecasts whose favorite-win probability fell
// into one bucket. A well calibrated model has ActualRate close to
// MeanForecast in every populated bucket.
type CalibrationBucket struct {
	Low          float64 `json:"low"`
	High         float64 `json:"high"`
	Count        int     `json:"count"`
	MeanForecast float64 `json:"mean_forecast"`
	ActualRate   float64 `json:"actual_rate"`
}

// Report summarizes how the engine's forecasts scored over a replay
type Report struct {
	MatchesEvaluated int       `json:"matches_evaluated"`
	WarmupMatches    int       `json:"warmup_matches"`
	Correct          int       `json:"correct"`
	FirstMatch       time.Time `json:"first_match"`
	LastMatch        time.Time `json:"last_match"`

	Accuracy   float64 `json:"accuracy"`
	BrierScore float64 `json:"brier_score"`
	LogLoss    float64 `json:"log_loss"`

	Calibration []CalibrationBucket `json:"calibration"`
}

// scorecard accumulates per-match scores during a replay
type scorecard struct {
	evaluated  int
	correct    int
	brierSum   float64
	logLossSum float64
	first      time.Time
	last       time.Time

	bucketForecastSum []float64
	bucketWins        []int
	bucketCounts      []int
}

func newScorecard(buckets int) *scorecard {
	return &scorecard{
		bucketForecastSum: make([]float64, buckets),
		bucketWins:        make([]int, buckets),
		bucketCounts:      make([]int, buckets),
	}
}

// record scores one forecast. winnerProb is the probability the model gave
// the eventual winner before the result was applied.
func (s *scorecard) record(winnerProb float64, matchDate time.Time) {
	s.evaluated++
	if winnerProb > 0.5 {
		s.correct++
	}

	// Brier and log loss are scored on the winner's outcome (1)
	s.brierSum += (1 - winnerProb) * (1 - winnerProb)
	s.logLossSum += -math.Log(clampProbability(winnerProb))

	// Calibration is bucketed on the pre-match favorite
	favoriteProb := math.Max(winnerProb, 1-winnerProb)
	bucket := bucketIndex(favoriteProb, len(s.bucketCounts))
	s.bucketCounts[bucket]++
	s.bucketForecastSum[bucket] += favoriteProb
	if winnerProb >= 0.5 {
		s.bucketWins[bucket]++
	}

	if s.first.IsZero() || matchDate.Before(s.first) {
		s.first = matchDate
	}
	if matchDate.After(s.last) {
		s.last = matchDate
	}
}

func (s *scorecard) report(warmup int) *Report {
	report := &Report{
		MatchesEvaluated: s.evaluated,
		WarmupMatches:    warmup,
		Correct:          s.correct,
		FirstMatch:       s.first,
		LastMatch:        s.last,
	}
	if s.evaluated == 0 {
		return report
	}

	report.Accuracy = float64(s.correct) / float64(s.evaluated)
	report.BrierScore = s.brierSum / float64(s.evaluated)
	report.LogLoss = s.logLossSum / float64(s.evaluated)

	buckets := len(s.bucketCounts)
	width := 1.0 / float64(buckets)
	for i := 0; i < buckets; i++ {
		bucket := CalibrationBucket{
			Low:   float64(i) * width,
			High:  float64(i+1) * width,
			Count: s.bucketCounts[i],
		}
		if bucket.Count > 0 {
			bucket.MeanForecast = s.bucketForecastSum[i] / float64(bucket.Count)
			bucket.ActualRate = float64(s.bucketWins[i]) / float64(bucket.Count)
		}
		report.Calibration = append(report.Calibration, bucket)
	}
	return report
}

func bucketIndex(p float64, buckets int) int {
	idx := int(p * float64(buckets))
	if idx >= buckets {
		idx = buckets - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// clampProbability keeps log loss finite for degenerate forecasts
func clampProbability(p float64) float64 {
	const epsilon = 1e-12
	return math.Min(math.Max(p, epsilon), 1-epsilon)
}

// ToJSON renders the report as indented JSON
func (r *Report) ToJSON() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// String renders a human-readable summary
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "evaluated %d matches (%d warmup)", r.MatchesEvaluated, r.WarmupMatches)
	if r.MatchesEvaluated == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, ", %s to %s\n", r.FirstMatch.Format("2006-01-02"), r.LastMatch.Format("2006-01-02"))
	fmt.Fprintf(&b, "accuracy %.1f%%  brier %.4f  log loss %.4f", r.Accuracy*100, r.BrierScore, r.LogLoss)
	return b.String()
}

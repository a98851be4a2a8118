// Package backtest evaluates the rating engine against historical results
// by replaying matches chronologically and scoring each forecast before the
// result is applied.
package backtest

import "fmt"

// Config controls a backtest run
type Config struct {
	// WarmupMatches are replayed without being scored, so the engine has
	// ratings to predict with before evaluation starts.
	WarmupMatches int

	// CalibrationBuckets is the number of equal-width probability buckets
	// in the calibration table.
	CalibrationBuckets int
}

// DefaultConfig returns recommended backtest defaults
func DefaultConfig() Config {
	return Config{
		WarmupMatches:      500,
		CalibrationBuckets: 10,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.WarmupMatches < 0 {
		return fmt.Errorf("warmup matches must not be negative")
	}
	if c.CalibrationBuckets < 1 {
		return fmt.Errorf("calibration buckets must be at least 1")
	}
	return nil
}

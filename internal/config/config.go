// Package config provides configuration management for the tennis predictions service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App           AppConfig           `mapstructure:"app" validate:"required"`
	Ratings       RatingsConfig       `mapstructure:"ratings" validate:"required"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Elo           EloConfig           `mapstructure:"elo" validate:"required"`
	Betting       BettingConfig       `mapstructure:"betting" validate:"required"`
	OddsAPI       OddsAPIConfig       `mapstructure:"odds_api" validate:"required"`
	DataIngestion DataIngestionConfig `mapstructure:"data_ingestion" validate:"required"`
	Metrics       MetricsConfig       `mapstructure:"metrics" validate:"required"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	Port        int    `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// RatingsConfig selects and parameterizes the rating store
type RatingsConfig struct {
	Backend  string `mapstructure:"backend" validate:"required,oneof=json postgres"`
	FilePath string `mapstructure:"file_path" validate:"required_if=Backend json"`
	DataDir  string `mapstructure:"data_dir" validate:"required"`
}

// DatabaseConfig represents database connection configuration.
// Only required when the postgres ratings backend is selected.
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// EloConfig holds the rating engine tunables
type EloConfig struct {
	KFactor             float64 `mapstructure:"k_factor" validate:"required,gt=0"`
	DefaultRating       float64 `mapstructure:"default_rating" validate:"required,gt=0"`
	SurfaceAdvantage    float64 `mapstructure:"surface_advantage" validate:"gte=0"`
	MonthlyDecayRate    float64 `mapstructure:"monthly_decay_rate" validate:"gte=0,lt=1"`
	DecayGraceMonths    int     `mapstructure:"decay_grace_months" validate:"gte=0"`
	MinRatingAfterDecay float64 `mapstructure:"min_rating_after_decay" validate:"gte=0"`
}

// BettingConfig holds edge and stake-sizing tunables
type BettingConfig struct {
	MinEdge            float64  `mapstructure:"min_edge" validate:"gte=0"`
	StrongBetThreshold float64  `mapstructure:"strong_bet_threshold" validate:"required"`
	BetThreshold       float64  `mapstructure:"bet_threshold" validate:"required"`
	KellyFraction      float64  `mapstructure:"kelly_fraction" validate:"required,gt=0,lte=1"`
	CacheTTLMinutes    int      `mapstructure:"cache_ttl_minutes" validate:"required,gt=0"`
	WindowHours        int      `mapstructure:"window_hours" validate:"required,gt=0"`
	Regions            string   `mapstructure:"regions" validate:"required"`
	Sports             []string `mapstructure:"sports" validate:"required,min=1,sports"`
}

// OddsAPIConfig represents The Odds API client configuration
type OddsAPIConfig struct {
	BaseURL        string  `mapstructure:"base_url" validate:"required,url"`
	APIKey         string  `mapstructure:"api_key"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
}

// DataIngestionConfig represents match-result ingestion configuration
type DataIngestionConfig struct {
	Sources    []DataSourceConfig `mapstructure:"sources" validate:"required,min=1,dive"`
	LiveStream LiveStreamConfig   `mapstructure:"live_stream"`
}

// DataSourceConfig represents a single results provider
type DataSourceConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// LiveStreamConfig represents the live score websocket feed
type LiveStreamConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url" validate:"required_if=Enabled true"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig represents scheduled job configuration
type SchedulerConfig struct {
	DailyUpdateCron          string `mapstructure:"daily_update_cron" validate:"required"`
	ValueBetsIntervalMinutes int    `mapstructure:"value_bets_interval_minutes" validate:"required,gt=0"`
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User, c.Database.Password, c.Database.Host,
		c.Database.Port, c.Database.Name, c.Database.SSLMode,
	)
}

// OddsAPITimeout returns the odds API request timeout as a duration
func (c *Config) OddsAPITimeout() time.Duration {
	return time.Duration(c.OddsAPI.TimeoutSeconds) * time.Second
}

// ValueBetCacheTTL returns the value-bet cache TTL as a duration
func (c *Config) ValueBetCacheTTL() time.Duration {
	return time.Duration(c.Betting.CacheTTLMinutes) * time.Minute
}

// Package config provides configuration management for the tennis predictions service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "TENNIS_PREDICTIONS"

// Load reads and parses the configuration from file and environment
// variables. Environment variable placeholders in the YAML file (${VAR_NAME})
// are expanded before parsing.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields; a missing config file is not an error.
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tennis-predictions")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.port", 8000)

	v.SetDefault("ratings.backend", "json")
	v.SetDefault("ratings.file_path", "data/ratings.json")
	v.SetDefault("ratings.data_dir", "data")

	v.SetDefault("elo.k_factor", 32.0)
	v.SetDefault("elo.default_rating", 1500.0)
	v.SetDefault("elo.surface_advantage", 50.0)
	v.SetDefault("elo.monthly_decay_rate", 0.015)
	v.SetDefault("elo.decay_grace_months", 3)
	v.SetDefault("elo.min_rating_after_decay", 1200.0)

	v.SetDefault("betting.min_edge", 5.0)
	v.SetDefault("betting.strong_bet_threshold", 10.0)
	v.SetDefault("betting.bet_threshold", 5.0)
	v.SetDefault("betting.kelly_fraction", 0.25)
	v.SetDefault("betting.cache_ttl_minutes", 60)
	v.SetDefault("betting.window_hours", 24)
	v.SetDefault("betting.regions", "us,uk")
	v.SetDefault("betting.sports", []string{"tennis_atp", "tennis_wta"})

	v.SetDefault("odds_api.base_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("odds_api.timeout_seconds", 30)
	v.SetDefault("odds_api.max_retries", 3)
	v.SetDefault("odds_api.rate_limit", 1.0)

	v.SetDefault("data_ingestion.sources", []map[string]interface{}{
		{"name": "tennis_data", "enabled": true, "base_url": "http://www.tennis-data.co.uk"},
	})

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("scheduler.daily_update_cron", "0 6 * * *")
	v.SetDefault("scheduler.value_bets_interval_minutes", 60)
}

// Package config provides configuration management for the tennis predictions service.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Registration only fails for empty tag names
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("sports", validateSports)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateSports validates the configured sport keys. The Odds API uses
// per-tournament keys (tennis_atp_french_open, tennis_wta_us_open), so any
// key under either tour prefix is accepted.
func validateSports(fl validator.FieldLevel) bool {
	sports, ok := fl.Field().Interface().([]string)
	if !ok || len(sports) == 0 {
		return false
	}

	for _, sport := range sports {
		if !strings.HasPrefix(sport, "tennis_atp") && !strings.HasPrefix(sport, "tennis_wta") {
			return false
		}
	}
	return true
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Betting.StrongBetThreshold < cfg.Betting.BetThreshold {
		return fmt.Errorf(
			"betting.strong_bet_threshold (%.1f) must not be below betting.bet_threshold (%.1f)",
			cfg.Betting.StrongBetThreshold, cfg.Betting.BetThreshold,
		)
	}

	if cfg.Ratings.Backend == "postgres" {
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("postgres ratings backend requires database host, name and user")
		}
	}

	return nil
}

// formatValidationErrors converts validator errors into a readable message
func formatValidationErrors(errs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", e.Namespace(), e.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

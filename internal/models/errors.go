package models

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrInvalidOdds        = errors.New("invalid odds")
	ErrInvalidProbability = errors.New("probability must be in (0, 1)")
	ErrNotFound           = errors.New("record not found")
	ErrNoProviders        = errors.New("no providers available")
)

// RepositoryError indicates persisted data could not be read or written.
// Callers decide whether to treat it as a cold start or a fatal condition.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository: %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError wraps err with the failing operation
func NewRepositoryError(op string, err error) *RepositoryError {
	return &RepositoryError{Op: op, Err: err}
}

// ProviderError indicates an external data provider failed. An empty result
// is not a ProviderError; only genuine failures are.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s (%v)", e.Provider, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Provider error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeAuthFailed        = "authentication_failed"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
)

// NewProviderError creates a ProviderError
func NewProviderError(provider, code, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Code: code, Message: message, Err: err}
}

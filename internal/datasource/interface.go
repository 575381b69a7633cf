// Package datasource fetches the raw statistics tables the multi builder loads at startup.
package datasource

import (
	"context"
	"errors"
	"io"
)

// Source yields the bytes of one CSV table
type Source interface {
	// Open returns a reader over the table. The caller must close it.
	Open(ctx context.Context) (io.ReadCloser, error)

	// Name returns a human readable location used in logs and errors
	Name() string
}

// SourceError represents errors from data source operations
type SourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g. "not_found")
	Message string
	Err     error
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeNotFound     = "not_found"
	ErrCodeNetworkError = "network_error"
	ErrCodeServerError  = "server_error"
	ErrCodeClientError  = "client_error"
	ErrCodeUnknown      = "unknown"
)

var (
	ErrNotFound       = errors.New("data not found")
	ErrCircuitOpen    = errors.New("circuit breaker open")
	ErrUnexpectedCode = errors.New("unexpected status code")
)

// NewSourceError creates a new data source error
func NewSourceError(source, code, message string, err error) SourceError {
	return SourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

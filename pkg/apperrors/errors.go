// Package apperrors defines the sentinel errors shared across carbon-engine.
// Services wrap these with fmt.Errorf("...: %w", ...) and handlers map them
// to HTTP status codes at the boundary.
package apperrors

import "errors"

var (
	// ErrInvalidInput marks client-caused validation failures (bad domain,
	// non-positive or non-finite input). Non-retryable, maps to 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPredictionUnavailable marks any failure of the external forecasting
	// service: network error, timeout, non-2xx status, or malformed payload.
	// Retryable by the caller, maps to 500. No partial results accompany it.
	ErrPredictionUnavailable = errors.New("prediction service unavailable")

	// ErrPersistence marks a storage-layer outage while appending a record.
	ErrPersistence = errors.New("persistence failure")
)

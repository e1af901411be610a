// Package errors provides custom error types for the FinSight API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Validation errors. Always surfaced before any upstream work is attempted,
// never retried internally.
var (
	ErrValidation    = &AppError{Code: "VALIDATION_ERROR", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInvalidTicker = &AppError{Code: "INVALID_TICKER", Message: "Ticker must be 1-10 characters (A-Z, 0-9, dot, dash)", StatusCode: http.StatusBadRequest}
	ErrBatchTooLarge = &AppError{Code: "BATCH_TOO_LARGE", Message: "Too many tickers (max 20 per batch request)", StatusCode: http.StatusBadRequest}
	ErrEmptyBatch    = &AppError{Code: "EMPTY_BATCH", Message: "At least one ticker is required", StatusCode: http.StatusBadRequest}
)

// Data source errors. TICKER_NOT_FOUND is definitive and should not be
// retried by callers; UPSTREAM_ERROR may be transient and is worth a retry.
var (
	ErrTickerNotFound = &AppError{Code: "TICKER_NOT_FOUND", Message: "No data found for ticker", StatusCode: http.StatusNotFound}
	ErrUpstream       = &AppError{Code: "UPSTREAM_ERROR", Message: "Upstream data source unavailable", StatusCode: http.StatusBadGateway}
)

// General errors.
var (
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyQuery indicates the user submitted a blank search.
	ErrEmptyQuery = errors.New("empty search query")

	// ErrImageMode indicates the query asked for the image gallery instead of a search.
	ErrImageMode = errors.New("image search requested")

	// ErrValidation indicates the query failed syntax validation.
	ErrValidation = errors.New("query syntax invalid")

	// ErrSuperseded indicates a newer search replaced this one before it completed.
	// The stale response is discarded.
	ErrSuperseded = errors.New("search superseded")

	// ErrSearchUnavailable indicates Meilisearch could not be reached.
	ErrSearchUnavailable = errors.New("search engine unavailable")

	// ErrBackendUnavailable indicates the SearchBox backend could not be reached
	// or answered with a non-2xx status.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrLLMUnavailable indicates the backend reports Ollama as disabled or disconnected.
	// Summaries and recommendations are hidden.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrStreamFailed indicates the streaming summary could not be consumed.
	ErrStreamFailed = errors.New("summary stream failed")

	// ErrSummaryFailed indicates the backend could not produce a summary.
	ErrSummaryFailed = errors.New("summary generation failed")

	// ErrCacheMiss indicates no live cache entry exists for a key.
	ErrCacheMiss = errors.New("cache miss")

	// ErrViewerTimeout indicates a viewer did not finish loading in time.
	ErrViewerTimeout = errors.New("viewer load timed out")

	// ErrBusy indicates an operation is already in flight and the new attempt was dropped.
	ErrBusy = errors.New("operation already in progress")

	// Authentication Errors.

	// ErrAuthRequired indicates the backend answered 401 and no PIN unlocked it.
	ErrAuthRequired = errors.New("authentication required")

	// ErrPINCancelled indicates the user dismissed the PIN prompt.
	ErrPINCancelled = errors.New("PIN entry cancelled")
)

// HTTPError describes a non-2xx backend answer.
// It unwraps to ErrAuthRequired for 401 and ErrBackendUnavailable otherwise.
type HTTPError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// Unwrap maps the status code onto a sentinel.
func (e *HTTPError) Unwrap() error {
	if e.StatusCode == 401 {
		return ErrAuthRequired
	}
	return ErrBackendUnavailable
}

// ValidationError carries the diagnostics that made a query invalid.
type ValidationError struct {
	Query       string
	Diagnostics []Diagnostic
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, ValidationMessage(len(e.Diagnostics)))
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// RedirectError reports that a search was replaced by navigation.
type RedirectError struct {
	Location string
}

// Error implements the error interface.
func (e *RedirectError) Error() string {
	return fmt.Sprintf("%s: %s", ErrImageMode, e.Location)
}

// Unwrap returns ErrImageMode.
func (e *RedirectError) Unwrap() error {
	return ErrImageMode
}

package articlemeta

import (
	"errors"
	"fmt"
)

// Common errors returned by the catalog client.
var (
	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with articlemeta")

	// ErrInvalidResponse indicates a payload that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from articlemeta")

	// ErrRateLimited indicates the server refused the request rate.
	ErrRateLimited = errors.New("articlemeta rate limit exceeded")
)

// APIError represents a non-2xx answer from the catalog.
type APIError struct {
	StatusCode int
	Path       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("articlemeta API error (status %d): %s", e.StatusCode, e.Path)
}

// ServerError is the failure of a single catalog record, naming the
// collection/code pair involved.
type ServerError struct {
	Op         string // e.g. "retrieving document"
	Collection string
	Code       string
	Err        error
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("error %s: %s_%s: %v", e.Op, e.Collection, e.Code, e.Err)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

// IsServerError reports whether err carries a *ServerError.
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

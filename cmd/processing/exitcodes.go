package main

import (
	"errors"

	"github.com/fabiobatalha/processing/internal/access"
	"github.com/fabiobatalha/processing/internal/accessstats"
	"github.com/fabiobatalha/processing/internal/analytics"
	"github.com/fabiobatalha/processing/internal/articlemeta"
	"github.com/fabiobatalha/processing/internal/ratchet"
)

// Exit codes
const (
	ExitSuccess       = 0 // Success
	ExitError         = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError   = 2 // Configuration error (bad config file, invalid ISSNs or dates)
	ExitDataError     = 3 // Data error (malformed catalog records)
	ExitUpstreamError = 4 // A catalog, access or index service failed
)

// exitError carries the exit code chosen by a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	var apiErr *articlemeta.APIError
	switch {
	case errors.Is(err, access.ErrMalformedPID):
		return ExitDataError
	case access.IsLookupError(err),
		articlemeta.IsServerError(err),
		articlemeta.IsRateLimited(err),
		errors.As(err, &apiErr),
		errors.Is(err, articlemeta.ErrNetworkError),
		errors.Is(err, articlemeta.ErrInvalidResponse),
		errors.Is(err, ratchet.ErrNetworkError),
		errors.Is(err, ratchet.ErrAPIError),
		errors.Is(err, analytics.ErrNetworkError),
		errors.Is(err, analytics.ErrAPIError),
		errors.Is(err, analytics.ErrInvalidResponse),
		errors.Is(err, accessstats.ErrNetworkError),
		errors.Is(err, accessstats.ErrSearchFailed),
		errors.Is(err, accessstats.ErrInvalidResponse):
		return ExitUpstreamError
	default:
		return ExitError
	}
}

package apierror

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Sentinels for upstream responses, selected by HTTP status.
var (
	ErrUnauthorised     = errors.New("unauthorised")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrRateLimited      = errors.New("rate limited")
	ErrBadRequest       = errors.New("bad request")
	ErrServerError      = errors.New("server error")
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// ErrInvalidArgument marks errors raised by argument validation.
var ErrInvalidArgument = errors.New("invalid argument")

// Error is the structured failure returned by every node when an upstream
// call (token endpoint, Graph, SharePoint REST) does not succeed.
type Error struct {
	// Source names the upstream: "token", "graph" or "sharepoint".
	Source     string
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s: %s", e.Source, e.StatusCode, e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Source, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s: status %d", e.Source, e.StatusCode)
	}
}

// Unwrap exposes the status sentinel so callers can use errors.Is.
func (e *Error) Unwrap() error {
	return StatusSentinel(e.StatusCode)
}

// StatusSentinel maps an HTTP status to one of the package sentinels.
// Success statuses map to nil.
func StatusSentinel(statusCode int) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusUnauthorized:
		return ErrUnauthorised
	case statusCode == http.StatusForbidden:
		return ErrForbidden
	case statusCode == http.StatusNotFound:
		return ErrNotFound
	case statusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case statusCode == http.StatusBadRequest:
		return ErrBadRequest
	case statusCode >= 500:
		return ErrServerError
	default:
		return ErrUnexpectedStatus
	}
}

// Invalid returns a validation error whose text is msg verbatim.
func Invalid(msg string) error {
	return errors.Mark(errors.New(msg), ErrInvalidArgument)
}

// IsInvalid reports whether err came from argument validation.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

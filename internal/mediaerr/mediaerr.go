// Package mediaerr defines the closed error taxonomy shared across the media
// pipeline. It sits below every other pipeline package so endpoint
// resolution, the HTTP client and the orchestrator can all speak the same
// error language without importing each other.
package mediaerr

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the media pipeline can surface. The set is
// closed: callers branch on Kind, never on message text.
type Kind string

const (
	// Configuration failures, routed to the "configuration needed" surface.
	KindNotConfigured   Kind = "not_configured"
	KindIncomplete      Kind = "incomplete_settings"
	KindInvalidEndpoint Kind = "invalid_endpoint"

	// HTTP failures mapped from provider status codes.
	KindAuthenticationFailed Kind = "authentication_failed"
	KindAccessForbidden      Kind = "access_forbidden"
	KindNotFound             Kind = "not_found"
	KindRateLimited          Kind = "rate_limited"
	KindProviderError        Kind = "provider_error"

	// Video job lifecycle failures.
	KindMissingJobID             Kind = "missing_job_id"
	KindMalformedSuccessResponse Kind = "malformed_success_response"
	KindContentFetchFailed       Kind = "content_fetch_failed"
	KindGenerationFailed         Kind = "generation_failed"
	KindGenerationTimedOut       Kind = "generation_timed_out"
	KindCancelled                Kind = "cancelled"
)

// Error is the typed error returned across the media pipeline. Endpoint and
// StatusCode are populated when known so diagnostics can name the endpoint in
// use without the caller re-deriving it.
type Error struct {
	Kind       Kind
	Message    string
	Endpoint   string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("%s: %s (endpoint %s)", e.Kind, e.Message, e.Endpoint)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a pipeline error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to a new pipeline error.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err, or "" if err is not a pipeline error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsConfigError reports whether err is a configuration problem that should be
// routed to the settings surface instead of the generic error surface.
func IsConfigError(err error) bool {
	switch KindOf(err) {
	case KindNotConfigured, KindIncomplete, KindInvalidEndpoint:
		return true
	}
	return false
}

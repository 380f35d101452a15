package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed request into the taxonomy shared by
// every caller. Exactly one kind is assigned per error by the response
// interception layer; callers branch on the kind for page-specific
// behavior but global side effects (auth teardown) are handled by the
// client itself.
type ErrorKind string

const (
	// KindNetwork means no response was received at all.
	KindNetwork ErrorKind = "network"
	// KindAuth means the session token was missing, expired, or revoked (401).
	KindAuth ErrorKind = "auth"
	// KindPermission means the caller's roles are insufficient, or a
	// requested state transition is illegal (403).
	KindPermission ErrorKind = "permission"
	// KindValidation means field-level input errors (422 and other 4xx).
	KindValidation ErrorKind = "validation"
	// KindNotFound means the resource does not exist (404).
	KindNotFound ErrorKind = "not_found"
	// KindRateLimit means the caller is being throttled (429).
	KindRateLimit ErrorKind = "rate_limit"
	// KindServer means the backend failed (5xx).
	KindServer ErrorKind = "server"
)

// Error is the classified form of any failed API request.
type Error struct {
	Kind    ErrorKind
	Status  int               // HTTP status, 0 for network errors
	Code    string            // machine-readable error code from the body
	Message string            // human-readable message
	Fields  map[string]string // field-level validation errors, if any
	cause   error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api: %s: %v", e.Kind, e.cause)
	}
	if e.Code != "" {
		return fmt.Sprintf("api: %s (%d %s): %s", e.Kind, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api: %s (%d): %s", e.Kind, e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// classifyStatus maps an HTTP status code to an error kind. The mapping
// is total: any non-2xx status lands in exactly one kind.
func classifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuth
	case status == http.StatusForbidden:
		return KindPermission
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

// KindOf returns the kind of a classified API error, or "" when the
// error did not come from the API layer.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsAuth reports whether the error is a session-invalidating 401.
func IsAuth(err error) bool { return KindOf(err) == KindAuth }

// IsPermission reports whether the error is a 403. For presence
// transitions a permission error is authoritative: the caller must
// re-derive current state instead of retrying.
func IsPermission(err error) bool { return KindOf(err) == KindPermission }

// IsValidation reports whether the error carries field-level input errors.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether the error is a 404.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsNetwork reports whether no response was received.
func IsNetwork(err error) bool { return KindOf(err) == KindNetwork }

// FieldErrors returns the field-level validation errors attached to err,
// or nil when there are none.
func FieldErrors(err error) map[string]string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}

package classify

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind categorizes a backend failure for the fallback policy.
type ErrorKind string

const (
	KindAuth        ErrorKind = "auth"
	KindPermission  ErrorKind = "permission"
	KindNotFound    ErrorKind = "not_found"
	KindUnavailable ErrorKind = "unavailable"
	KindMalformed   ErrorKind = "malformed_response"
)

// BackendError is a classified failure from one backend/model attempt.
type BackendError struct {
	Backend string
	Model   string
	Kind    ErrorKind
	Status  int
	Detail  string
}

func (e *BackendError) Error() string {
	var where string
	if e.Model != "" {
		where = fmt.Sprintf("%s (%s)", e.Backend, e.Model)
	} else {
		where = e.Backend
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s: %s (HTTP %d)", where, e.Kind, e.Detail, e.Status)
	}
	return fmt.Sprintf("%s: %s: %s", where, e.Kind, e.Detail)
}

// Hint returns an actionable message for failures that a user can fix.
func (e *BackendError) Hint() string {
	switch e.Kind {
	case KindAuth:
		return "authentication failed: check that the inference API token is set and valid"
	case KindPermission:
		return "the configured token does not have access to this model"
	default:
		return ""
	}
}

// Retryable reports whether the fallback chain should advance past err.
// Authentication and permission failures are terminal; everything else
// (unknown model, warming backend, malformed response) moves on to the
// next model or backend in order.
func Retryable(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Kind != KindAuth && be.Kind != KindPermission
	}
	return true
}

func kindFromStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindAuth
	case http.StatusForbidden:
		return KindPermission
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest:
		return KindMalformed
	default:
		// 503 while a hosted model warms up, 429 rate limiting, and
		// anything else transient.
		return KindUnavailable
	}
}

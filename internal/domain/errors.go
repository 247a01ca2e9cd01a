package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrForbidden    = errors.New("forbidden")
	ErrBackend      = errors.New("backend failure")
	ErrInconsistent = errors.New("internal consistency violation")
)

// MsgRequired is the field message used when a required value is missing.
const MsgRequired = "is required"

// ValidationError provides programmatic access to field-level validation failures.
// Use errors.Is(err, ErrValidation) for simple checks, or errors.As(err, &verr) to
// access verr.Fields for per-field error details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// BackendCause tells apart storage failures triggered by the values a client
// sent from failures of the backend itself. Both surface as 500.
type BackendCause string

const (
	CauseBackend     BackendCause = "backend"
	CauseClientData  BackendCause = "client_data"
	CauseUnavailable BackendCause = "unavailable"
)

// BackendError wraps a storage or connectivity failure. Its Error text is for
// logs only; the HTTP layer never renders it.
type BackendError struct {
	Op    string
	Cause BackendCause
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s (%s): %v", ErrBackend.Error(), e.Op, e.Cause, e.Err)
}

// Is reports ErrBackend so callers can match without unwrapping the driver error.
func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationError_ErrorIsSorted(t *testing.T) {
	t.Parallel()

	err := &ValidationError{Fields: map[string]string{
		"active": MsgRequired,
		"age":    "must be a number",
	}}

	want := "validation error: active: is required; age: must be a number"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("errors.Is(err, ErrValidation) = false, want true")
	}
}

func TestBackendError_MatchesSentinelAndUnwraps(t *testing.T) {
	t.Parallel()

	driverErr := errors.New("dial tcp: connection refused")
	err := error(&BackendError{Op: "FindByID", Cause: CauseBackend, Err: driverErr})

	if !errors.Is(err, ErrBackend) {
		t.Error("errors.Is(err, ErrBackend) = false, want true")
	}
	if !errors.Is(err, driverErr) {
		t.Error("errors.Is(err, driverErr) = false, want true")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = true, want false")
	}
	if !strings.Contains(err.Error(), "FindByID") {
		t.Errorf("Error() = %q, want it to name the operation", err.Error())
	}
}

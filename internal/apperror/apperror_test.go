package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{"plain error", cause, Internal},
		{"invalid input", New(InvalidInput, "bad"), InvalidInput},
		{"not found", New(NotFound, "missing"), NotFound},
		{"wrapped conflict", fmt.Errorf("outer: %w", New(Conflict, "dup")), Conflict},
		{"rate limited with cause", Wrap(RateLimited, "slow down", cause), RateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := map[Kind]int{
		InvalidInput: http.StatusBadRequest,
		NotFound:     http.StatusNotFound,
		Conflict:     http.StatusConflict,
		RateLimited:  http.StatusTooManyRequests,
		Internal:     http.StatusInternalServerError,
	}

	for kind, status := range tests {
		if got := HTTPStatus(kind); got != status {
			t.Errorf("%s: expected %d, got %d", kind, status, got)
		}
	}
}

func TestError_UnwrapAndMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(Internal, "Failed to fetch location data", cause)

	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if err.Error() != "Failed to fetch location data: connection refused" {
		t.Errorf("unexpected error text: %s", err.Error())
	}
	if New(NotFound, "Location not found").Error() != "Location not found" {
		t.Error("expected bare message without cause")
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("ctx: %w", New(NotFound, "x"))
	if !Is(err, NotFound) {
		t.Error("expected NotFound")
	}
	if Is(err, Conflict) {
		t.Error("did not expect Conflict")
	}
	if Is(errors.New("plain"), Internal) {
		t.Error("plain errors are not *Error")
	}
}

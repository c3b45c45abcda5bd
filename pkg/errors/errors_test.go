package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := New(CodeConflict, "car already reserved", http.StatusConflict)
	if got := err.Error(); got != "CONFLICT: car already reserved" {
		t.Errorf("unexpected message: %q", got)
	}

	wrapped := Wrap(fmt.Errorf("boom"), CodeInternal, "something failed", http.StatusInternalServerError)
	if got := wrapped.Error(); got != "INTERNAL_ERROR: something failed (caused by: boom)" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Internal("wrapped", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Reservation"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad input", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("already reserved"), CodeConflict, http.StatusConflict},
		{"resource busy", ResourceBusy("car locked"), CodeResourceBusy, http.StatusServiceUnavailable},
		{"internal", Internal("oops", nil), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("too slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("reservations"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestNotFoundWithID_Details(t *testing.T) {
	err := NotFoundWithID("Reservation", "abc123")

	if err.Details["resource"] != "Reservation" || err.Details["id"] != "abc123" {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestWithDetails(t *testing.T) {
	err := Conflict("overlap").WithDetails(map[string]any{"car_id": "c1"})
	if err.Details["car_id"] != "c1" {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestIsAppError(t *testing.T) {
	if !IsAppError(Conflict("x")) {
		t.Error("expected true for AppError")
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("expected false for plain error")
	}
}

func TestAsAppError(t *testing.T) {
	original := Conflict("x")
	if AsAppError(original) != original {
		t.Error("AppError should pass through unchanged")
	}

	converted := AsAppError(fmt.Errorf("plain"))
	if converted.Code != CodeInternal {
		t.Errorf("plain error should convert to %s, got %s", CodeInternal, converted.Code)
	}
}

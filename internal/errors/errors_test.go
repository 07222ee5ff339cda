package errors

import (
	"fmt"
	"testing"
)

func TestClassification(t *testing.T) {
	cases := []struct {
		err       *Error
		status    int
		predicate func(error) bool
	}{
		{InvalidInput("bad input"), 400, IsInvalidInput},
		{NotFound("missing"), 404, IsNotFound},
		{Conflict("duplicate"), 409, IsConflict},
		{Unavailable(nil, "down"), 503, IsUnavailable},
	}
	for _, tc := range cases {
		if tc.err.HTTPStatus != tc.status {
			t.Errorf("%s: HTTPStatus = %d, want %d", tc.err.Code, tc.err.HTTPStatus, tc.status)
		}
		if !tc.predicate(tc.err) {
			t.Errorf("%s: predicate rejected its own error", tc.err.Code)
		}
		if IsNotFound(tc.err) && tc.err.Code != CodeNotFound {
			t.Errorf("%s: classified as not-found", tc.err.Code)
		}
	}
}

func TestClassificationSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("outer context: %w", NotFound("resource 7 does not exist"))

	if !IsNotFound(wrapped) {
		t.Error("wrapped not-found error lost its classification")
	}
	var appErr *Error
	if !As(wrapped, &appErr) {
		t.Fatal("As failed on wrapped error")
	}
	if appErr.Code != CodeNotFound {
		t.Errorf("Code = %q, want %q", appErr.Code, CodeNotFound)
	}
}

func TestUnavailableWrapsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Unavailable(cause, "upstream down")

	if err.Unwrap() != cause {
		t.Errorf("Unwrap = %v, want the cause", err.Unwrap())
	}
}

func TestWithDetailDoesNotMutateOriginal(t *testing.T) {
	base := InvalidInput("validation failed")
	derived := base.WithDetail("name", "is required")

	if len(base.Details) != 0 {
		t.Errorf("base.Details = %v, want untouched", base.Details)
	}
	if derived.Details["name"] != "is required" {
		t.Errorf("derived.Details = %v, want the added entry", derived.Details)
	}
}

package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil-like plain error", errors.New("boom"), Unknown},
		{"direct", New(NotFound, "no household"), NotFound},
		{"wrapped once", fmt.Errorf("join: %w", New(InvalidCode, "bad slug")), InvalidCode},
		{"wrapped cause", Wrap(CodeTaken, errors.New("dup key")), CodeTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	e := Wrap(NotFound, errors.New("mongo: no documents in result"))
	if e.Error() != "mongo: no documents in result" {
		t.Errorf("unexpected message: %q", e.Error())
	}
	e2 := New(ValidationFailed, "amount must be positive")
	if e2.Error() != "amount must be positive" {
		t.Errorf("unexpected message: %q", e2.Error())
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{ValidationFailed, http.StatusBadRequest},
		{InvalidCode, http.StatusBadRequest},
		{BadCredentials, http.StatusUnauthorized},
		{PermissionDenied, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{CodeTaken, http.StatusConflict},
		{EmailTaken, http.StatusConflict},
		{Unknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.kind); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestCodeIsStable(t *testing.T) {
	// Wire codes are part of the API contract.
	want := map[Kind]string{
		InvalidCode:      "invalid-code",
		CodeTaken:        "code-taken",
		NotFound:         "not-found",
		ValidationFailed: "validation-failed",
	}
	for kind, code := range want {
		if got := Code(kind); got != code {
			t.Errorf("Code(%v) = %q, want %q", kind, got, code)
		}
	}
}

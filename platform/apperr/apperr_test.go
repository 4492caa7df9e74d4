package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:     http.StatusNotFound,
		KindValidation:   http.StatusBadRequest,
		KindConflict:     http.StatusConflict,
		KindForbidden:    http.StatusForbidden,
		KindUnauthorized: http.StatusUnauthorized,
		KindRateLimited:  http.StatusTooManyRequests,
		KindUnavailable:  http.StatusServiceUnavailable,
		KindUpstream:     http.StatusBadGateway,
		KindInternal:     http.StatusInternalServerError,
		KindUnknown:      http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := New(kind, "x").HTTPStatus(); got != want {
			t.Fatalf("kind %d: expected %d, got %d", kind, want, got)
		}
	}
}

func TestGetKindFollowsWrappedChain(t *testing.T) {
	err := fmt.Errorf("loading lead: %w", NotFound("lead not found"))
	if !Is(err, KindNotFound) {
		t.Fatalf("expected wrapped error to report KindNotFound, got %d", GetKind(err))
	}
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Fatalf("expected plain error to report KindUnknown")
	}
}

func TestErrorMessageIncludesOpAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Upstream("hubspot request failed", cause).WithOp("crm.Push")

	if got := err.Error(); got != "crm.Push: hubspot request failed: connection reset" {
		t.Fatalf("unexpected message: %q", got)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to reach the cause")
	}
}

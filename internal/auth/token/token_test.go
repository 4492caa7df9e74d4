package token

import (
	"strings"
	"testing"
)

func TestGeneratePrefixedIsUnique(t *testing.T) {
	a, err := GeneratePrefixed("ls", 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := GeneratePrefixed("ls", 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(a, "ls_") {
		t.Fatalf("expected ls_ prefix, got %q", a)
	}
	if a == b {
		t.Fatalf("expected distinct tokens")
	}
}

func TestHashSHA256IsStable(t *testing.T) {
	if HashSHA256("abc") != HashSHA256("abc") {
		t.Fatalf("expected stable digest")
	}
	if got := len(HashSHA256("abc")); got != 64 {
		t.Fatalf("expected 64 hex chars, got %d", got)
	}
}

package domain

import "testing"

func TestEngagementScoreZeroFollowers(t *testing.T) {
	if got := EngagementScore(0, 500, 20); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestEngagementScoreSmallAccount(t *testing.T) {
	// rate = (50 + 2*5) / 2000 * 100 = 3 -> score 30, bonus 0.2
	if got := EngagementScore(2000, 50, 5); got != 30.2 {
		t.Fatalf("expected 30.2, got %v", got)
	}
}

func TestEngagementScoreCapsAt100(t *testing.T) {
	if got := EngagementScore(500000, 100000, 0); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
}

func TestEngagementScoreBonusCap(t *testing.T) {
	// rate = 0 -> score 0, bonus min(20, 50) = 20
	if got := EngagementScore(500000, 0, 0); got != 20 {
		t.Fatalf("expected 20, got %v", got)
	}
}

func TestParsePlatform(t *testing.T) {
	p, ok := ParsePlatform("  LinkedIn ")
	if !ok || p != PlatformLinkedIn {
		t.Fatalf("expected linkedin, got %q ok=%v", p, ok)
	}
	if _, ok := ParsePlatform("myspace"); ok {
		t.Fatalf("expected myspace to be rejected")
	}
}

func TestParseSortFieldDefaults(t *testing.T) {
	if got := ParseSortField("drop table"); got != SortEngagement {
		t.Fatalf("expected engagement_score fallback, got %q", got)
	}
	if got := ParseSortField("followers"); got != SortFollowers {
		t.Fatalf("expected followers, got %q", got)
	}
}

package config

import "testing"

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is empty")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("CORS_ORIGINS", "http://localhost:4200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetLeadsPerPage() != 20 {
		t.Fatalf("expected 20 leads per page, got %d", cfg.GetLeadsPerPage())
	}
	if cfg.GetAPIRateLimit() != 100 {
		t.Fatalf("expected API rate limit 100, got %d", cfg.GetAPIRateLimit())
	}
	if cfg.GetEmailEnabled() {
		t.Fatalf("expected email to be disabled without SMTP_HOST")
	}
	if cfg.IsAIEnabled() || cfg.IsSalesforceEnabled() || cfg.IsHubSpotEnabled() {
		t.Fatalf("expected optional integrations to be disabled by default")
	}
}

func TestLoadWildcardOriginForcesAllowAll(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.GetCORSAllowAll() {
		t.Fatalf("expected wildcard origin to enable CORS allow-all")
	}
}

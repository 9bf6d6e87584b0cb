package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.DBPath != "liga.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[1] != "::1" {
		t.Fatalf("trusted proxies = %v", cfg.TrustedProxies)
	}
	if cfg.SessionTTL != 30*24*time.Hour {
		t.Fatalf("session ttl = %v", cfg.SessionTTL)
	}
	if !cfg.CookieSecure || cfg.StrictBestOfFive {
		t.Fatalf("unexpected flags: %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://liga.example,https://admin.liga.example")
	t.Setenv("STRICT_BEST_OF_FIVE", "true")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("ADMIN_EMAILS", "org@liga.co")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || !cfg.StrictBestOfFive || len(cfg.AdminEmails) != 1 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("location = %v, %v", loc, err)
	}
}

func TestLoad_Error(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}

func TestLocation_Unknown(t *testing.T) {
	if _, err := (Config{TimeZone: "Mars/Olympus"}).Location(); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.SessionLoadTimeout != 15*time.Second {
		t.Errorf("SessionLoadTimeout = %v, want 15s", cfg.SessionLoadTimeout)
	}
	if cfg.FreeTierPatientLimit != 5 {
		t.Errorf("FreeTierPatientLimit = %d, want 5", cfg.FreeTierPatientLimit)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("SESSION_LOAD_TIMEOUT", "5s")
	t.Setenv("FREE_TIER_PATIENT_LIMIT", "10")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.SessionLoadTimeout != 5*time.Second {
		t.Errorf("SessionLoadTimeout = %v, want 5s", cfg.SessionLoadTimeout)
	}
	if cfg.FreeTierPatientLimit != 10 {
		t.Errorf("FreeTierPatientLimit = %d, want 10", cfg.FreeTierPatientLimit)
	}
	if !cfg.RedisTLS {
		t.Error("RedisTLS = false, want true")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestGetEnvAsIntBadValue(t *testing.T) {
	t.Setenv("FREE_TIER_PATIENT_LIMIT", "not-a-number")
	cfg := Load()
	if cfg.FreeTierPatientLimit != 5 {
		t.Errorf("FreeTierPatientLimit = %d, want fallback 5", cfg.FreeTierPatientLimit)
	}
}

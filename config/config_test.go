package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.RefreshTokenDays != 30 {
		t.Errorf("RefreshTokenDays = %d, want 30", cfg.Auth.RefreshTokenDays)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 15m", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.RefreshCookieName != "refresh-token" {
		t.Errorf("RefreshCookieName = %q, want 'refresh-token'", cfg.Auth.RefreshCookieName)
	}
	if cfg.Auth.RefreshCookiePath != "/api/auth" {
		t.Errorf("RefreshCookiePath = %q, want '/api/auth'", cfg.Auth.RefreshCookiePath)
	}
	if cfg.AI.RequestTimeout != 30*time.Second {
		t.Errorf("AI.RequestTimeout = %v, want 30s", cfg.AI.RequestTimeout)
	}
	if cfg.IsProduction() {
		t.Error("IsProduction() = true, want false by default")
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail without JWT_SECRET")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("REFRESH_TOKEN_EXPIRES_DAYS", "7")
	t.Setenv("ACCESS_TOKEN_EXPIRES_MINUTES", "5")
	t.Setenv("AI_REQUEST_TIMEOUT_SECONDS", "10")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.RefreshTokenDays != 7 {
		t.Errorf("RefreshTokenDays = %d, want 7", cfg.Auth.RefreshTokenDays)
	}
	if cfg.Auth.AccessTokenTTL != 5*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 5m", cfg.Auth.AccessTokenTTL)
	}
	if cfg.AI.RequestTimeout != 10*time.Second {
		t.Errorf("AI.RequestTimeout = %v, want 10s", cfg.AI.RequestTimeout)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("REFRESH_TOKEN_EXPIRES_DAYS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.RefreshTokenDays != 30 {
		t.Errorf("RefreshTokenDays = %d, want default 30", cfg.Auth.RefreshTokenDays)
	}
}

func TestValidate_BcryptCost(t *testing.T) {
	cfg := NewTestConfig()
	cfg.Auth.BcryptCost = 99

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject out-of-range bcrypt cost")
	}
}

func TestNewTestConfig(t *testing.T) {
	cfg := NewTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("NewTestConfig should validate, got %v", err)
	}
	if cfg.HasDatabase() {
		t.Error("test config should not have a database configured")
	}
}

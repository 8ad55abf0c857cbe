package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Auth configuration
	Auth AuthConfig

	// AI dispatch configuration
	AI AIConfig

	// HTTP configuration
	HTTP HTTPConfig

	// Environment name (development, production)
	Env string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// AuthConfig holds token and session configuration
type AuthConfig struct {
	JWTSecret         string
	AccessTokenTTL    time.Duration
	RefreshTokenDays  int
	RefreshCookieName string
	RefreshCookiePath string
	BcryptCost        int
}

// AIConfig holds AI dispatch configuration
type AIConfig struct {
	RequestTimeout time.Duration
	// KeyPassphrase encrypts stored provider API keys. When empty a
	// built-in passphrase is used; production deployments should set it.
	KeyPassphrase string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Addr               string
	CORSAllowedOrigins string
	RequestTimeoutSec  int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Auth: AuthConfig{
			JWTSecret:         os.Getenv("JWT_SECRET"),
			AccessTokenTTL:    time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRES_MINUTES", 15)) * time.Minute,
			RefreshTokenDays:  getEnvInt("REFRESH_TOKEN_EXPIRES_DAYS", 30),
			RefreshCookieName: getEnvString("REFRESH_COOKIE_NAME", "refresh-token"),
			RefreshCookiePath: getEnvString("REFRESH_COOKIE_PATH", "/api/auth"),
			BcryptCost:        getEnvInt("BCRYPT_COST", 12),
		},
		AI: AIConfig{
			RequestTimeout: time.Duration(getEnvInt("AI_REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
			KeyPassphrase:  os.Getenv("API_KEY_PASSPHRASE"),
		},
		HTTP: HTTPConfig{
			Addr:               getEnvString("HTTP_ADDR", ":3001"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
			RequestTimeoutSec:  getEnvInt("HTTP_REQUEST_TIMEOUT_SECONDS", 60),
		},
		Env: getEnvString("APP_ENV", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.RefreshTokenDays <= 0 {
		return fmt.Errorf("REFRESH_TOKEN_EXPIRES_DAYS must be positive, got %d", c.Auth.RefreshTokenDays)
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	if c.AI.RequestTimeout <= 0 {
		return fmt.Errorf("AI_REQUEST_TIMEOUT_SECONDS must be positive")
	}
	if c.HTTP.RequestTimeoutSec <= 0 {
		return fmt.Errorf("HTTP_REQUEST_TIMEOUT_SECONDS must be positive, got %d", c.HTTP.RequestTimeoutSec)
	}
	return nil
}

// HasDatabase returns true if database configuration is available
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// IsProduction returns true when running with production settings
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL: "",
		},
		Auth: AuthConfig{
			JWTSecret:         "test-secret",
			AccessTokenTTL:    15 * time.Minute,
			RefreshTokenDays:  30,
			RefreshCookieName: "refresh-token",
			RefreshCookiePath: "/api/auth",
			BcryptCost:        4,
		},
		AI: AIConfig{
			RequestTimeout: 30 * time.Second,
			KeyPassphrase:  "test-key-passphrase",
		},
		HTTP: HTTPConfig{
			Addr:               ":0",
			CORSAllowedOrigins: "*",
			RequestTimeoutSec:  60,
		},
		Env: "development",
	}
}

// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Access token settings
	TokenTTL time.Duration

	// Payment settings
	StripeAPIKey     string // Optional, offline verification when unset
	DefaultPPVPrice  float64
	MinGrantDuration int // seconds
	MaxGrantDuration int // seconds

	// Observability
	OTLPEndpoint string

	// Security
	AdminSecret  string // Admin API secret
	RateLimitRPS int
}

// Defaults
const (
	DefaultPort          = "8080"
	DefaultEnv           = "development"
	DefaultLogLevel      = "info"
	DefaultTokenTTLHours = 24
	DefaultPPVPrice      = 1.99
	DefaultRateLimit     = 100
	DefaultMinGrantSecs  = 60
	DefaultMaxGrantSecs  = 86400
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", DefaultPort),
		Env:              getEnv("ENV", DefaultEnv),
		LogLevel:         getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:      os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		TokenTTL:         time.Duration(getEnvInt64("TOKEN_TTL_HOURS", DefaultTokenTTLHours)) * time.Hour,
		StripeAPIKey:     os.Getenv("STRIPE_API_KEY"),
		DefaultPPVPrice:  getEnvFloat("DEFAULT_PPV_PRICE", DefaultPPVPrice),
		MinGrantDuration: int(getEnvInt64("MIN_GRANT_DURATION_SECONDS", DefaultMinGrantSecs)),
		MaxGrantDuration: int(getEnvInt64("MAX_GRANT_DURATION_SECONDS", DefaultMaxGrantSecs)),
		OTLPEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		AdminSecret:      os.Getenv("ADMIN_SECRET"),
		RateLimitRPS:     int(getEnvInt64("RATE_LIMIT_RPS", int64(DefaultRateLimit))),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that configuration values are coherent
func (c *Config) Validate() error {
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL_HOURS must be positive")
	}
	if c.DefaultPPVPrice < 0 {
		return fmt.Errorf("DEFAULT_PPV_PRICE must not be negative")
	}
	if c.MinGrantDuration <= 0 || c.MaxGrantDuration < c.MinGrantDuration {
		return fmt.Errorf("grant duration bounds invalid: min=%d max=%d", c.MinGrantDuration, c.MaxGrantDuration)
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds the service configuration
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	// Credential lifetimes
	GrantTTL       time.Duration
	AccessTokenTTL time.Duration

	// How often the purge worker sweeps expired credentials
	PurgeInterval time.Duration
}

// LoadConfig loads configuration from environment variables, with a .env
// file in the working directory taking effect first when present.
func LoadConfig(logger *zap.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", zap.Error(err))
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	// Credential lifetimes are a deployment decision; there is no safe
	// value to fall back on, so both must be set explicitly.
	grantTTL, err := requireDuration("GRANT_TTL")
	if err != nil {
		return nil, err
	}

	accessTokenTTL, err := requireDuration("ACCESS_TOKEN_TTL")
	if err != nil {
		return nil, err
	}

	purgeInterval, err := time.ParseDuration(getEnv("PURGE_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PURGE_INTERVAL: %w", err)
	}

	cfg := &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         dbPort,
		DBUser:         getEnv("DB_USER", "oauth"),
		DBPassword:     getEnv("DB_PASSWORD", "oauth"),
		DBName:         getEnv("DB_NAME", "oauth_provider"),
		GrantTTL:       grantTTL,
		AccessTokenTTL: accessTokenTTL,
		PurgeInterval:  purgeInterval,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that configured lifetimes are usable
func (c *Config) Validate() error {
	if c.GrantTTL <= 0 {
		return fmt.Errorf("GRANT_TTL must be positive, got %s", c.GrantTTL)
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive, got %s", c.AccessTokenTTL)
	}
	if c.PurgeInterval <= 0 {
		return fmt.Errorf("PURGE_INTERVAL must be positive, got %s", c.PurgeInterval)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// requireDuration parses an environment variable that has no default
func requireDuration(key string) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return 0, fmt.Errorf("%s must be set", key)
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

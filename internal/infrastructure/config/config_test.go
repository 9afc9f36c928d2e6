package config

import (
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		wantErr bool
	}{
		{
			name: "valid config",
			setup: func() {
				// Environment variables already set
			},
			wantErr: false,
		},
		{
			name: "invalid db port",
			setup: func() {
				os.Setenv("DB_PORT", "invalid")
			},
			wantErr: true,
		},
		{
			name: "invalid grant ttl",
			setup: func() {
				os.Setenv("GRANT_TTL", "invalid")
			},
			wantErr: true,
		},
		{
			name: "missing grant ttl",
			setup: func() {
				os.Unsetenv("GRANT_TTL")
			},
			wantErr: true,
		},
		{
			name: "missing access token ttl",
			setup: func() {
				os.Unsetenv("ACCESS_TOKEN_TTL")
			},
			wantErr: true,
		},
		{
			name: "invalid access token ttl",
			setup: func() {
				os.Setenv("ACCESS_TOKEN_TTL", "invalid")
			},
			wantErr: true,
		},
		{
			name: "zero grant ttl rejected",
			setup: func() {
				os.Setenv("GRANT_TTL", "0s")
			},
			wantErr: true,
		},
		{
			name: "negative access token ttl rejected",
			setup: func() {
				os.Setenv("ACCESS_TOKEN_TTL", "-1h")
			},
			wantErr: true,
		},
		{
			name: "invalid purge interval",
			setup: func() {
				os.Setenv("PURGE_INTERVAL", "often")
			},
			wantErr: true,
		},
		{
			name: "zero purge interval rejected",
			setup: func() {
				os.Setenv("PURGE_INTERVAL", "0s")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset environment variables to known values
			os.Setenv("DB_HOST", "localhost")
			os.Setenv("DB_PORT", "5432")
			os.Setenv("DB_USER", "postgres")
			os.Setenv("DB_PASSWORD", "postgres")
			os.Setenv("DB_NAME", "oauth_provider_test")
			os.Setenv("GRANT_TTL", "10m")
			os.Setenv("ACCESS_TOKEN_TTL", "1h")
			os.Setenv("PURGE_INTERVAL", "1h")

			// Run test-specific setup
			tt.setup()

			cfg, err := LoadConfig(zap.NewNop())
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				// Validate config values
				if cfg.DBHost != "localhost" {
					t.Errorf("LoadConfig() DBHost = %v, want %v", cfg.DBHost, "localhost")
				}
				if cfg.DBPort != 5432 {
					t.Errorf("LoadConfig() DBPort = %v, want %v", cfg.DBPort, 5432)
				}
				if cfg.DBUser != "postgres" {
					t.Errorf("LoadConfig() DBUser = %v, want %v", cfg.DBUser, "postgres")
				}
				if cfg.DBName != "oauth_provider_test" {
					t.Errorf("LoadConfig() DBName = %v, want %v", cfg.DBName, "oauth_provider_test")
				}
				if cfg.GrantTTL != 10*time.Minute {
					t.Errorf("LoadConfig() GrantTTL = %v, want %v", cfg.GrantTTL, 10*time.Minute)
				}
				if cfg.AccessTokenTTL != time.Hour {
					t.Errorf("LoadConfig() AccessTokenTTL = %v, want %v", cfg.AccessTokenTTL, time.Hour)
				}
				if cfg.PurgeInterval != time.Hour {
					t.Errorf("LoadConfig() PurgeInterval = %v, want %v", cfg.PurgeInterval, time.Hour)
				}
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{GrantTTL: 10 * time.Minute, AccessTokenTTL: time.Hour, PurgeInterval: time.Hour}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	cfg = &Config{GrantTTL: 0, AccessTokenTTL: time.Hour, PurgeInterval: time.Hour}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for zero GrantTTL")
	}

	cfg = &Config{GrantTTL: 10 * time.Minute, AccessTokenTTL: -time.Second, PurgeInterval: time.Hour}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for negative AccessTokenTTL")
	}

	cfg = &Config{GrantTTL: 10 * time.Minute, AccessTokenTTL: time.Hour, PurgeInterval: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for zero PurgeInterval")
	}
}

package database

import (
	"testing"

	"github.com/ipede/oauth-provider-service/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
)

func TestConnString(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db.internal",
		DBPort:     5433,
		DBUser:     "oauth",
		DBPassword: "secret",
		DBName:     "oauth_provider",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=oauth password=secret dbname=oauth_provider sslmode=disable",
		connString(cfg),
	)
}

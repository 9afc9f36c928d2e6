package integration

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/ipede/oauth-provider-service/internal/infrastructure/config"
	"github.com/ipede/oauth-provider-service/internal/infrastructure/database"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupDatabase connects to the test database named by the TEST_DB_*
// environment variables, applies the migrations and truncates all tables.
// Tests are skipped when no test database is configured.
func setupDatabase(t *testing.T) *database.Postgres {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("Skipping integration tests: TEST_DB_HOST is not set")
	}

	port := 5432
	if raw := os.Getenv("TEST_DB_PORT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		require.NoError(t, err)
		port = parsed
	}

	cfg := &config.Config{
		DBHost:     host,
		DBPort:     port,
		DBUser:     envOr("TEST_DB_USER", "test"),
		DBPassword: envOr("TEST_DB_PASSWORD", "test"),
		DBName:     envOr("TEST_DB_NAME", "test"),
	}

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Skipf("Skipping integration tests: %v", err)
	}
	t.Cleanup(db.Close)

	require.NoError(t, db.RunMigrations(ctx, "../../migrations"))
	require.NoError(t, db.Exec(ctx,
		"TRUNCATE oauth_refresh_tokens, oauth_access_tokens, oauth_grants, oauth_applications"))

	return db
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

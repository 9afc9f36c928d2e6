package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ipede/oauth-provider-service/internal/application"
	"github.com/ipede/oauth-provider-service/internal/infrastructure/config"
	"github.com/ipede/oauth-provider-service/internal/infrastructure/database"
	"github.com/ipede/oauth-provider-service/internal/infrastructure/repository"
	"go.uber.org/zap"
)

// The purge worker sweeps expired grants and access tokens out of the
// store on a fixed interval. The protocol front-end consumes this module
// as a library; this binary is the only long-running process the store
// needs.
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig(logger)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	grants := application.NewGrantService(repository.NewGrantRepository(db, logger), cfg.GrantTTL, logger)
	tokens := application.NewTokenService(repository.NewTokenRepository(db, logger), cfg.AccessTokenTTL, logger)

	ticker := time.NewTicker(cfg.PurgeInterval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Starting purge worker", zap.Duration("interval", cfg.PurgeInterval))
	purge(ctx, grants, tokens, logger)

	for {
		select {
		case <-ticker.C:
			purge(ctx, grants, tokens, logger)
		case <-quit:
			logger.Info("Purge worker exited properly")
			return
		}
	}
}

func purge(ctx context.Context, grants *application.GrantService, tokens *application.TokenService, logger *zap.Logger) {
	if removed, err := grants.PurgeExpired(ctx); err != nil {
		logger.Error("Failed to purge expired grants", zap.Error(err))
	} else if removed > 0 {
		logger.Info("Purged expired grants", zap.Int64("count", removed))
	}

	if removed, err := tokens.PurgeExpired(ctx); err != nil {
		logger.Error("Failed to purge expired access tokens", zap.Error(err))
	} else if removed > 0 {
		logger.Info("Purged expired access tokens", zap.Int64("count", removed))
	}
}

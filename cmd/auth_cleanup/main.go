package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/repository"
)

// Revoked refresh tokens are kept this long so reuse can still be detected.
const revokedRetention = 30 * 24 * time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadBackendConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}

	ctx := context.Background()
	now := time.Now().UTC()

	tokens, err := repository.NewRefreshTokenRepository(db).DeleteStale(ctx, now, now.Add(-revokedRetention))
	if err != nil {
		logger.Fatal("cleanup refresh_tokens failed", zap.Error(err))
	}
	codes, err := repository.NewOTPRepository(db).DeleteStale(ctx, now)
	if err != nil {
		logger.Fatal("cleanup otp_codes failed", zap.Error(err))
	}

	logger.Info("auth cleanup completed", zap.Int64("refresh_tokens", tokens), zap.Int64("otp_codes", codes))
}

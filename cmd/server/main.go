package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookkeeping-backend/internal/config"
	"bookkeeping-backend/internal/database"
	"bookkeeping-backend/internal/logger"
	"bookkeeping-backend/internal/server"

	"go.uber.org/zap"
)

func main() {
	envFile := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogMode))
	defer func() {
		_ = baseLogger.Sync()
	}()
	zap.ReplaceGlobals(baseLogger)

	for _, w := range cfg.Warnings() {
		baseLogger.Warn(w)
	}

	db, err := database.Open(cfg, logger.Named(baseLogger, "database"))
	if err != nil {
		baseLogger.Fatal("failed to open database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		baseLogger.Fatal("failed to migrate database", zap.Error(err))
	}
	if cfg.SeedDefaults {
		if err := database.Seed(context.Background(), db); err != nil {
			baseLogger.Fatal("failed to seed defaults", zap.Error(err))
		}
	}

	app := server.New(cfg, db, baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting",
			zap.String("port", cfg.HTTPPort),
			zap.String("driver", cfg.DatabaseDriver))
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			baseLogger.Error("failed to close database", zap.Error(err))
		}
	}
	baseLogger.Info("server stopped")
}

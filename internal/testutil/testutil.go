// Package testutil opens seeded in-memory databases and writes fixtures
// for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bookkeeping-backend/internal/config"
	"bookkeeping-backend/internal/database"
	"bookkeeping-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const JWTSecret = "test-secret-0123456789abcdef0123456789"

// Config returns a valid configuration pointing at a fresh in-memory sqlite database.
func Config() *config.Config {
	return &config.Config{
		HTTPPort:       "8080",
		DatabaseDriver: config.DriverSQLite,
		DatabaseDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		JWTSecret:      JWTSecret,
		CORSOrigins:    config.DefaultCORSOrigins,
		LogMode:        "development",
		SeedDefaults:   true,
	}
}

// DB returns a migrated and seeded database private to the test.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	return DBWith(tb, Config())
}

func DBWith(tb testing.TB, cfg *config.Config) *gorm.DB {
	tb.Helper()
	db, err := database.Open(cfg, zap.NewNop())
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	if cfg.SeedDefaults {
		if err := database.Seed(context.Background(), db); err != nil {
			tb.Fatalf("seed test db: %v", err)
		}
	}
	return db
}

func Day(s string) time.Time {
	d, err := models.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

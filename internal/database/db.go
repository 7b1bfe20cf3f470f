package database

import (
	"fmt"
	"time"

	"bookkeeping-backend/internal/config"
	"bookkeeping-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured store. The returned handle is passed
// explicitly to every service.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, GormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DatabaseDriver, err)
	}

	if cfg.DatabaseDriver == config.DriverSQLite {
		if err := configureSQLite(db); err != nil {
			return nil, err
		}
	}

	log.Info("database connected", zap.String("driver", cfg.DatabaseDriver))
	return db, nil
}

// configureSQLite pins the pool to a single connection, so in-memory
// databases survive and writers never see SQLITE_BUSY, then enables
// foreign keys on it.
func configureSQLite(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxIdleTime(0)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return fmt.Errorf("enable sqlite foreign keys: %w", err)
	}
	return nil
}

// GormConfig routes gorm's own logging through zap and turns driver
// errors into gorm's portable ones (ErrDuplicatedKey, ErrForeignKeyViolated).
func GormConfig(log *zap.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Migrate creates or updates every table. Order follows foreign keys.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.AuditLog{},
		&models.Entity{},
		&models.RelationshipType{},
		&models.Relationship{},
		&models.TransactionType{},
		&models.Transaction{},
		&models.WorkType{},
		&models.WorkLog{},
		&models.Payroll{},
		&models.SupplyType{},
		&models.SupplyPayment{},
		&models.SupplyLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"evcharge-client/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the local cache and migrates models into it.
// CACHE_DRIVER selects sqlite (a file next to the CLI) or postgres (a shared mirror).
func InitDB(config utils.CacheConfig, log *zap.Logger, models ...any) (*gorm.DB, error) {
	dialector, err := dialectorFor(config)
	if err != nil {
		return nil, err
	}

	gormLogger := logger.Default.LogMode(logger.Silent)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	maxConns := config.MaxConns
	if maxConns <= 0 {
		maxConns = 1
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("automigrate cache: %w", err)
	}

	log.Debug("Cache database ready",
		zap.String("driver", config.Driver),
		zap.Int("models", len(models)),
	)
	return db, nil
}

func dialectorFor(config utils.CacheConfig) (gorm.Dialector, error) {
	switch config.Driver {
	case "", "sqlite":
		if dir := filepath.Dir(config.DSN); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create cache directory: %w", err)
			}
		}
		return sqlite.Open(config.DSN), nil
	case "postgres":
		return postgres.Open(config.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported cache driver %q", config.Driver)
	}
}

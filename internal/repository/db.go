package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/timmy/picprompt/internal/config"
	"github.com/timmy/picprompt/internal/domain"
	applog "github.com/timmy/picprompt/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the preset database and, when configured, migrates it.
// Parameters:
//   - cfg: database configuration including driver and connection settings.
// Returns:
//   - *gorm.DB: initialized database handle.
//   - error: non-nil if connection or migration fails.
func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	log := applog.GetDefault().WithComponent("db").WithField("driver", cfg.Driver)

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialector.Name(), err)
	}

	if dialector.Name() == "sqlite" {
		// Presets are read on every compose request while edits are rare
		db.Exec("PRAGMA journal_mode=WAL")
		db.Exec("PRAGMA busy_timeout=5000")
	}

	if err := configurePool(db, cfg); err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Debug("Preset schema migrated")
	}

	log.Infof("Database ready: dialect=%s", dialector.Name())
	return db, nil
}

// Migrate creates or updates the preset table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Preset{}); err != nil {
		return fmt.Errorf("migrate presets: %w", err)
	}
	return nil
}

// dialectorFor maps the configured driver onto a gorm dialector.
// Unknown drivers fall back to SQLite with a warning.
func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		// Simple protocol keeps transaction poolers working
		return postgres.New(postgres.Config{
			DSN:                  cfg.DSN(),
			PreferSimpleProtocol: true,
		}), nil
	case "sqlite", "":
	default:
		applog.GetDefault().WithComponent("db").Warnf("Unknown driver %q, using SQLite", cfg.Driver)
	}

	if needsDir(cfg.Path) {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return sqlite.Open(cfg.DSN()), nil
}

func needsDir(path string) bool {
	return path != "" && path != ":memory:" && !strings.HasPrefix(path, "file:")
}

func configurePool(db *gorm.DB, cfg *config.DatabaseConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return nil
}

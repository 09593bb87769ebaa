// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and schema migrations.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-warehouse-backend/internal/domain"
)

// PoolOptions tunes the database/sql connection pool behind GORM.
// Zero values fall back to the defaults below.
type PoolOptions struct {
	MaxOpen     int
	MaxIdle     int
	ConnMaxIdle time.Duration
	ConnMaxLife time.Duration
}

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string, pool PoolOptions) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if pool.MaxOpen <= 0 {
		pool.MaxOpen = 10
	}
	if pool.MaxIdle <= 0 {
		pool.MaxIdle = 10
	}
	if pool.ConnMaxIdle <= 0 {
		pool.ConnMaxIdle = 5 * time.Minute
	}
	if pool.ConnMaxLife <= 0 {
		pool.ConnMaxLife = 30 * time.Minute
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(pool.MaxOpen)
		sqlDB.SetMaxIdleConns(pool.MaxIdle)
		sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdle)
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLife)
	}

	return db, nil
}

// EnableTracing installs the GORM OpenTelemetry plugin so every query shows
// up as a span under the active trace. Call it once after OpenSQLite when
// tracing is enabled.
func EnableTracing(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}

// AutoMigrate creates or updates the schema for all persistent models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.WarehouseBinding{},
		&domain.Idempotency{},
	)
}

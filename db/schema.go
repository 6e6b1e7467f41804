// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/scan-for-a-prize/models"
)

// Config returns the GORM settings shared by every connection. Timestamps are
// always UTC so they compare correctly in SQLite's text representation.
func Config() *gorm.Config {
	return &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Open connects to PostgreSQL (lib/pq) or SQLite (modernc) and wraps the
// connection in GORM.
func Open(databaseType, databaseURL string) (*gorm.DB, error) {
	switch databaseType {
	case "postgres":
		sqlDB, err := sql.Open("postgres", databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		if err := sqlDB.Ping(); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), Config())

	case "sqlite":
		sqlDB, err := OpenSQLite(databaseURL)
		if err != nil {
			return nil, err
		}
		return gorm.Open(&sqlite.Dialector{Conn: sqlDB}, Config())

	default:
		return nil, fmt.Errorf("unsupported database type %q", databaseType)
	}
}

// OpenSQLite opens a modernc SQLite database. SQLite allows a single writer,
// so the pool is limited to one connection.
func OpenSQLite(dsn string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to configure sqlite: %w", err)
	}
	return sqlDB, nil
}

// Migrate creates or updates all tables and indexes.
// Safe to call multiple times.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.AllRecords()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

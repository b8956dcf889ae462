// Package gormdb implements the repository interfaces on GORM.
//
// Postgres is the production backend. SQLite (pure Go, no CGo) backs local
// development and the package's own tests — an in-memory database per test,
// created and migrated in milliseconds.
//
// The schema is migrated on open. AutoMigrate is additive only: it creates
// missing tables, columns, and indexes, and never drops anything, which is
// the right trade-off for a single-service schema like this one.
package gormdb

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sakif/devfolio/internal/model"
)

// Transaction bounds for the aggregate save, mirroring the write path's
// tolerance for contention: wait a little for a connection, never let one
// save block a request indefinitely.
const (
	txMaxWait = 10 * time.Second // max wait to acquire a pooled connection
	txTimeout = 20 * time.Second // overall bound on one aggregate save
)

// DB wraps a *gorm.DB and implements repository.PortfolioStore.
type DB struct {
	conn *gorm.DB
}

// NewPostgres opens a Postgres-backed store from a DSN and migrates the
// schema.
func NewPostgres(dsn string) (*DB, error) {
	return open(postgres.Open(dsn))
}

// NewSQLite opens a SQLite-backed store. Use ":memory:" for a throwaway
// database (tests, local experiments) or a file path for persistence.
func NewSQLite(path string) (*DB, error) {
	return open(sqlite.Open(path))
}

func open(dialector gorm.Dialector) (*DB, error) {
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gormdb: opening database: %w", err)
	}

	// Bound connection acquisition so a contended aggregate save fails fast
	// instead of queueing forever behind the pool.
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("gormdb: unwrapping connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxIdleTime(txMaxWait)

	if err := conn.AutoMigrate(
		&model.User{},
		&model.Portfolio{},
		&model.Skill{},
		&model.Social{},
		&model.Repository{},
		&model.PortfolioRepository{},
	); err != nil {
		return nil, fmt.Errorf("gormdb: migrating schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close releases the underlying connection pool.
func (db *DB) Close() error {
	sqlDB, err := db.conn.DB()
	if err != nil {
		return fmt.Errorf("gormdb: unwrapping connection pool: %w", err)
	}
	return sqlDB.Close()
}

package testutil

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB creates an in-memory SQLite database for testing purposes.
// It auto-migrates the provided models and ensures the underlying connection
// is closed when the test finishes. The pool is capped at one connection, so
// concurrent transactions run one at a time.
func NewTestDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("failed to migrate test database: %v", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB from gorm: %v", err)
	}

	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// SharedDB configures NewSharedTestDB.
type SharedDB struct {
	// Conns is the number of pooled connections; it should cover the
	// goroutines a test runs at once.
	Conns int
	// ImmediateTx opens every transaction with BEGIN IMMEDIATE, so a
	// transaction holds the write lock from its first statement, the way a
	// row lock taken first holds it on a server database.
	ImmediateTx bool
}

// NewSharedTestDB opens a file backed SQLite database in WAL mode behind a
// pool of several connections. Transactions from different goroutines run on
// different connections and wait on each other through busy_timeout, so
// concurrency tests exercise the database's locking rather than the pool's.
func NewSharedTestDB(t *testing.T, opts SharedDB, models ...any) *gorm.DB {
	t.Helper()

	if opts.Conns <= 0 {
		opts.Conns = 8
	}

	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_busy_timeout", "10000")
	if opts.ImmediateTx {
		params.Set("_txlock", "immediate")
	}
	dsn := fmt.Sprintf("file:%s?%s", filepath.Join(t.TempDir(), "test.db"), params.Encode())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to open shared test database: %v", err)
	}

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("failed to migrate shared test database: %v", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(opts.Conns)
	sqlDB.SetMaxIdleConns(opts.Conns)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

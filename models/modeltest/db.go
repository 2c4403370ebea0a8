// Package modeltest opens throwaway SQLite databases for store tests.
package modeltest

import (
	"testing"

	"github.com/parishdesk/parish_backend/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open returns a fresh in-memory database with foreign keys enforced, migrated
// by migrate. The pool is pinned to one connection so the database lives as
// long as the test; callers must not use the pool while holding a transaction.
func Open(t testing.TB, migrate func(*gorm.DB) error) *gorm.DB {
	t.Helper()

	db, err := config.OpenDatabase(sqlite.Open("file::memory:?_foreign_keys=on"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if migrate != nil {
		if err := migrate(db); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db
}

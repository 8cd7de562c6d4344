// Package testutil opens throwaway databases and seeds fixtures for package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/timmy/jokegen/internal/config"
	"github.com/timmy/jokegen/internal/repository"
	"gorm.io/gorm"
)

// DB opens a migrated SQLite database in a temp dir that is removed with the test.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	cfg := &config.DatabaseConfig{
		Driver:          "sqlite",
		Path:            filepath.Join(tb.TempDir(), "jokes.db"),
		MaxIdleConns:    1,
		MaxOpenConns:    1,
		ConnMaxLifetime: time.Hour,
		AutoMigrate:     true,
	}
	db, err := repository.InitDB(cfg)
	if err != nil {
		tb.Fatalf("failed to init test db: %v", err)
	}
	tb.Cleanup(func() {
		_ = repository.Close(db)
	})
	return db
}

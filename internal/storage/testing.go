package storage

import (
	"path/filepath"
	"testing"
)

// NewTestService opens a migrated database in a temporary directory and
// closes it when the test ends. It is exported for use in other packages'
// tests.
func NewTestService(tb testing.TB) *Service {
	tb.Helper()

	config := DefaultConfig(filepath.Join(tb.TempDir(), "test.db"))
	config.AutoMigrate = true

	db, err := Open(config)
	if err != nil {
		tb.Fatalf("Failed to open test database: %v", err)
	}

	tb.Cleanup(func() {
		_ = db.Close()
	})

	return NewService(db)
}

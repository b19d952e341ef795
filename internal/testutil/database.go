// Package testutil provides shared test helpers: a migrated SQLite database,
// an in-memory history log and file fixtures.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/folderly/internal/storage"
)

// SetupTestDB creates a migrated SQLite database in a temporary directory.
// It is closed automatically when the test finishes.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	history := storage.NewHistoryRepository(db, "alice")
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	db, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := db.Migrate(context.Background()); err != nil {
		_ = db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

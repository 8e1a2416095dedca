package repository

import (
	"context"
	"path/filepath"
	"testing"

	"boutique/internal/database"

	"go.uber.org/zap"
)

// newTestStore opens a fresh embedded database in a temp dir with the
// full schema applied. The sqlite backend exercises the exact adapter
// production runs with.
func newTestStore(t *testing.T) database.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	store, err := database.Open(database.Config{Path: path}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := database.RunMigrations(store, zap.NewNop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return store
}

func countRows(t *testing.T, store database.Store, table string) int {
	t.Helper()

	var n int
	if err := store.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

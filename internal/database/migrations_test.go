package database

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestRunMigrationsCreatesSchema(t *testing.T) {
	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "schema.db")}, zap.NewNop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if err := RunMigrations(s, zap.NewNop()); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	ctx := context.Background()
	for _, table := range []string{"users", "products", "product_images", "orders", "order_items", "payments"} {
		var name string
		err := s.QueryRow(ctx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing after migrations: %v", table, err)
		}
	}

	// Applying again must be a no-op.
	if err := RunMigrations(s, zap.NewNop()); err != nil {
		t.Fatalf("second RunMigrations failed: %v", err)
	}
}

func TestMigrationDirectoriesMirrorEachOther(t *testing.T) {
	names := func(dir string) map[string]bool {
		entries, err := fs.ReadDir(embeddedMigrations, dir)
		if err != nil {
			t.Fatalf("failed to read %s: %v", dir, err)
		}
		set := make(map[string]bool, len(entries))
		for _, e := range entries {
			set[e.Name()] = true
		}
		return set
	}

	sqlite := names("migrations/sqlite")
	postgres := names("migrations/postgres")

	if len(sqlite) == 0 {
		t.Fatal("no embedded sqlite migrations")
	}
	for name := range sqlite {
		if !postgres[name] {
			t.Errorf("migration %s missing from postgres directory", name)
		}
	}
	for name := range postgres {
		if !sqlite[name] {
			t.Errorf("migration %s missing from sqlite directory", name)
		}
	}
}

func TestMigrationsCarryGooseMarkers(t *testing.T) {
	err := fs.WalkDir(embeddedMigrations, "migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(embeddedMigrations, path)
		if err != nil {
			return err
		}
		content := string(data)
		if !strings.Contains(content, "+goose Up") {
			t.Errorf("%s missing +goose Up marker", path)
		}
		if !strings.Contains(content, "+goose Down") {
			t.Errorf("%s missing +goose Down marker", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
}

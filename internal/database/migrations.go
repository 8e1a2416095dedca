package database

import (
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var embeddedMigrations embed.FS

// RunMigrations applies all pending migrations for the store's backend.
// The SQL differs per engine (serial vs autoincrement ids), so each
// dialect ships its own embedded directory.
func RunMigrations(s Store, logger *zap.Logger) error {
	if err := goose.SetDialect(s.Dialect()); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	dir := "migrations/postgres"
	if s.Dialect() == "sqlite3" {
		dir = "migrations/sqlite"
	}

	goose.SetBaseFS(embeddedMigrations)
	defer goose.SetBaseFS(nil)

	logger.Info("Checking for pending migrations...", zap.String("dir", dir))

	if err := goose.Up(s.DB(), dir); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations completed successfully")
	return nil
}

package database

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// sqliteDialect backs the embedded single-file engine. SQLite accepts `?`
// placeholders natively and exposes generated ids via LastInsertId.
type sqliteDialect struct{}

func (sqliteDialect) name() string { return "sqlite3" }

func (sqliteDialect) rebind(query string) string { return query }

func (sqliteDialect) insert(ctx context.Context, run runner, query string, args ...any) (int64, error) {
	res, err := run.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// foreign_keys must be on for the cascade deletes the schema relies on;
// busy_timeout keeps concurrent checkout writers from failing fast on the
// single-writer lock.
const sqlitePragmas = "_pragma=journal_mode(WAL)" +
	"&_pragma=foreign_keys(ON)" +
	"&_pragma=busy_timeout(5000)" +
	"&_pragma=synchronous(NORMAL)"

func openSQLite(cfg Config) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if !strings.HasPrefix(path, "file:") {
		path = filepath.Clean(path)
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	db, err := openAndPing("sqlite", path+sep+sqlitePragmas)
	if err != nil {
		return nil, err
	}

	// SQLite allows one writer at a time; a single pooled connection
	// lets concurrent transactions queue instead of erroring busy.
	db.SetMaxOpenConns(1)

	return &store{db: db, d: sqliteDialect{}, txTimeout: cfg.TxTimeout}, nil
}

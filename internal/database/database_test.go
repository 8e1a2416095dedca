package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "test.db")}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.Exec(context.Background(), `CREATE TABLE widgets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return s
}

func TestPostgresRebind(t *testing.T) {
	d := postgresDialect{}

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "no placeholders",
			query: "SELECT id FROM users",
			want:  "SELECT id FROM users",
		},
		{
			name:  "single placeholder",
			query: "SELECT id FROM users WHERE email = ?",
			want:  "SELECT id FROM users WHERE email = $1",
		},
		{
			name:  "numbered in order",
			query: "INSERT INTO orders (email, total_amount, status) VALUES (?, ?, ?)",
			want:  "INSERT INTO orders (email, total_amount, status) VALUES ($1, $2, $3)",
		},
		{
			name:  "double digit",
			query: "VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			want:  "VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.rebind(tt.query); got != tt.want {
				t.Errorf("rebind(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestSQLiteRebindIsIdentity(t *testing.T) {
	d := sqliteDialect{}
	query := "INSERT INTO users (email) VALUES (?)"
	if got := d.rebind(query); got != query {
		t.Errorf("rebind changed query: %q", got)
	}
}

func TestOpenSelectsEmbeddedBackend(t *testing.T) {
	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "select.db")}, zap.NewNop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if s.Dialect() != "sqlite3" {
		t.Errorf("expected sqlite3 dialect, got %s", s.Dialect())
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(Config{}, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestInsertReturnsGeneratedIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Insert(ctx, "INSERT INTO widgets (name) VALUES (?)", "one")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	second, err := s.Insert(ctx, "INSERT INTO widgets (name) VALUES (?)", "two")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if first == 0 || second <= first {
		t.Errorf("expected increasing generated ids, got %d then %d", first, second)
	}
}

func TestWithinTxCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(q Querier) error {
		_, err := q.Insert(ctx, "INSERT INTO widgets (name) VALUES (?)", "kept")
		return err
	})
	if err != nil {
		t.Fatalf("WithinTx failed: %v", err)
	}

	var count int
	if err := s.QueryRow(ctx, "SELECT COUNT(*) FROM widgets").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row after commit, got %d", count)
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(q Querier) error {
		if _, err := q.Insert(ctx, "INSERT INTO widgets (name) VALUES (?)", "doomed"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error to propagate, got %v", err)
	}

	var count int
	if err := s.QueryRow(ctx, "SELECT COUNT(*) FROM widgets").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 rows after rollback, got %d", count)
	}
}

func TestWithinTxCanceledContext(t *testing.T) {
	s := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.WithinTx(ctx, func(q Querier) error { return nil })
	if !errors.Is(err, ErrTransient) {
		t.Errorf("expected ErrTransient for canceled context, got %v", err)
	}
}

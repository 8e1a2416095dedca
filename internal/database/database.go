package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrTransient wraps connection and transaction failures that are safe to
// retry: transactions are atomic, so a failed operation was never partially
// applied.
var ErrTransient = errors.New("transient store error")

// DefaultTxTimeout bounds how long a unit of work may run before it is
// aborted and surfaced as transient.
const DefaultTxTimeout = 10 * time.Second

// Config selects and tunes the backend. A non-empty URL selects the
// networked Postgres backend; otherwise the embedded SQLite file at Path
// is used. The choice is made once at startup and never revisited.
type Config struct {
	URL       string
	Path      string
	TxTimeout time.Duration
}

// Querier is the query surface shared by the store and its transactions,
// so repositories run unchanged inside a unit of work. Statements are
// written with `?` placeholders; each backend rebinds as needed.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	// Insert runs an INSERT and returns the generated row id, papering
	// over the backends' different id-retrieval mechanisms.
	Insert(ctx context.Context, query string, args ...any) (int64, error)
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Store is the persistence adapter handed to every repository. One
// instance is constructed at startup and shared by all request handlers;
// the pooled connections it owns provide all concurrency control.
type Store interface {
	Querier

	// WithinTx runs fn inside a transaction: every write commits durably
	// or none does, and any error from fn rolls back before propagating.
	WithinTx(ctx context.Context, fn func(q Querier) error) error

	// Dialect returns the goose dialect name for the active backend.
	Dialect() string
	DB() *sql.DB
	Ping(ctx context.Context) error
	Close() error
}

// dialect captures what differs between the two backends: placeholder
// syntax and generated-id retrieval.
type dialect interface {
	name() string
	rebind(query string) string
	insert(ctx context.Context, run runner, query string, args ...any) (int64, error)
}

// runner is the subset of *sql.DB / *sql.Tx the dialects need.
type runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Open selects the backend from cfg, opens it, and verifies reachability.
// A store that cannot be reached at startup is a fatal condition for the
// caller; Open never degrades silently.
func Open(cfg Config, logger *zap.Logger) (Store, error) {
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = DefaultTxTimeout
	}

	if cfg.URL != "" {
		logger.Info("Using networked database backend")
		return openPostgres(cfg)
	}

	logger.Info("Using embedded database backend", zap.String("path", cfg.Path))
	return openSQLite(cfg)
}

type store struct {
	db        *sql.DB
	d         dialect
	txTimeout time.Duration
}

func (s *store) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.d.rebind(query), args...)
}

func (s *store) Insert(ctx context.Context, query string, args ...any) (int64, error) {
	return s.d.insert(ctx, s.db, query, args...)
}

func (s *store) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.d.rebind(query), args...)
}

func (s *store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.d.rebind(query), args...)
}

// WithinTx begins a transaction, runs fn against it, and commits. Rollback
// is deferred so an error or panic inside fn never leaves a partial write
// visible. The whole unit of work is bounded by the configured timeout;
// failures to begin or commit wrap ErrTransient.
func (s *store) WithinTx(ctx context.Context, fn func(q Querier) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrTransient, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&txQuerier{tx: tx, d: s.d}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrTransient, err)
	}
	return nil
}

func (s *store) Dialect() string { return s.d.name() }
func (s *store) DB() *sql.DB     { return s.db }

func (s *store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %v", ErrTransient, err)
	}
	return nil
}

func (s *store) Close() error { return s.db.Close() }

// txQuerier adapts an open transaction to the shared Querier surface.
type txQuerier struct {
	tx *sql.Tx
	d  dialect
}

func (t *txQuerier) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.d.rebind(query), args...)
}

func (t *txQuerier) Insert(ctx context.Context, query string, args ...any) (int64, error) {
	return t.d.insert(ctx, t.tx, query, args...)
}

func (t *txQuerier) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.d.rebind(query), args...)
}

func (t *txQuerier) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, t.d.rebind(query), args...)
}

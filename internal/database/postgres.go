package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// postgresDialect backs the networked multi-user engine. Postgres wants
// `$N` placeholders and returns generated ids through RETURNING.
type postgresDialect struct{}

func (postgresDialect) name() string { return "postgres" }

// rebind rewrites `?` placeholders to `$1..$n`. Statements are authored
// in-repo, so no quote-awareness is needed.
func (postgresDialect) rebind(query string) string {
	if !strings.ContainsRune(query, '?') {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d postgresDialect) insert(ctx context.Context, run runner, query string, args ...any) (int64, error) {
	var id int64
	err := run.QueryRowContext(ctx, d.rebind(query)+" RETURNING id", args...).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func openPostgres(cfg Config) (Store, error) {
	db, err := openAndPing("pgx", cfg.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return &store{db: db, d: postgresDialect{}, txTimeout: cfg.TxTimeout}, nil
}

func openAndPing(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping %s database: %v", ErrTransient, driver, err)
	}
	return db, nil
}

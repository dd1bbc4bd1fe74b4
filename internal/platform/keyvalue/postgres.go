package keyvalue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

const (
	defaultTable        = "kv_store"
	defaultPingTimeout  = 5 * time.Second
	defaultMaxIdleConns = 5
)

type pgTxKey struct{}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresOptions configures the Postgres-backed store.
type PostgresOptions struct {
	DSN          string
	Table        string
	MaxOpenConns int
}

// PostgresStore persists keyed values in a single Postgres table.
type PostgresStore struct {
	db    *sql.DB
	table string
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects, verifies the connection and ensures the table exists.
func OpenPostgres(ctx context.Context, opts PostgresOptions) (*PostgresStore, error) {
	if strings.TrimSpace(opts.DSN) == "" {
		return nil, errors.New("keyvalue: postgres dsn is required")
	}
	db, err := sql.Open("postgres", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("keyvalue: open db: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	store := NewPostgresStore(db, opts.Table)
	if err := store.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("keyvalue: db ping failed: %w", err)
	}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStore wraps an existing connection pool. The table must already exist.
func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	if strings.TrimSpace(table) == "" {
		table = defaultTable
	}
	return &PostgresStore{db: db, table: pq.QuoteIdentifier(table)}
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		value JSONB,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("keyvalue: create table: %w", err)
	}
	return nil
}

func (s *PostgresStore) conn(ctx context.Context) queryer {
	if tx, ok := ctx.Value(pgTxKey{}).(*sql.Tx); ok && tx != nil {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, s.table)
	err := s.conn(ctx).QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && value == nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, translate(err)
	}
	return value, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	stmt := fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, s.table)
	_, err := s.conn(ctx).ExecContext(ctx, stmt, key, value)
	return translate(err)
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	stmt := fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, s.table)
	_, err := s.conn(ctx).ExecContext(ctx, stmt, key)
	return translate(err)
}

// Update locks the row with SELECT ... FOR UPDATE inside a transaction.
func (s *PostgresStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return s.RunInTx(ctx, func(ctx context.Context) error {
		q := s.conn(ctx)
		ensure := fmt.Sprintf(`INSERT INTO %s (key, value) VALUES ($1, NULL) ON CONFLICT (key) DO NOTHING`, s.table)
		if _, err := q.ExecContext(ctx, ensure, key); err != nil {
			return translate(err)
		}

		var current []byte
		lock := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1 FOR UPDATE`, s.table)
		if err := q.QueryRowContext(ctx, lock, key).Scan(&current); err != nil {
			return translate(err)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			return s.Delete(ctx, key)
		}
		return s.Put(ctx, key, next)
	})
}

func (s *PostgresStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	query := fmt.Sprintf(`SELECT key FROM %s WHERE key LIKE $1 AND value IS NOT NULL ORDER BY key`, s.table)
	rows, err := s.conn(ctx).QueryContext(ctx, query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, translate(err)
		}
		keys = append(keys, key)
	}
	return keys, translate(rows.Err())
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(pgTxKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return translate(err)
	}
	if err := fn(context.WithValue(ctx, pgTxKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return translate(tx.Commit())
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// translate maps serialization and deadlock failures onto ErrConflict.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "40" {
		return fmt.Errorf("%w: %s", ErrConflict, pqErr.Message)
	}
	return err
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

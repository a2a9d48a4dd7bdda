// Package pgstore implements auth.Store on PostgreSQL with pgx.
//
// Every transaction runs at SERIALIZABLE isolation and is retried on
// serialization failures. The schema ships with the package and is applied
// with pg.Migrate(ctx, pool, pgstore.Migrations(), cfg, log).
package pgstore

import (
	"context"
	"embed"
	"io/fs"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/credkit/pkg/auth"
	"github.com/dmitrymomot/credkit/pkg/pg"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the goose migrations of the credential schema.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Store is a PostgreSQL auth.Store.
type Store struct {
	db        pg.TxBeginner
	attempts  int
	secretKey []byte
}

var _ auth.Store = (*Store)(nil)

type Option func(*Store)

// WithMaxAttempts bounds how often a transaction is run on serialization failures.
func WithMaxAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// WithSecretKey encrypts TOTP secrets at rest with AES-256-GCM.
// The key must be 32 bytes and stay the same for the life of the data.
func WithSecretKey(key []byte) Option {
	return func(s *Store) {
		if len(key) > 0 {
			s.secretKey = append([]byte(nil), key...)
		}
	}
}

// New creates a store over db, usually a *pgxpool.Pool.
func New(db pg.TxBeginner, opts ...Option) *Store {
	s := &Store{db: db, attempts: 3}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithTx implements auth.Store.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx auth.Tx) error) error {
	return pg.WithTx(ctx, s.db, pg.Serializable, s.attempts, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &txn{tx: tx, secretKey: s.secretKey})
	})
}

package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// TxBeginner is implemented by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Serializable are the options used for every credential mutation.
var Serializable = pgx.TxOptions{IsoLevel: pgx.Serializable}

// WithTx runs fn in a transaction, committing when it returns nil and rolling
// back otherwise, panics included. A serialization failure or deadlock on
// any step reruns the whole transaction, up to attempts times in total.
func WithTx(ctx context.Context, db TxBeginner, opts pgx.TxOptions, attempts int, fn func(ctx context.Context, tx pgx.Tx) error) error {
	attempts = max(attempts, 1)
	var err error
	for range attempts {
		err = runTx(ctx, db, opts, fn)
		if err == nil || !IsSerializationFailure(err) {
			return err
		}
		if ctx.Err() != nil {
			return errors.Join(err, ctx.Err())
		}
	}
	return errors.Join(ErrTxRetriesExhausted, err)
}

func runTx(ctx context.Context, db TxBeginner, opts pgx.TxOptions, fn func(ctx context.Context, tx pgx.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			return
		}
		err = tx.Commit(ctx)
	}()

	return fn(ctx, tx)
}

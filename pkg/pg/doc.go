// Package pg bootstraps PostgreSQL access on top of pgx/v5: a pooled
// connection with startup retries, goose migrations read from an fs.FS,
// a health probe, and a transaction runner that retries serializable
// transactions on conflict.
//
// # Usage
//
//	cfg := config.MustLoad[pg.Config]()
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, pgstore.Migrations, cfg, log); err != nil {
//		return err
//	}
//
//	err = pg.WithTx(ctx, pool, pg.Serializable, cfg.TxMaxAttempts, func(ctx context.Context, tx pgx.Tx) error {
//		_, err := tx.Exec(ctx, "UPDATE ...")
//		return err
//	})
//
// # Error Handling
//
// IsNotFoundError, IsDuplicateKeyError, IsForeignKeyViolationError and
// IsSerializationFailure classify errors returned by pgx so callers can map
// them onto their own error types without importing pgconn.
package pg

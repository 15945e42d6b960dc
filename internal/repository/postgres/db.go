// Package postgres holds the sqlx-backed persistence adapter and repositories.
package postgres

import (
	"context"

	"devtrack/pkg/config"
	dterrors "devtrack/pkg/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const devicesSchema = `
	CREATE TABLE IF NOT EXISTS devices (
		device_name   TEXT NOT NULL,
		serial_number TEXT NOT NULL UNIQUE,
		user_name     TEXT NULL
	)
`

// Connect opens the shared pool, applies pool limits and verifies connectivity
// within cfg.ConnectTimeout.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, dterrors.Wrap(err, "failed to open database")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, dterrors.Wrap(err, "failed to reach database")
	}

	return db, nil
}

// EnsureSchema creates the devices table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, devicesSchema); err != nil {
		return dterrors.Wrap(err, "failed to create devices table")
	}
	return nil
}

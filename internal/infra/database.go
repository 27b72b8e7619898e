package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresPool configures and returns a PostgreSQL connection pool.
func NewPostgresPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, fmt.Errorf("database url is required")
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// Migrate applies the wallet service schema. Statements are idempotent so the
// call is safe on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
    id           UUID PRIMARY KEY,
    customer_xid TEXT NOT NULL UNIQUE,
    token        TEXT NOT NULL UNIQUE,
    created_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS wallets (
    id         UUID PRIMARY KEY,
    owner_id   TEXT NOT NULL UNIQUE,
    balance    BIGINT NOT NULL CHECK (balance >= 0),
    enabled    BOOLEAN NOT NULL,
    enabled_at TIMESTAMPTZ NOT NULL,
    version    BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_entries (
    seq               BIGSERIAL,
    id                UUID PRIMARY KEY,
    owner_id          TEXT NOT NULL,
    kind              TEXT NOT NULL,
    amount            BIGINT NOT NULL CHECK (amount > 0),
    resulting_balance BIGINT NOT NULL,
    reference_id      TEXT NOT NULL,
    counterparty      TEXT NOT NULL,
    occurred_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS ledger_entries_owner_occurred_idx
    ON ledger_entries (owner_id, occurred_at);
`
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

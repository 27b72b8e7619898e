package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TechLead-War/wallet/internal/ledger"
	"github.com/TechLead-War/wallet/internal/wallet"
)

// Postgres backs the wallet store and transaction ledger with a shared pgx
// pool. Atomically wraps the paired wallet update and ledger append in one
// database transaction, so a cancelled or failed operation leaves no partial
// effect.
type Postgres struct {
	pool    *pgxpool.Pool
	wallets *wallet.PostgresRepository
	entries *ledger.PostgresLedger
}

// NewPostgres builds the Postgres-backed storage provider.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{
		pool:    pool,
		wallets: wallet.NewPostgresRepository(pool),
		entries: ledger.NewPostgresLedger(pool),
	}
}

// Wallets returns the wallet store bound to the pool.
func (p *Postgres) Wallets() wallet.Repository { return p.wallets }

// Entries returns the transaction ledger bound to the pool.
func (p *Postgres) Entries() ledger.Ledger { return p.entries }

// Atomically runs fn with repositories bound to a single transaction and
// commits only when fn succeeds.
func (p *Postgres) Atomically(ctx context.Context, fn func(wallets wallet.Repository, entries ledger.Ledger) error) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin storage tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := fn(wallet.NewPostgresRepository(tx), ledger.NewPostgresLedger(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit storage tx: %w", err)
	}
	return nil
}

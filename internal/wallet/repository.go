package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists wallet records.
//
// ApplyMutation is a conditional update: it commits only when the stored
// version still equals expectedVersion and fails with ErrConflict otherwise,
// so a read-modify-write sequence detects interleaved writers.
type Repository interface {
	FindByOwner(ctx context.Context, ownerID string) (Wallet, error)
	Create(ctx context.Context, w Wallet) (Wallet, error)
	ApplyMutation(ctx context.Context, walletID string, expectedVersion int64, newBalance int64, enabled bool, enabledAt time.Time) (Wallet, error)
	List(ctx context.Context) ([]Wallet, error)
}

const uniqueViolationCode = "23505"

// Querier is the subset of pgx operations the repository needs. Both
// *pgxpool.Pool and pgx.Tx satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db Querier
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByOwner fetches the owner's wallet.
func (r *PostgresRepository) FindByOwner(ctx context.Context, ownerID string) (Wallet, error) {
	row := r.db.QueryRow(ctx, `SELECT id, owner_id, balance, enabled, enabled_at, version
        FROM wallets WHERE owner_id = $1`, ownerID)
	w, err := scanWallet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, fmt.Errorf("find wallet by owner: %w", err)
	}
	return w, nil
}

// Create inserts a wallet record. At most one wallet exists per owner.
func (r *PostgresRepository) Create(ctx context.Context, w Wallet) (Wallet, error) {
	_, err := r.db.Exec(ctx, `INSERT INTO wallets (id, owner_id, balance, enabled, enabled_at, version)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		w.ID, w.OwnerID, w.Balance, w.Enabled, w.EnabledAt.UTC(), w.Version)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return Wallet{}, ErrAlreadyExists
		}
		return Wallet{}, fmt.Errorf("create wallet: %w", err)
	}
	return w, nil
}

// ApplyMutation performs the optimistic-concurrency update of balance and
// lifecycle state, bumping the version on success.
func (r *PostgresRepository) ApplyMutation(ctx context.Context, walletID string, expectedVersion int64, newBalance int64, enabled bool, enabledAt time.Time) (Wallet, error) {
	row := r.db.QueryRow(ctx, `UPDATE wallets
        SET balance = $1, enabled = $2, enabled_at = $3, version = version + 1
        WHERE id = $4 AND version = $5
        RETURNING id, owner_id, balance, enabled, enabled_at, version`,
		newBalance, enabled, enabledAt.UTC(), walletID, expectedVersion)
	w, err := scanWallet(row)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Wallet{}, fmt.Errorf("apply wallet mutation: %w", err)
	}

	// No row matched: either the wallet is gone or the version moved on.
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM wallets WHERE id = $1)`, walletID).Scan(&exists); err != nil {
		return Wallet{}, fmt.Errorf("apply wallet mutation: %w", err)
	}
	if !exists {
		return Wallet{}, ErrNotFound
	}
	return Wallet{}, ErrConflict
}

// List returns every wallet; used by the reconciliation sweep.
func (r *PostgresRepository) List(ctx context.Context) ([]Wallet, error) {
	rows, err := r.db.Query(ctx, `SELECT id, owner_id, balance, enabled, enabled_at, version
        FROM wallets ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	return wallets, nil
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var w Wallet
	if err := row.Scan(&w.ID, &w.OwnerID, &w.Balance, &w.Enabled, &w.EnabledAt, &w.Version); err != nil {
		return Wallet{}, err
	}
	w.EnabledAt = w.EnabledAt.UTC()
	return w, nil
}

package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx operations the ledger needs. Both *pgxpool.Pool
// and pgx.Tx satisfy it, so the same code serves standalone reads and the
// transactional paired write.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresLedger persists entries in PostgreSQL.
type PostgresLedger struct {
	db Querier
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db Querier) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// Append inserts one immutable entry, assigning its id and timestamp.
func (l *PostgresLedger) Append(ctx context.Context, entry Entry) (Entry, error) {
	entry.ID = uuid.NewString()
	entry.OccurredAt = time.Now().UTC()
	if entry.Counterparty == "" {
		entry.Counterparty = SelfCounterparty
	}

	_, err := l.db.Exec(ctx, `INSERT INTO ledger_entries
        (id, owner_id, kind, amount, resulting_balance, reference_id, counterparty, occurred_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.OwnerID, string(entry.Kind), entry.Amount,
		entry.ResultingBalance, entry.ReferenceID, entry.Counterparty, entry.OccurredAt)
	if err != nil {
		return Entry{}, fmt.Errorf("append ledger entry: %w", err)
	}
	return entry, nil
}

// ListByOwner returns the owner's entries ordered by occurrence time ascending.
func (l *PostgresLedger) ListByOwner(ctx context.Context, ownerID string) ([]Entry, error) {
	rows, err := l.db.Query(ctx, `SELECT id, owner_id, kind, amount, resulting_balance,
        reference_id, counterparty, occurred_at
        FROM ledger_entries WHERE owner_id = $1 ORDER BY occurred_at ASC, seq ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			kind string
		)
		if err := rows.Scan(&e.ID, &e.OwnerID, &kind, &e.Amount, &e.ResultingBalance,
			&e.ReferenceID, &e.Counterparty, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.Kind = Kind(kind)
		e.OccurredAt = e.OccurredAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, nil
}

package ledger

import (
	"context"
	"time"
)

// Kind classifies a ledger entry. Only self-transfers exist today; the type
// leaves room for future kinds such as peer transfers.
type Kind string

const (
	// KindDeposit marks an entry crediting the wallet.
	KindDeposit Kind = "deposit"
	// KindWithdrawal marks an entry debiting the wallet.
	KindWithdrawal Kind = "withdrawal"
)

// SelfCounterparty is recorded on every entry: deposits and withdrawals move
// money between the owner and themselves.
const SelfCounterparty = "self"

// Entry is one immutable record of a completed balance-affecting operation.
// Entries are never updated or deleted after Append returns.
type Entry struct {
	ID               string
	OwnerID          string
	Kind             Kind
	Amount           int64
	ResultingBalance int64
	ReferenceID      string
	Counterparty     string
	OccurredAt       time.Time
}

// Ledger is the append-only transaction store backing a wallet.
//
// Append assigns the entry id and timestamp and fails only on storage errors;
// all business validation happens before it is invoked. ListByOwner returns
// the owner's entries ordered by occurrence time ascending.
type Ledger interface {
	Append(ctx context.Context, entry Entry) (Entry, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Entry, error)
}

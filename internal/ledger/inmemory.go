package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type inMemoryLedger struct {
	mu      sync.RWMutex
	byOwner map[string][]Entry
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit
// tests and local development. Entries are held per owner in append order,
// which matches the commit-time ordering guarantee of the Postgres backend.
func NewInMemory() Ledger {
	return &inMemoryLedger{byOwner: make(map[string][]Entry)}
}

func (l *inMemoryLedger) Append(_ context.Context, entry Entry) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.ID = uuid.NewString()
	entry.OccurredAt = time.Now().UTC()
	if entry.Counterparty == "" {
		entry.Counterparty = SelfCounterparty
	}

	l.byOwner[entry.OwnerID] = append(l.byOwner[entry.OwnerID], entry)
	return entry, nil
}

func (l *inMemoryLedger) ListByOwner(_ context.Context, ownerID string) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stored := l.byOwner[ownerID]
	entries := make([]Entry, len(stored))
	copy(entries, stored)
	return entries, nil
}

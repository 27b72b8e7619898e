package storage

import (
	"context"
	"sync"

	"github.com/TechLead-War/wallet/internal/ledger"
	"github.com/TechLead-War/wallet/internal/wallet"
)

// Memory backs the stores with in-process maps. Atomically holds a store-wide
// mutex, so readers inside it never observe a half-applied paired write.
type Memory struct {
	mu      sync.Mutex
	wallets wallet.Repository
	entries ledger.Ledger
}

// NewMemory builds the in-memory storage provider.
func NewMemory() *Memory {
	return &Memory{
		wallets: wallet.NewMemoryRepository(),
		entries: ledger.NewInMemory(),
	}
}

// Wallets returns the in-memory wallet store.
func (m *Memory) Wallets() wallet.Repository { return m.wallets }

// Entries returns the in-memory transaction ledger.
func (m *Memory) Entries() ledger.Ledger { return m.entries }

// Atomically runs fn against the shared in-memory stores under an exclusive
// lock, serializing it against every other Atomically call.
func (m *Memory) Atomically(_ context.Context, fn func(wallets wallet.Repository, entries ledger.Ledger) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.wallets, m.entries)
}

package wallet

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu      sync.RWMutex
	byOwner map[string]Wallet
}

// NewMemoryRepository constructs an in-memory wallet store for tests and
// local development.
func NewMemoryRepository() Repository {
	return &memoryRepository{byOwner: make(map[string]Wallet)}
}

func (r *memoryRepository) FindByOwner(_ context.Context, ownerID string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.byOwner[ownerID]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return w, nil
}

func (r *memoryRepository) Create(_ context.Context, w Wallet) (Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byOwner[w.OwnerID]; exists {
		return Wallet{}, ErrAlreadyExists
	}
	r.byOwner[w.OwnerID] = w
	return w, nil
}

func (r *memoryRepository) ApplyMutation(_ context.Context, walletID string, expectedVersion int64, newBalance int64, enabled bool, enabledAt time.Time) (Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ownerID, w := range r.byOwner {
		if w.ID != walletID {
			continue
		}
		if w.Version != expectedVersion {
			return Wallet{}, ErrConflict
		}
		w.Balance = newBalance
		w.Enabled = enabled
		w.EnabledAt = enabledAt
		w.Version++
		r.byOwner[ownerID] = w
		return w, nil
	}
	return Wallet{}, ErrNotFound
}

func (r *memoryRepository) List(_ context.Context) ([]Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wallets := make([]Wallet, 0, len(r.byOwner))
	for _, w := range r.byOwner {
		wallets = append(wallets, w)
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].OwnerID < wallets[j].OwnerID })
	return wallets, nil
}

package identity

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	byToken map[string]User
	byXID   map[string]User
}

// NewMemoryRepository builds an in-memory user store for tests and local
// development.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		byToken: make(map[string]User),
		byXID:   make(map[string]User),
	}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byXID[user.CustomerXID]; exists {
		return ErrCustomerExists
	}
	r.byXID[user.CustomerXID] = user
	r.byToken[user.Token] = user
	return nil
}

func (r *memoryRepository) FindByToken(_ context.Context, token string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byToken[token]
	if !ok {
		return User{}, ErrUnknownCredential
	}
	return user, nil
}

package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/TechLead-War/wallet/internal/ledger"
	"github.com/TechLead-War/wallet/internal/metrics"
	"github.com/TechLead-War/wallet/internal/notification"
)

// Store exposes the wallet and ledger stores plus the atomic unit that pairs
// a wallet mutation with its ledger append. Atomically runs fn so that either
// every write inside it becomes visible or none does.
type Store interface {
	Wallets() Repository
	Entries() ledger.Ledger
	Atomically(ctx context.Context, fn func(wallets Repository, entries ledger.Ledger) error) error
}

// Options tune the engine. Zero values fall back to sane defaults.
type Options struct {
	SeedBalance     int64
	ConflictRetries int
	Notifier        notification.Notifier
}

// Service is the wallet ledger engine. It owns wallet lifecycle transitions
// and balance mutations, guaranteeing that every successful deposit or
// withdrawal commits exactly one ledger entry together with the new balance.
type Service struct {
	store    Store
	seed     int64
	retries  int
	notifier notification.Notifier
	locks    stripedLock
}

// NewService builds the engine on top of a Store.
func NewService(store Store, opts Options) *Service {
	if opts.ConflictRetries < 1 {
		opts.ConflictRetries = 3
	}
	return &Service{
		store:    store,
		seed:     opts.SeedBalance,
		retries:  opts.ConflictRetries,
		notifier: opts.Notifier,
	}
}

// Activate provisions a wallet for the owner, or re-enables an existing one.
// A fresh wallet starts with the configured seed balance; re-activation keeps
// the balance and refreshes the enable timestamp. No ledger entry is written:
// activation is not a balance-affecting event. The call is idempotent.
func (s *Service) Activate(ctx context.Context, ownerID string) (Wallet, error) {
	unlock := s.locks.lock(ownerID)
	defer unlock()

	var out Wallet
	err := s.withRetry(func() error {
		return s.store.Atomically(ctx, func(wallets Repository, _ ledger.Ledger) error {
			now := time.Now().UTC()
			current, err := wallets.FindByOwner(ctx, ownerID)
			if errors.Is(err, ErrNotFound) {
				created, err := wallets.Create(ctx, Wallet{
					ID:        uuid.NewString(),
					OwnerID:   ownerID,
					Balance:   s.seed,
					Enabled:   true,
					EnabledAt: now,
				})
				if err != nil {
					return err
				}
				out = created
				return nil
			}
			if err != nil {
				return err
			}
			updated, err := wallets.ApplyMutation(ctx, current.ID, current.Version, current.Balance, true, now)
			if err != nil {
				return err
			}
			out = updated
			return nil
		})
	})
	s.observe("activate", err)
	if err != nil {
		return Wallet{}, err
	}
	return out, nil
}

// Balance returns the owner's wallet state. It fails with ErrDisabled when
// the wallet exists but is not enabled.
func (s *Service) Balance(ctx context.Context, ownerID string) (Wallet, error) {
	w, err := s.store.Wallets().FindByOwner(ctx, ownerID)
	if err == nil && !w.Enabled {
		err = ErrDisabled
	}
	s.observe("balance", err)
	if err != nil {
		return Wallet{}, err
	}
	return w, nil
}

// Deposit credits the wallet and appends the matching ledger entry in one
// atomic unit. referenceID is recorded as an opaque reconciliation label; no
// uniqueness is enforced.
func (s *Service) Deposit(ctx context.Context, ownerID string, amount int64, referenceID string) (ledger.Entry, error) {
	entry, err := s.mutateBalance(ctx, ownerID, amount, referenceID, ledger.KindDeposit)
	s.observe("deposit", err)
	return entry, err
}

// Withdraw debits the wallet and appends the matching ledger entry in one
// atomic unit. The balance never goes below zero: a withdrawal exceeding the
// current balance fails with ErrInsufficientBalance and writes nothing.
func (s *Service) Withdraw(ctx context.Context, ownerID string, amount int64, referenceID string) (ledger.Entry, error) {
	entry, err := s.mutateBalance(ctx, ownerID, amount, referenceID, ledger.KindWithdrawal)
	s.observe("withdraw", err)
	return entry, err
}

// Deactivate disables the wallet. The balance and the enable timestamp stay
// untouched and no ledger entry is written. Disabling an already disabled
// wallet fails with ErrAlreadyDisabled.
func (s *Service) Deactivate(ctx context.Context, ownerID string) (Wallet, error) {
	unlock := s.locks.lock(ownerID)
	defer unlock()

	var out Wallet
	err := s.withRetry(func() error {
		return s.store.Atomically(ctx, func(wallets Repository, _ ledger.Ledger) error {
			current, err := wallets.FindByOwner(ctx, ownerID)
			if err != nil {
				return err
			}
			if !current.Enabled {
				return ErrAlreadyDisabled
			}
			updated, err := wallets.ApplyMutation(ctx, current.ID, current.Version, current.Balance, false, current.EnabledAt)
			if err != nil {
				return err
			}
			out = updated
			return nil
		})
	})
	s.observe("deactivate", err)
	if err != nil {
		return Wallet{}, err
	}
	return out, nil
}

// Transactions lists the owner's ledger entries ordered by occurrence time.
func (s *Service) Transactions(ctx context.Context, ownerID string) ([]ledger.Entry, error) {
	if _, err := s.store.Wallets().FindByOwner(ctx, ownerID); err != nil {
		s.observe("transactions", err)
		return nil, err
	}
	entries, err := s.store.Entries().ListByOwner(ctx, ownerID)
	s.observe("transactions", err)
	return entries, err
}

func (s *Service) mutateBalance(ctx context.Context, ownerID string, amount int64, referenceID string, kind ledger.Kind) (ledger.Entry, error) {
	if amount <= 0 {
		return ledger.Entry{}, ErrInvalidAmount
	}

	unlock := s.locks.lock(ownerID)
	defer unlock()

	var out ledger.Entry
	err := s.withRetry(func() error {
		return s.store.Atomically(ctx, func(wallets Repository, entries ledger.Ledger) error {
			current, err := wallets.FindByOwner(ctx, ownerID)
			if err != nil {
				return err
			}
			if !current.Enabled {
				return ErrDisabled
			}

			var newBalance int64
			switch kind {
			case ledger.KindDeposit:
				newBalance = current.Balance + amount
			case ledger.KindWithdrawal:
				if amount > current.Balance {
					return ErrInsufficientBalance
				}
				newBalance = current.Balance - amount
			default:
				return fmt.Errorf("unsupported entry kind %q", kind)
			}

			if _, err := wallets.ApplyMutation(ctx, current.ID, current.Version, newBalance, true, current.EnabledAt); err != nil {
				return err
			}
			appended, err := entries.Append(ctx, ledger.Entry{
				OwnerID:          ownerID,
				Kind:             kind,
				Amount:           amount,
				ResultingBalance: newBalance,
				ReferenceID:      referenceID,
				Counterparty:     ledger.SelfCounterparty,
			})
			if err != nil {
				return err
			}
			out = appended
			return nil
		})
	})
	if err != nil {
		return ledger.Entry{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notificationKind(kind),
			Destination: ownerID,
			Body:        fmt.Sprintf("%s of %d completed, balance %d", kind, amount, out.ResultingBalance),
		})
	}
	return out, nil
}

// withRetry re-runs fn on optimistic-concurrency failures. ErrAlreadyExists
// counts as a conflict: it only happens when two activations race on a
// not-yet-created wallet, and a re-read resolves it.
func (s *Service) withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < s.retries; attempt++ {
		err = fn()
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrAlreadyExists) {
			continue
		}
		return err
	}
	return err
}

func (s *Service) observe(operation string, err error) {
	metrics.WalletOperations.WithLabelValues(operation, outcomeLabel(err)).Inc()
}

func notificationKind(kind ledger.Kind) string {
	if kind == ledger.KindWithdrawal {
		return notification.KindWithdrawal
	}
	return notification.KindDeposit
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrDisabled):
		return "disabled"
	case errors.Is(err, ErrAlreadyDisabled):
		return "already_disabled"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "storage_failure"
	}
}

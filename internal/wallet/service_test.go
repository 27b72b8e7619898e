package wallet_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/TechLead-War/wallet/internal/ledger"
	"github.com/TechLead-War/wallet/internal/storage"
	"github.com/TechLead-War/wallet/internal/wallet"
)

func newService() (*wallet.Service, wallet.Store) {
	store := storage.NewMemory()
	return wallet.NewService(store, wallet.Options{SeedBalance: 110}), store
}

func TestActivateSeedsFreshWallet(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	w, err := svc.Activate(ctx, "cust-1")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if w.Balance != 110 {
		t.Fatalf("expected seed balance 110, got %d", w.Balance)
	}
	if !w.Enabled {
		t.Fatalf("expected wallet enabled")
	}
	if w.EnabledAt.IsZero() {
		t.Fatalf("expected enabled_at to be set")
	}
}

func TestActivateIsIdempotent(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	first, err := svc.Activate(ctx, "cust-1")
	if err != nil {
		t.Fatalf("first activate: %v", err)
	}
	second, err := svc.Activate(ctx, "cust-1")
	if err != nil {
		t.Fatalf("second activate: %v", err)
	}
	if !second.Enabled {
		t.Fatalf("expected wallet to stay enabled")
	}
	if second.Balance != first.Balance {
		t.Fatalf("re-activation changed balance: %d -> %d", first.Balance, second.Balance)
	}
	if second.ID != first.ID {
		t.Fatalf("re-activation created a second wallet")
	}
}

func TestActivateReenablesDisabledWalletKeepingBalance(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Activate(ctx, "cust-1"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := svc.Deposit(ctx, "cust-1", 40, "r1"); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := svc.Deactivate(ctx, "cust-1"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	w, err := svc.Activate(ctx, "cust-1")
	if err != nil {
		t.Fatalf("re-activate: %v", err)
	}
	if !w.Enabled {
		t.Fatalf("expected wallet enabled after re-activation")
	}
	if w.Balance != 150 {
		t.Fatalf("expected balance 150 preserved, got %d", w.Balance)
	}
}

func TestDepositIncreasesBalanceAndAppendsEntry(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Activate(ctx, "cust-1"); err != nil {
		t.Fatalf("activate: %v", err)
	}

	entry, err := svc.Deposit(ctx, "cust-1", 50, "r1")
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if entry.ResultingBalance != 160 {
		t.Fatalf("expected resulting balance 160, got %d", entry.ResultingBalance)
	}
	if entry.Kind != ledger.KindDeposit {
		t.Fatalf("expected kind deposit, got %q", entry.Kind)
	}
	if entry.ReferenceID != "r1" {
		t.Fatalf("expected reference r1, got %q", entry.ReferenceID)
	}
	if entry.Counterparty != ledger.SelfCounterparty {
		t.Fatalf("expected self counterparty, got %q", entry.Counterparty)
	}

	w, err := svc.Balance(ctx, "cust-1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if w.Balance != 160 {
		t.Fatalf("expected balance 160, got %d", w.Balance)
	}
}

func TestWithdrawRejectsOverdraft(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Activate(ctx, "cust-1"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := svc.Deposit(ctx, "cust-1", 50, "r1"); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if _, err := svc.Withdraw(ctx, "cust-1", 500, "r2"); !errors.Is(err, wallet.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	w, err := svc.Balance(ctx, "cust-1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if w.Balance != 160 {
		t.Fatalf("failed withdrawal changed balance: got %d", w.Balance)
	}
	entries, err := svc.Transactions(ctx, "cust-1")
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("failed withdrawal appended an entry: %d entries", len(entries))
	}
}

func TestBalanceAfterDeactivateFailsDisabled(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Activate(ctx, "cust-1"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	w, err := svc.Deactivate(ctx, "cust-1")
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if w.Enabled {
		t.Fatalf("expected wallet disabled")
	}

	if _, err := svc.Balance(ctx, "cust-1"); !errors.Is(err, wallet.ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestDeactivateTwiceFails(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Activate(ctx, "cust-1"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := svc.Deactivate(ctx, "cust-1"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := svc.Deactivate(ctx, "cust-1"); !errors.Is(err, wallet.ErrAlreadyDisabled) {
		t.Fatalf("expected ErrAlreadyDisabled, got %v", err)
	}
}

func TestMutationsRejectDisabledWallet(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Activate(ctx, "cust-1"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := svc.Deactivate(ctx, "cust-1"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := svc.Deposit(ctx, "cust-1", 10, "r1"); !errors.Is(err, wallet.ErrDisabled) {
		t.Fatalf("deposit: expected ErrDisabled, got %v", err)
	}
	if _, err := svc.Withdraw(ctx, "cust-1", 10, "r2"); !errors.Is(err, wallet.ErrDisabled) {
		t.Fatalf("withdraw: expected ErrDisabled, got %v", err)
	}
}

func TestOperationsOnMissingWalletFailNotFound(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Balance(ctx, "ghost"); !errors.Is(err, wallet.ErrNotFound) {
		t.Fatalf("balance: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Deposit(ctx, "ghost", 10, "r1"); !errors.Is(err, wallet.ErrNotFound) {
		t.Fatalf("deposit: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Withdraw(ctx, "ghost", 10, "r2"); !errors.Is(err, wallet.ErrNotFound) {
		t.Fatalf("withdraw: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Deactivate(ctx, "ghost"); !errors.Is(err, wallet.ErrNotFound) {
		t.Fatalf("deactivate: expected ErrNotFound, got %v", err)
	}
}

func TestZeroAmountRejectedWithoutEntry(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Activate(ctx, "cust-1"); err != nil {
		t.Fatalf("activate: %v", err)
	}

	if _, err := svc.Deposit(ctx, "cust-1", 0, "r1"); !errors.Is(err, wallet.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.Withdraw(ctx, "cust-1", -5, "r2"); !errors.Is(err, wallet.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	entries, err := svc.Transactions(ctx, "cust-1")
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected amounts produced entries: %d", len(entries))
	}
}

func TestEveryMutationProducesExactlyOneEntry(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Activate(ctx, "cust-1"); err != nil {
		t.Fatalf("activate: %v", err)
	}

	successes := 0
	for i := 0; i < 5; i++ {
		if _, err := svc.Deposit(ctx, "cust-1", 10, fmt.Sprintf("d-%d", i)); err == nil {
			successes++
		}
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.Withdraw(ctx, "cust-1", 20, fmt.Sprintf("w-%d", i)); err == nil {
			successes++
		}
	}

	entries, err := svc.Transactions(ctx, "cust-1")
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(entries) != successes {
		t.Fatalf("expected %d entries, got %d", successes, len(entries))
	}
}

func TestConcurrentDepositsSumExactly(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Activate(ctx, "cust-1"); err != nil {
		t.Fatalf("activate: %v", err)
	}

	const workers = 20
	var wg sync.WaitGroup
	var total int64
	for i := 0; i < workers; i++ {
		amount := int64(i + 1)
		total += amount
		wg.Add(1)
		go func(i int, amount int64) {
			defer wg.Done()
			if _, err := svc.Deposit(ctx, "cust-1", amount, fmt.Sprintf("c-%d", i)); err != nil {
				t.Errorf("deposit %d: %v", i, err)
			}
		}(i, amount)
	}
	wg.Wait()

	w, err := svc.Balance(ctx, "cust-1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if want := int64(110) + total; w.Balance != want {
		t.Fatalf("expected balance %d, got %d", want, w.Balance)
	}
	entries, err := svc.Transactions(ctx, "cust-1")
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(entries) != workers {
		t.Fatalf("expected %d entries, got %d", workers, len(entries))
	}
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Activate(ctx, "cust-1"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := svc.Deposit(ctx, "cust-1", 40, "top-up"); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	// Balance is now 150; two concurrent withdrawals of 100 each must end in
	// exactly one success.
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Withdraw(ctx, "cust-1", 100, fmt.Sprintf("race-%d", i))
		}(i)
	}
	wg.Wait()

	okCount, insufficient := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, wallet.ErrInsufficientBalance):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if okCount != 1 || insufficient != 1 {
		t.Fatalf("expected one success and one insufficient, got %d/%d", okCount, insufficient)
	}

	w, err := svc.Balance(ctx, "cust-1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if w.Balance != 50 {
		t.Fatalf("expected final balance 50, got %d", w.Balance)
	}
	if w.Balance < 0 {
		t.Fatalf("balance went negative: %d", w.Balance)
	}
}

func TestTransactionsOrderedByOccurrence(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Activate(ctx, "cust-1"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := svc.Deposit(ctx, "cust-1", 30, "r1"); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := svc.Withdraw(ctx, "cust-1", 10, "r2"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	entries, err := svc.Transactions(ctx, "cust-1")
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Kind != ledger.KindDeposit || entries[1].Kind != ledger.KindWithdrawal {
		t.Fatalf("entries out of order: %q then %q", entries[0].Kind, entries[1].Kind)
	}
	if entries[1].OccurredAt.Before(entries[0].OccurredAt) {
		t.Fatalf("timestamps out of order")
	}
}

func TestReferenceIDIsPassThrough(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Activate(ctx, "cust-1"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	// Same reference twice: both succeed, the label is not a dedupe key.
	for i := 0; i < 2; i++ {
		if _, err := svc.Deposit(ctx, "cust-1", 10, "same-ref"); err != nil {
			t.Fatalf("deposit %d: %v", i, err)
		}
	}
	entries, err := svc.Transactions(ctx, "cust-1")
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries with the same reference, got %d", len(entries))
	}
}

package ledger

import (
	"context"
	"testing"
)

func TestInMemoryLedger_AppendAssignsIdentity(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	entry, err := l.Append(ctx, Entry{
		OwnerID:          "cust-1",
		Kind:             KindDeposit,
		Amount:           50,
		ResultingBalance: 160,
		ReferenceID:      "r1",
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if entry.ID == "" {
		t.Fatalf("expected id to be assigned")
	}
	if entry.OccurredAt.IsZero() {
		t.Fatalf("expected timestamp to be assigned")
	}
	if entry.Counterparty != SelfCounterparty {
		t.Fatalf("expected counterparty %q, got %q", SelfCounterparty, entry.Counterparty)
	}
}

func TestInMemoryLedger_ListPreservesAppendOrder(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	amounts := []int64{10, 20, 30}
	for _, amount := range amounts {
		if _, err := l.Append(ctx, Entry{OwnerID: "cust-1", Kind: KindDeposit, Amount: amount}); err != nil {
			t.Fatalf("append %d failed: %v", amount, err)
		}
	}
	if _, err := l.Append(ctx, Entry{OwnerID: "cust-2", Kind: KindWithdrawal, Amount: 5}); err != nil {
		t.Fatalf("append for other owner failed: %v", err)
	}

	entries, err := l.ListByOwner(ctx, "cust-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != len(amounts) {
		t.Fatalf("expected %d entries, got %d", len(amounts), len(entries))
	}
	for i, amount := range amounts {
		if entries[i].Amount != amount {
			t.Fatalf("entry %d: expected amount %d, got %d", i, amount, entries[i].Amount)
		}
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].OccurredAt.Before(entries[i-1].OccurredAt) {
			t.Fatalf("entries out of order at index %d", i)
		}
	}
}

func TestInMemoryLedger_ListReturnsCopy(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	if _, err := l.Append(ctx, Entry{OwnerID: "cust-1", Kind: KindDeposit, Amount: 10}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	first, _ := l.ListByOwner(ctx, "cust-1")
	first[0].Amount = 999

	again, _ := l.ListByOwner(ctx, "cust-1")
	if again[0].Amount != 10 {
		t.Fatalf("stored entry mutated through returned slice")
	}
}

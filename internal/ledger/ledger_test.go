package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/greenfelt/casino/internal/store"
)

func TestMemoryDebitCredit(t *testing.T) {
	m := NewMemory()
	m.Seed("alice", 1000)

	balance, err := m.Debit(context.Background(), "alice", 300)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if balance != 700 {
		t.Errorf("balance after debit = %d, want 700", balance)
	}

	balance, err = m.Credit(context.Background(), "alice", 50)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if balance != 750 {
		t.Errorf("balance after credit = %d, want 750", balance)
	}
}

func TestMemoryRejectsOverdraft(t *testing.T) {
	m := NewMemory()
	m.Seed("alice", 100)

	_, err := m.Debit(context.Background(), "alice", 101)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}

	balance, err := m.Balance(context.Background(), "alice")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 100 {
		t.Errorf("failed debit must not move the balance: %d", balance)
	}
}

func TestMemoryRejectsNonPositiveAmounts(t *testing.T) {
	m := NewMemory()
	m.Seed("alice", 100)

	for _, amount := range []int64{0, -10} {
		if _, err := m.Debit(context.Background(), "alice", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("debit %d: got %v, want ErrInvalidAmount", amount, err)
		}
		if _, err := m.Credit(context.Background(), "alice", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("credit %d: got %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestMemoryUnknownAccount(t *testing.T) {
	m := NewMemory()

	if _, err := m.Balance(context.Background(), "ghost"); !errors.Is(err, ErrUnknownAccount) {
		t.Errorf("balance: got %v, want ErrUnknownAccount", err)
	}
	if _, err := m.Debit(context.Background(), "ghost", 10); !errors.Is(err, ErrUnknownAccount) {
		t.Errorf("debit: got %v, want ErrUnknownAccount", err)
	}
}

func TestMemoryConcurrentMutationsDoNotInterleave(t *testing.T) {
	m := NewMemory()
	m.Seed("alice", 0)

	const workers = 16
	const opsPerWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < opsPerWorker; i++ {
				if _, err := m.Credit(context.Background(), "alice", 2); err != nil {
					t.Errorf("credit: %v", err)
					return
				}
				if _, err := m.Debit(context.Background(), "alice", 1); err != nil {
					t.Errorf("debit: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	balance, err := m.Balance(context.Background(), "alice")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if want := int64(workers * opsPerWorker); balance != want {
		t.Errorf("balance = %d, want %d (lost update)", balance, want)
	}
}

func TestStoreLedgerRoundTrip(t *testing.T) {
	accounts := store.NewMemory()
	if err := accounts.Create(context.Background(), store.Account{Username: "alice", Balance: 500}); err != nil {
		t.Fatalf("create: %v", err)
	}
	l := NewStore(accounts)

	balance, err := l.Debit(context.Background(), "alice", 200)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if balance != 300 {
		t.Errorf("balance = %d, want 300", balance)
	}

	// The store is the source of truth.
	account, err := accounts.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if account.Balance != 300 {
		t.Errorf("stored balance = %d, want 300", account.Balance)
	}
}

func TestStoreLedgerDoesNotApplyFailedWrites(t *testing.T) {
	accounts := store.NewMemory()
	if err := accounts.Create(context.Background(), store.Account{Username: "alice", Balance: 500}); err != nil {
		t.Fatalf("create: %v", err)
	}
	l := NewStore(accounts)

	accounts.FailPuts = true
	if _, err := l.Credit(context.Background(), "alice", 100); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}

	accounts.FailPuts = false
	balance, err := l.Balance(context.Background(), "alice")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 500 {
		t.Errorf("balance = %d, want 500 (failed write must not apply)", balance)
	}
}

func TestStoreLedgerUnknownAccount(t *testing.T) {
	l := NewStore(store.NewMemory())

	if _, err := l.Debit(context.Background(), "ghost", 10); !errors.Is(err, ErrUnknownAccount) {
		t.Errorf("debit: got %v, want ErrUnknownAccount", err)
	}
	if _, err := l.Balance(context.Background(), "ghost"); !errors.Is(err, ErrUnknownAccount) {
		t.Errorf("balance: got %v, want ErrUnknownAccount", err)
	}
}

func TestStoreLedgerRejectsOverdraft(t *testing.T) {
	accounts := store.NewMemory()
	if err := accounts.Create(context.Background(), store.Account{Username: "alice", Balance: 10}); err != nil {
		t.Fatalf("create: %v", err)
	}
	l := NewStore(accounts)

	if _, err := l.Debit(context.Background(), "alice", 11); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
}

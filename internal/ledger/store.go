package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/greenfelt/casino/internal/store"
)

// Accounts is the slice of the account store the ledger needs.
type Accounts interface {
	Get(ctx context.Context, username string) (store.Account, error)
	Put(ctx context.Context, account store.Account) error
}

// StoreLedger applies balance mutations through an account store. The store
// is the source of truth: a mutation is a read-modify-write under a
// per-account lock, and if the write fails nothing is applied and
// ErrPersistence surfaces to the caller. Balances are never updated
// optimistically ahead of the store.
type StoreLedger struct {
	accounts Accounts

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a ledger backed by the given account store.
func NewStore(accounts Accounts) *StoreLedger {
	return &StoreLedger{
		accounts: accounts,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (l *StoreLedger) lock(user string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk, ok := l.locks[user]
	if !ok {
		lk = &sync.Mutex{}
		l.locks[user] = lk
	}
	return lk
}

// Balance returns the stored balance for the user.
func (l *StoreLedger) Balance(ctx context.Context, user string) (int64, error) {
	account, err := l.accounts.Get(ctx, user)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrUnknownAccount
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return account.Balance, nil
}

// Debit removes amount from the user's stored balance.
func (l *StoreLedger) Debit(ctx context.Context, user string, amount int64) (int64, error) {
	return l.apply(ctx, user, -amount, amount)
}

// Credit adds amount to the user's stored balance.
func (l *StoreLedger) Credit(ctx context.Context, user string, amount int64) (int64, error) {
	return l.apply(ctx, user, amount, amount)
}

func (l *StoreLedger) apply(ctx context.Context, user string, delta, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	lk := l.lock(user)
	lk.Lock()
	defer lk.Unlock()

	account, err := l.accounts.Get(ctx, user)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrUnknownAccount
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}

	next := account.Balance + delta
	if next < 0 {
		return account.Balance, ErrInsufficientFunds
	}

	account.Balance = next
	if err := l.accounts.Put(ctx, account); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return next, nil
}

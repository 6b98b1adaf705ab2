package ledger

import (
	"context"
	"sync"
)

// Memory is an in-memory Ledger guarded by per-account locks. It backs
// engine tests and single-process deployments that do not need durable
// balances.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]*memoryAccount
}

type memoryAccount struct {
	mu      sync.Mutex
	balance int64
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{accounts: make(map[string]*memoryAccount)}
}

// Seed sets the balance for a user, creating the account if needed.
func (m *Memory) Seed(user string, balance int64) {
	acct := m.account(user)
	acct.mu.Lock()
	acct.balance = balance
	acct.mu.Unlock()
}

func (m *Memory) account(user string) *memoryAccount {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[user]
	if !ok {
		acct = &memoryAccount{}
		m.accounts[user] = acct
	}
	return acct
}

func (m *Memory) lookup(user string) (*memoryAccount, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[user]
	return acct, ok
}

// Balance returns the current balance for the user.
func (m *Memory) Balance(ctx context.Context, user string) (int64, error) {
	acct, ok := m.lookup(user)
	if !ok {
		return 0, ErrUnknownAccount
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()
	return acct.balance, nil
}

// Debit removes amount from the user's balance.
func (m *Memory) Debit(ctx context.Context, user string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	acct, ok := m.lookup(user)
	if !ok {
		return 0, ErrUnknownAccount
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()
	if amount > acct.balance {
		return acct.balance, ErrInsufficientFunds
	}
	acct.balance -= amount
	return acct.balance, nil
}

// Credit adds amount to the user's balance.
func (m *Memory) Credit(ctx context.Context, user string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	acct, ok := m.lookup(user)
	if !ok {
		return 0, ErrUnknownAccount
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()
	acct.balance += amount
	return acct.balance, nil
}

package store

import (
	"context"
	"errors"
	"sync"
)

var errPutFailed = errors.New("store: put failed")

// Memory is an in-memory Store for tests.
type Memory struct {
	mu       sync.RWMutex
	accounts map[string]Account

	// FailPuts makes every Put fail, to exercise persistence-failure paths.
	FailPuts bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{accounts: make(map[string]Account)}
}

// Get returns the account for the username, or ErrNotFound.
func (m *Memory) Get(ctx context.Context, username string) (Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[username]
	if !ok {
		return Account{}, ErrNotFound
	}
	return account, nil
}

// Create inserts a new account, or fails with ErrExists.
func (m *Memory) Create(ctx context.Context, account Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.Username]; ok {
		return ErrExists
	}
	m.accounts[account.Username] = account
	return nil
}

// Put overwrites an existing account, or fails with ErrNotFound.
func (m *Memory) Put(ctx context.Context, account Account) error {
	if m.FailPuts {
		return errPutFailed
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.Username]; !ok {
		return ErrNotFound
	}
	m.accounts[account.Username] = account
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

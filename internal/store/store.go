// Package store persists user accounts: username, password hash, the single
// play-money balance figure and the creation timestamp. Nothing else about a
// round survives settlement.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no account exists for the username.
	ErrNotFound = errors.New("store: account not found")

	// ErrExists indicates the username is already registered.
	ErrExists = errors.New("store: account already exists")
)

// Account is the persisted account record.
type Account struct {
	Username     string
	PasswordHash string
	Balance      int64
	CreatedAt    time.Time
}

// Store reads and writes account records. Each Put must apply exactly once;
// callers treat a write failure as not applied.
type Store interface {
	// Get returns the account for the username, or ErrNotFound.
	Get(ctx context.Context, username string) (Account, error)

	// Create inserts a new account, or fails with ErrExists.
	Create(ctx context.Context, account Account) error

	// Put overwrites an existing account, or fails with ErrNotFound.
	Put(ctx context.Context, account Account) error

	// Close releases any underlying resources.
	Close() error
}

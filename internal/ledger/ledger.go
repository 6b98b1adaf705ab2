// Package ledger provides atomic balance accounting for game rounds.
//
// Both game engines consume the Ledger interface and never touch account
// storage directly: a round debits wagers when bets are placed and credits
// winnings at settlement, and every operation either applies fully or not at
// all.
package ledger

import (
	"context"
	"errors"
)

var (
	// ErrInvalidAmount indicates a zero or negative debit/credit amount.
	ErrInvalidAmount = errors.New("ledger: amount must be positive")

	// ErrInsufficientFunds indicates a debit larger than the current balance.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")

	// ErrUnknownAccount indicates the account has no balance entry.
	ErrUnknownAccount = errors.New("ledger: unknown account")

	// ErrPersistence indicates the backing store rejected a balance write.
	// The in-memory figure is left untouched when this is returned.
	ErrPersistence = errors.New("ledger: persistence failure")
)

// Ledger applies balance mutations for user accounts. Implementations must
// be atomic per operation: concurrent debits and credits for the same
// account may not interleave, and a failed operation leaves the balance
// unchanged. Balances never go negative.
type Ledger interface {
	// Balance returns the current balance for the user.
	Balance(ctx context.Context, user string) (int64, error)

	// Debit removes amount from the user's balance and returns the new
	// balance. Fails with ErrInsufficientFunds if amount exceeds it.
	Debit(ctx context.Context, user string, amount int64) (int64, error)

	// Credit adds amount to the user's balance and returns the new balance.
	Credit(ctx context.Context, user string, amount int64) (int64, error)
}

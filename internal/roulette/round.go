package roulette

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/google/uuid"

	"github.com/greenfelt/casino/internal/ledger"
	"github.com/greenfelt/casino/internal/randutil"
)

var (
	// ErrInvalidWager indicates a non-positive stake or one outside the
	// table limits.
	ErrInvalidWager = errors.New("roulette: invalid wager")

	// ErrNoBets indicates a spin with an empty ledger.
	ErrNoBets = errors.New("roulette: no bets placed")
)

// Rules are the table limits for a roulette round.
type Rules struct {
	MinBet int64
	MaxBet int64
}

// DefaultRules returns the standard table limits.
func DefaultRules() Rules {
	return Rules{MinBet: 1, MaxBet: 1000}
}

// PlacedBet is one chip on one position. Duplicate positions accumulate as
// separate entries; each placement was debited independently.
type PlacedBet struct {
	Bet    Bet
	Amount int64
}

// BetResult is the resolution of one placed bet against a spin outcome.
type BetResult struct {
	Bet    Bet
	Amount int64
	Won    bool
	Payout int64
}

// SpinResult summarises a resolved spin. The total payout is credited in a
// single ledger operation.
type SpinResult struct {
	ID      string
	Pocket  int
	Color   Color
	Bets    []BetResult
	Credit  int64
	Balance int64
}

// Round is a roulette table for one user: bets accumulate between spins and
// the ledger clears after each settlement, returning to an idle betting
// state. It is not safe for concurrent use; the server serialises access
// per user.
type Round struct {
	user   string
	ledger ledger.Ledger
	rng    *rand.Rand
	rules  Rules

	bets    []PlacedBet
	pending *SpinResult // computed but not yet credited (persistence retry)
	last    *SpinResult
}

// Option configures a Round.
type Option func(*Round)

// WithRNG sets the rng used to draw spin outcomes.
func WithRNG(rng *rand.Rand) Option {
	return func(r *Round) { r.rng = rng }
}

// WithRules overrides the table limits.
func WithRules(rules Rules) Option {
	return func(r *Round) { r.rules = rules }
}

// NewRound creates an idle roulette round for the given user.
func NewRound(lgr ledger.Ledger, user string, opts ...Option) *Round {
	r := &Round{
		user:   user,
		ledger: lgr,
		rng:    randutil.NewFromTime(),
		rules:  DefaultRules(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// User returns the account the round plays against.
func (r *Round) User() string {
	return r.user
}

// PlaceBet debits the stake immediately and appends the bet to the round's
// ledger. There is no pooling: every chip is an independent debit and a
// losing chip is already forfeit.
func (r *Round) PlaceBet(ctx context.Context, bet Bet, amount int64) error {
	if len(bet.Numbers) == 0 {
		return fmt.Errorf("%w: bet covers no numbers", ErrInvalidBet)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: stake must be positive", ErrInvalidWager)
	}
	if amount < r.rules.MinBet || amount > r.rules.MaxBet {
		return fmt.Errorf("%w: stake %d outside table limits %d-%d",
			ErrInvalidWager, amount, r.rules.MinBet, r.rules.MaxBet)
	}
	if r.pending != nil {
		return fmt.Errorf("%w: previous spin not yet settled", ErrInvalidWager)
	}

	if _, err := r.ledger.Debit(ctx, r.user, amount); err != nil {
		return fmt.Errorf("debit stake: %w", err)
	}
	r.bets = append(r.bets, PlacedBet{Bet: bet, Amount: amount})
	return nil
}

// Bets returns the bets placed since the last spin.
func (r *Round) Bets() []PlacedBet {
	return append([]PlacedBet(nil), r.bets...)
}

// Last returns the most recent settled spin, or nil.
func (r *Round) Last() *SpinResult {
	return r.last
}

// Spin draws one pocket uniformly from 0-36, resolves every placed bet
// against it and credits the total payout in one ledger operation. The bet
// ledger clears and the round accepts new bets.
//
// If a previous spin's credit failed to persist, Spin retries that credit
// with the already-drawn outcome rather than drawing again.
func (r *Round) Spin(ctx context.Context) (*SpinResult, error) {
	result := r.pending
	if result == nil {
		if len(r.bets) == 0 {
			return nil, ErrNoBets
		}
		result = r.resolve(r.rng.IntN(Pockets))
	}

	balance, err := r.payout(ctx, result.Credit)
	if err != nil {
		r.pending = result
		return nil, err
	}
	result.Balance = balance

	r.pending = nil
	r.bets = nil
	r.last = result
	return result, nil
}

func (r *Round) resolve(pocket int) *SpinResult {
	result := &SpinResult{
		ID:     uuid.NewString(),
		Pocket: pocket,
		Color:  PocketColor(pocket),
		Bets:   make([]BetResult, 0, len(r.bets)),
	}

	for _, placed := range r.bets {
		br := BetResult{Bet: placed.Bet, Amount: placed.Amount}
		if placed.Bet.Covers(pocket) {
			br.Won = true
			br.Payout = placed.Amount * placed.Bet.Multiplier()
			result.Credit += br.Payout
		}
		result.Bets = append(result.Bets, br)
	}
	return result
}

func (r *Round) payout(ctx context.Context, credit int64) (int64, error) {
	if credit == 0 {
		return r.ledger.Balance(ctx, r.user)
	}
	balance, err := r.ledger.Credit(ctx, r.user, credit)
	if err != nil {
		return 0, fmt.Errorf("credit winnings: %w", err)
	}
	return balance, nil
}

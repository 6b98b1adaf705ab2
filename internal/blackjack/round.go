package blackjack

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/google/uuid"

	"github.com/greenfelt/casino/internal/deck"
	"github.com/greenfelt/casino/internal/ledger"
	"github.com/greenfelt/casino/internal/randutil"
)

// Status is the round's position in its linear state machine.
type Status int

const (
	Betting Status = iota
	PlayerActing
	DealerActing
	Settled
)

// String returns the string representation of a status
func (s Status) String() string {
	switch s {
	case Betting:
		return "betting"
	case PlayerActing:
		return "player_acting"
	case DealerActing:
		return "dealer_acting"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// Outcome is the settlement result of a single hand.
type Outcome int

const (
	OutcomeBlackjack Outcome = iota // natural, pays 3:2
	OutcomeWin                      // beat the dealer, pays 1:1
	OutcomePush                     // tie, stake returned
	OutcomeBust
	OutcomeLose
)

// String returns the string representation of an outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeBlackjack:
		return "blackjack"
	case OutcomeWin:
		return "win"
	case OutcomePush:
		return "push"
	case OutcomeBust:
		return "bust"
	case OutcomeLose:
		return "lose"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidWager indicates a non-positive wager or one outside the
	// table limits.
	ErrInvalidWager = errors.New("blackjack: invalid wager")

	// ErrInvalidAction indicates an action that is not legal in the current
	// state. The round state is unchanged.
	ErrInvalidAction = errors.New("blackjack: invalid action")
)

// Rules are the table limits for a blackjack round.
type Rules struct {
	MinBet   int64
	MaxBet   int64
	MaxHands int // maximum hands after splitting
}

// DefaultRules returns the standard table limits.
func DefaultRules() Rules {
	return Rules{MinBet: 1, MaxBet: 1000, MaxHands: 4}
}

// HandResult is the settlement of one player hand.
type HandResult struct {
	Outcome Outcome
	Wager   int64
	Payout  int64
	Value   Value
}

// Result summarises a settled round. The total payout is credited in a
// single ledger operation.
type Result struct {
	Dealer  Value
	Hands   []HandResult
	Credit  int64
	Balance int64
}

// Round runs one blackjack round for one user against a balance ledger.
// It is not safe for concurrent use; the server serialises access per user.
type Round struct {
	ID string

	user   string
	ledger ledger.Ledger
	rng    *rand.Rand
	rules  Rules

	status     Status
	deck       *deck.Deck
	stacked    bool
	hands      []*Hand
	dealer     []deck.Card
	active     int
	firstWager int64
	result     *Result
}

// Option configures a Round.
type Option func(*Round)

// WithRNG sets the rng used to shuffle the deck.
func WithRNG(rng *rand.Rand) Option {
	return func(r *Round) { r.rng = rng }
}

// WithDeck replaces the shuffled deck with a pre-ordered one, for scripting
// exact rounds in tests.
func WithDeck(d *deck.Deck) Option {
	return func(r *Round) {
		r.deck = d
		r.stacked = true
	}
}

// WithRules overrides the table limits.
func WithRules(rules Rules) Option {
	return func(r *Round) { r.rules = rules }
}

// NewRound creates a round in the Betting state for the given user.
func NewRound(lgr ledger.Ledger, user string, opts ...Option) *Round {
	r := &Round{
		ID:     uuid.NewString(),
		user:   user,
		ledger: lgr,
		rng:    randutil.NewFromTime(),
		rules:  DefaultRules(),
		status: Betting,
		active: -1,
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

// Status returns the round's current state.
func (r *Round) Status() Status {
	return r.status
}

// Start debits the wager and deals the opening hands. Naturals resolve
// immediately; otherwise the round enters PlayerActing.
func (r *Round) Start(ctx context.Context, wager int64) error {
	if r.status != Betting {
		return fmt.Errorf("%w: round already started", ErrInvalidAction)
	}
	if wager <= 0 {
		return fmt.Errorf("%w: wager must be positive", ErrInvalidWager)
	}
	if wager < r.rules.MinBet || wager > r.rules.MaxBet {
		return fmt.Errorf("%w: wager %d outside table limits %d-%d",
			ErrInvalidWager, wager, r.rules.MinBet, r.rules.MaxBet)
	}

	if _, err := r.ledger.Debit(ctx, r.user, wager); err != nil {
		return fmt.Errorf("debit wager: %w", err)
	}
	r.firstWager = wager

	if r.deck == nil {
		r.deck = deck.New()
	}
	if !r.stacked {
		r.deck.Shuffle(r.rng)
	}

	cards, err := r.dealN(4)
	if err != nil {
		return err
	}
	r.hands = []*Hand{newHand(wager, cards[0], cards[1])}
	r.dealer = []deck.Card{cards[2], cards[3]}

	// A natural on either side short-circuits player actions.
	if r.hands[0].IsBlackjack() || Score(r.dealer).Blackjack {
		r.hands[0].done = true
		r.status = DealerActing
		_, err := r.Settle(ctx)
		return err
	}

	r.status = PlayerActing
	r.active = 0
	return nil
}

// Hit deals one card to the hand. A bust ends the hand and advances play.
func (r *Round) Hit(ctx context.Context, hand int) error {
	h, err := r.actingHand(hand)
	if err != nil {
		return err
	}

	card, err := r.deck.Deal()
	if err != nil {
		return err
	}
	h.Cards = append(h.Cards, card)

	if h.Value().Bust {
		h.done = true
		return r.advance(ctx)
	}
	return nil
}

// Stand ends actions on the hand and advances play.
func (r *Round) Stand(ctx context.Context, hand int) error {
	h, err := r.actingHand(hand)
	if err != nil {
		return err
	}
	h.done = true
	return r.advance(ctx)
}

// DoubleDown debits a second wager equal to the first, deals exactly one
// card and ends the hand regardless of outcome.
func (r *Round) DoubleDown(ctx context.Context, hand int) error {
	h, err := r.actingHand(hand)
	if err != nil {
		return err
	}
	if !h.CanDouble() {
		return fmt.Errorf("%w: double down requires an undoubled two-card hand", ErrInvalidAction)
	}

	if _, err := r.ledger.Debit(ctx, r.user, h.Wager); err != nil {
		return fmt.Errorf("debit double down: %w", err)
	}

	card, err := r.deck.Deal()
	if err != nil {
		return err
	}
	h.Wager *= 2
	h.Doubled = true
	h.Cards = append(h.Cards, card)
	h.done = true
	return r.advance(ctx)
}

// Split debits a wager equal to the hand's and replaces a pair with two
// independent hands, each completed with one fresh card.
func (r *Round) Split(ctx context.Context, hand int) error {
	h, err := r.actingHand(hand)
	if err != nil {
		return err
	}
	if !h.CanSplit() {
		return fmt.Errorf("%w: split requires a two-card pair", ErrInvalidAction)
	}
	if len(r.hands) >= r.rules.MaxHands {
		return fmt.Errorf("%w: at most %d hands per round", ErrInvalidAction, r.rules.MaxHands)
	}

	if _, err := r.ledger.Debit(ctx, r.user, h.Wager); err != nil {
		return fmt.Errorf("debit split: %w", err)
	}

	cards, err := r.dealN(2)
	if err != nil {
		return err
	}

	first := newHand(h.Wager, h.Cards[0], cards[0])
	second := newHand(h.Wager, h.Cards[1], cards[1])
	first.split = true
	second.split = true

	r.hands = append(r.hands[:hand],
		append([]*Hand{first, second}, r.hands[hand+1:]...)...)
	return nil
}

// Settle plays out the dealer hand if needed, computes every hand's payout
// and issues the total as one ledger credit. It is valid only in
// DealerActing and may be retried if the credit fails to persist.
func (r *Round) Settle(ctx context.Context) (*Result, error) {
	if r.status != DealerActing {
		return nil, fmt.Errorf("%w: round is not ready to settle", ErrInvalidAction)
	}

	if err := r.dealerPlay(); err != nil {
		return nil, err
	}

	dealerValue := Score(r.dealer)
	result := &Result{Dealer: dealerValue, Hands: make([]HandResult, 0, len(r.hands))}
	for _, h := range r.hands {
		hr := settleHand(h, dealerValue)
		result.Credit += hr.Payout
		result.Hands = append(result.Hands, hr)
	}

	balance, err := r.payout(ctx, result.Credit)
	if err != nil {
		return nil, err
	}
	result.Balance = balance

	r.result = result
	r.status = Settled
	return result, nil
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

// settleHand resolves one hand against the dealer's final value.
//
// A natural pays 3:2 (credit = wager*5/2) unless the dealer also holds one,
// which is a push. A won hand pays 1:1 (credit = wager*2); a push returns
// the stake. Losing and busted hands get nothing: their wager was already
// debited at bet time.
func settleHand(h *Hand, dealer Value) HandResult {
	v := h.Value()
	hr := HandResult{Wager: h.Wager, Value: v}

	switch {
	case v.Blackjack && dealer.Blackjack:
		hr.Outcome = OutcomePush
		hr.Payout = h.Wager
	case v.Blackjack:
		hr.Outcome = OutcomeBlackjack
		hr.Payout = h.Wager * 5 / 2
	case v.Bust:
		hr.Outcome = OutcomeBust
	case dealer.Bust || v.Total > dealer.Total:
		hr.Outcome = OutcomeWin
		hr.Payout = h.Wager * 2
	case v.Total == dealer.Total:
		hr.Outcome = OutcomePush
		hr.Payout = h.Wager
	default:
		hr.Outcome = OutcomeLose
	}
	return hr
}

// dealerPlay draws to the dealer hand while it totals under 17. The dealer
// stands on all 17s, soft included, and does not draw when every player
// hand has already busted or was resolved as a natural.
func (r *Round) dealerPlay() error {
	if !r.anyLiveHands() {
		return nil
	}
	for Score(r.dealer).Total < 17 {
		card, err := r.deck.Deal()
		if err != nil {
			return err
		}
		r.dealer = append(r.dealer, card)
	}
	return nil
}

func (r *Round) anyLiveHands() bool {
	for _, h := range r.hands {
		v := h.Value()
		if !v.Bust && !v.Blackjack {
			return true
		}
	}
	return false
}

// advance moves control to the next actable hand, or to dealer play and
// settlement when none remain.
func (r *Round) advance(ctx context.Context) error {
	for i := r.active; i < len(r.hands); i++ {
		if r.hands[i].CanAct() {
			r.active = i
			return nil
		}
	}

	r.active = -1
	r.status = DealerActing
	_, err := r.Settle(ctx)
	return err
}

func (r *Round) actingHand(hand int) (*Hand, error) {
	if r.status != PlayerActing {
		return nil, fmt.Errorf("%w: no player actions in state %s", ErrInvalidAction, r.status)
	}
	if hand != r.active {
		return nil, fmt.Errorf("%w: hand %d is not the active hand", ErrInvalidAction, hand)
	}
	h := r.hands[hand]
	if !h.CanAct() {
		return nil, fmt.Errorf("%w: hand %d cannot act", ErrInvalidAction, hand)
	}
	return h, nil
}

func (r *Round) dealN(n int) ([]deck.Card, error) {
	cards := make([]deck.Card, n)
	for i := range cards {
		card, err := r.deck.Deal()
		if err != nil {
			return nil, err
		}
		cards[i] = card
	}
	return cards, nil
}

// Reset returns a settled round to Betting with a fresh deck and, when
// carryWager is set, immediately re-stakes the previous opening wager.
func (r *Round) Reset(ctx context.Context, carryWager bool) error {
	if r.status != Settled {
		return fmt.Errorf("%w: only a settled round can be reset", ErrInvalidAction)
	}

	wager := r.firstWager
	r.ID = uuid.NewString()
	r.status = Betting
	r.deck = nil
	r.stacked = false
	r.hands = nil
	r.dealer = nil
	r.active = -1
	r.result = nil

	if carryWager {
		return r.Start(ctx, wager)
	}
	return nil
}

package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/greenfelt/casino/internal/blackjack"
	"github.com/greenfelt/casino/internal/ledger"
	"github.com/greenfelt/casino/internal/roulette"
	"github.com/greenfelt/casino/internal/store"
)

var (
	// ErrBadCredentials indicates a failed registration or login attempt.
	ErrBadCredentials = errors.New("server: invalid username or password")

	// ErrRoundOpen indicates the user already has an unfinished round.
	ErrRoundOpen = errors.New("server: a round is already in progress")

	// ErrNoRound indicates an action against a round that does not exist.
	ErrNoRound = errors.New("server: no round in progress")
)

// GameService owns every table in the casino. Each user gets at most one
// open round per game; access to a user's tables is serialised so game
// state never sees concurrent mutation.
type GameService struct {
	accounts store.Store
	ledger   ledger.Ledger
	config   *Config
	logger   *log.Logger
	events   *Hub

	mu    sync.Mutex
	users map[string]*userTables

	blackjackOpts []blackjack.Option
	rouletteOpts  []roulette.Option
}

// userTables holds one user's seats. The mutex serialises that user's
// actions without blocking anyone else.
type userTables struct {
	mu        sync.Mutex
	blackjack *blackjack.Round
	roulette  *roulette.Round
}

// ServiceOption configures a GameService.
type ServiceOption func(*GameService)

// WithBlackjackOptions appends options applied to every new blackjack round.
func WithBlackjackOptions(opts ...blackjack.Option) ServiceOption {
	return func(s *GameService) { s.blackjackOpts = append(s.blackjackOpts, opts...) }
}

// WithRouletteOptions appends options applied to every new roulette round.
func WithRouletteOptions(opts ...roulette.Option) ServiceOption {
	return func(s *GameService) { s.rouletteOpts = append(s.rouletteOpts, opts...) }
}

// NewGameService creates the service backed by the account store. Balances
// move through a store-backed ledger so every settlement is persisted.
func NewGameService(accounts store.Store, config *Config, logger *log.Logger, events *Hub, opts ...ServiceOption) *GameService {
	s := &GameService{
		accounts: accounts,
		ledger:   ledger.NewStore(accounts),
		config:   config,
		logger:   logger.WithPrefix("game"),
		events:   events,
		users:    make(map[string]*userTables),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account with the configured starting balance.
func (s *GameService) Register(ctx context.Context, username, password string) (store.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > 32 || strings.ContainsAny(username, " \t\n") {
		return store.Account{}, fmt.Errorf("%w: bad username", ErrBadCredentials)
	}
	if password == "" {
		return store.Account{}, fmt.Errorf("%w: empty password", ErrBadCredentials)
	}

	hash, err := store.HashPassword(password)
	if err != nil {
		return store.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account := store.Account{
		Username:     username,
		PasswordHash: hash,
		Balance:      s.config.Server.StartingBalance,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return store.Account{}, err
	}

	s.logger.Info("Account created", "user", username, "balance", account.Balance)
	return account, nil
}

// Login checks the password and returns the account.
func (s *GameService) Login(ctx context.Context, username, password string) (store.Account, error) {
	account, err := s.accounts.Get(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return store.Account{}, ErrBadCredentials
	}
	if err != nil {
		return store.Account{}, err
	}
	if !store.CheckPassword(account.PasswordHash, password) {
		return store.Account{}, ErrBadCredentials
	}
	return account, nil
}

// Balance returns the user's current balance.
func (s *GameService) Balance(ctx context.Context, user string) (int64, error) {
	return s.ledger.Balance(ctx, user)
}

// tables returns the user's seats, creating them on first use.
func (s *GameService) tables(user string) *userTables {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.users[user]
	if !ok {
		t = &userTables{}
		s.users[user] = t
	}
	return t
}

// BlackjackSnapshot is the round state as shown to its player.
type BlackjackSnapshot struct {
	RoundID string
	Status  blackjack.Status
	Active  int
	Dealer  blackjack.DealerView
	Hands   []blackjack.HandView
	Result  *blackjack.Result
}

func snapshotBlackjack(r *blackjack.Round) *BlackjackSnapshot {
	return &BlackjackSnapshot{
		RoundID: r.ID,
		Status:  r.Status(),
		Active:  r.ActiveHand(),
		Dealer:  r.Dealer(),
		Hands:   r.Hands(),
		Result:  r.Result(),
	}
}

// StartBlackjack opens a round for the user and stakes the wager.
func (s *GameService) StartBlackjack(ctx context.Context, user string, wager int64) (*BlackjackSnapshot, error) {
	t := s.tables(user)
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.blackjack != nil && t.blackjack.Status() != blackjack.Settled {
		return nil, ErrRoundOpen
	}

	opts := append([]blackjack.Option{blackjack.WithRules(blackjack.Rules{
		MinBet:   s.config.Blackjack.MinBet,
		MaxBet:   s.config.Blackjack.MaxBet,
		MaxHands: 4,
	})}, s.blackjackOpts...)

	round := blackjack.NewRound(s.ledger, user, opts...)
	err := round.Start(ctx, wager)
	if round.Status() != blackjack.Betting {
		// The wager was taken, so the round exists even if settlement of a
		// natural failed to persist; a resolve retry picks it up.
		t.blackjack = round
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Blackjack round started", "user", user, "round", round.ID, "wager", wager)
	s.publishIfSettled(user, round)
	return snapshotBlackjack(round), nil
}

// BlackjackState returns the user's current round.
func (s *GameService) BlackjackState(user string) (*BlackjackSnapshot, error) {
	t := s.tables(user)
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.blackjack == nil {
		return nil, ErrNoRound
	}
	return snapshotBlackjack(t.blackjack), nil
}

// blackjackAction runs one player action against the user's open round.
func (s *GameService) blackjackAction(user string, fn func(*blackjack.Round) error) (*BlackjackSnapshot, error) {
	t := s.tables(user)
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.blackjack == nil {
		return nil, ErrNoRound
	}

	settledBefore := t.blackjack.Status() == blackjack.Settled
	if err := fn(t.blackjack); err != nil {
		return nil, err
	}
	if !settledBefore {
		s.publishIfSettled(user, t.blackjack)
	}
	return snapshotBlackjack(t.blackjack), nil
}

// HitBlackjack deals one card to the given hand.
func (s *GameService) HitBlackjack(ctx context.Context, user string, hand int) (*BlackjackSnapshot, error) {
	return s.blackjackAction(user, func(r *blackjack.Round) error {
		return r.Hit(ctx, hand)
	})
}

// StandBlackjack ends actions on the given hand.
func (s *GameService) StandBlackjack(ctx context.Context, user string, hand int) (*BlackjackSnapshot, error) {
	return s.blackjackAction(user, func(r *blackjack.Round) error {
		return r.Stand(ctx, hand)
	})
}

// DoubleBlackjack doubles the wager on the given hand for exactly one card.
func (s *GameService) DoubleBlackjack(ctx context.Context, user string, hand int) (*BlackjackSnapshot, error) {
	return s.blackjackAction(user, func(r *blackjack.Round) error {
		return r.DoubleDown(ctx, hand)
	})
}

// SplitBlackjack splits the given pair into two hands.
func (s *GameService) SplitBlackjack(ctx context.Context, user string, hand int) (*BlackjackSnapshot, error) {
	return s.blackjackAction(user, func(r *blackjack.Round) error {
		return r.Split(ctx, hand)
	})
}

// ResolveBlackjack retries settlement after a failed payout write.
func (s *GameService) ResolveBlackjack(ctx context.Context, user string) (*BlackjackSnapshot, error) {
	return s.blackjackAction(user, func(r *blackjack.Round) error {
		_, err := r.Settle(ctx)
		return err
	})
}

// NextBlackjack returns a settled round to betting; when carryWager is set
// the previous opening wager is staked again immediately.
func (s *GameService) NextBlackjack(ctx context.Context, user string, carryWager bool) (*BlackjackSnapshot, error) {
	return s.blackjackAction(user, func(r *blackjack.Round) error {
		return r.Reset(ctx, carryWager)
	})
}

func (s *GameService) publishIfSettled(user string, round *blackjack.Round) {
	if s.events == nil || round.Status() != blackjack.Settled {
		return
	}
	result := round.Result()
	s.events.Publish(Event{
		Type: "blackjack.settled",
		User: user,
		Payload: map[string]any{
			"round_id": round.ID,
			"credit":   result.Credit,
			"balance":  result.Balance,
		},
	})
}

// rouletteTable returns the user's roulette round, creating it on demand.
// Callers must hold the user's table lock.
func (s *GameService) rouletteTable(user string, t *userTables) *roulette.Round {
	if t.roulette == nil {
		opts := append([]roulette.Option{roulette.WithRules(roulette.Rules{
			MinBet: s.config.Roulette.MinBet,
			MaxBet: s.config.Roulette.MaxBet,
		})}, s.rouletteOpts...)
		t.roulette = roulette.NewRound(s.ledger, user, opts...)
	}
	return t.roulette
}

// PlaceRouletteBet stakes one chip and returns the open bets.
func (s *GameService) PlaceRouletteBet(ctx context.Context, user string, bet roulette.Bet, amount int64) ([]roulette.PlacedBet, error) {
	t := s.tables(user)
	t.mu.Lock()
	defer t.mu.Unlock()

	round := s.rouletteTable(user, t)
	if err := round.PlaceBet(ctx, bet, amount); err != nil {
		return nil, err
	}
	return round.Bets(), nil
}

// SpinRoulette resolves the open bets against a fresh draw.
func (s *GameService) SpinRoulette(ctx context.Context, user string) (*roulette.SpinResult, error) {
	t := s.tables(user)
	t.mu.Lock()
	defer t.mu.Unlock()

	round := s.rouletteTable(user, t)
	result, err := round.Spin(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Roulette spin settled", "user", user, "pocket", result.Pocket, "credit", result.Credit)
	if s.events != nil {
		s.events.Publish(Event{
			Type: "roulette.settled",
			User: user,
			Payload: map[string]any{
				"round_id": result.ID,
				"pocket":   result.Pocket,
				"color":    result.Color.String(),
				"credit":   result.Credit,
				"balance":  result.Balance,
			},
		})
	}
	return result, nil
}

// RouletteState returns the user's open bets and last settled spin.
func (s *GameService) RouletteState(user string) ([]roulette.PlacedBet, *roulette.SpinResult) {
	t := s.tables(user)
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.roulette == nil {
		return nil, nil
	}
	return t.roulette.Bets(), t.roulette.Last()
}

package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Client talks to the casino HTTP API on behalf of one player.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// NewClient creates a client for a server base URL like "http://localhost:8080".
func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// BlackjackState mirrors the server's round representation.
type BlackjackState struct {
	RoundID string  `json:"round_id"`
	Status  string  `json:"status"`
	Active  int     `json:"active_hand"`
	Dealer  Dealer  `json:"dealer"`
	Hands   []Hand  `json:"hands"`
	Result  *Result `json:"result,omitempty"`
}

// Hand is one player hand as rendered at the table.
type Hand struct {
	Cards     []string `json:"cards"`
	Wager     int64    `json:"wager"`
	Doubled   bool     `json:"doubled"`
	Total     int      `json:"total"`
	Soft      bool     `json:"soft"`
	Bust      bool     `json:"bust"`
	Blackjack bool     `json:"blackjack"`
	CanAct    bool     `json:"can_act"`
}

// Dealer is the dealer hand; the hole card stays hidden while the player acts.
type Dealer struct {
	Cards      []string `json:"cards"`
	HoleHidden bool     `json:"hole_hidden"`
	Total      int      `json:"total"`
	Bust       bool     `json:"bust"`
	Blackjack  bool     `json:"blackjack"`
}

// Result is the settlement summary of a finished round.
type Result struct {
	DealerTotal int          `json:"dealer_total"`
	Hands       []HandResult `json:"hands"`
	Credit      int64        `json:"credit"`
	Balance     int64        `json:"balance"`
}

// HandResult is one hand's share of the settlement.
type HandResult struct {
	Outcome string `json:"outcome"`
	Wager   int64  `json:"wager"`
	Payout  int64  `json:"payout"`
	Total   int    `json:"total"`
}

// PlacedBet is one chip sitting on the roulette board.
type PlacedBet struct {
	Kind    string `json:"kind"`
	Numbers []int  `json:"numbers,omitempty"`
	Amount  int64  `json:"amount"`
}

// SpinState is a settled roulette spin.
type SpinState struct {
	RoundID string      `json:"round_id"`
	Pocket  int         `json:"pocket"`
	Color   string      `json:"color"`
	Bets    []BetResult `json:"bets"`
	Credit  int64       `json:"credit"`
	Balance int64       `json:"balance"`
}

// BetResult is one chip's resolution against a spin.
type BetResult struct {
	Kind   string `json:"kind"`
	Amount int64  `json:"amount"`
	Won    bool   `json:"won"`
	Payout int64  `json:"payout"`
}

// Event is a settlement notification from the server's event stream.
type Event struct {
	Type    string          `json:"type"`
	User    string          `json:"user"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Register creates an account.
func (c *Client) Register(username, password string) error {
	return c.call(http.MethodPost, "/api/register",
		map[string]string{"username": username, "password": password}, nil)
}

// Login authenticates and keeps the session token for later calls.
func (c *Client) Login(username, password string) (int64, error) {
	var resp struct {
		Token   string `json:"token"`
		Balance int64  `json:"balance"`
	}
	err := c.call(http.MethodPost, "/api/login",
		map[string]string{"username": username, "password": password}, &resp)
	if err != nil {
		return 0, err
	}
	c.token = resp.Token
	return resp.Balance, nil
}

// Balance returns the player's current balance.
func (c *Client) Balance() (int64, error) {
	var resp struct {
		Balance int64 `json:"balance"`
	}
	err := c.call(http.MethodGet, "/api/balance", nil, &resp)
	return resp.Balance, err
}

// StartBlackjack opens a round with the given wager.
func (c *Client) StartBlackjack(wager int64) (*BlackjackState, error) {
	var state BlackjackState
	err := c.call(http.MethodPost, "/api/blackjack/start", map[string]int64{"wager": wager}, &state)
	return &state, err
}

func (c *Client) blackjackAction(path string, hand int) (*BlackjackState, error) {
	var state BlackjackState
	err := c.call(http.MethodPost, path, map[string]int{"hand": hand}, &state)
	return &state, err
}

// Hit deals one card to the hand.
func (c *Client) Hit(hand int) (*BlackjackState, error) {
	return c.blackjackAction("/api/blackjack/hit", hand)
}

// Stand ends actions on the hand.
func (c *Client) Stand(hand int) (*BlackjackState, error) {
	return c.blackjackAction("/api/blackjack/stand", hand)
}

// Double doubles the wager for exactly one more card.
func (c *Client) Double(hand int) (*BlackjackState, error) {
	return c.blackjackAction("/api/blackjack/double", hand)
}

// Split turns a pair into two hands.
func (c *Client) Split(hand int) (*BlackjackState, error) {
	return c.blackjackAction("/api/blackjack/split", hand)
}

// Resolve retries settlement after a failed payout write.
func (c *Client) Resolve() (*BlackjackState, error) {
	var state BlackjackState
	err := c.call(http.MethodPost, "/api/blackjack/resolve", struct{}{}, &state)
	return &state, err
}

// Next returns a settled round to betting.
func (c *Client) Next(carryWager bool) (*BlackjackState, error) {
	var state BlackjackState
	err := c.call(http.MethodPost, "/api/blackjack/next", map[string]bool{"carry_wager": carryWager}, &state)
	return &state, err
}

// PlaceBet puts a chip on the roulette board.
func (c *Client) PlaceBet(kind string, numbers []int, amount int64) ([]PlacedBet, error) {
	var resp struct {
		Bets []PlacedBet `json:"bets"`
	}
	err := c.call(http.MethodPost, "/api/roulette/bets", map[string]any{
		"kind": kind, "numbers": numbers, "amount": amount,
	}, &resp)
	return resp.Bets, err
}

// Spin resolves the placed bets against a fresh draw.
func (c *Client) Spin() (*SpinState, error) {
	var state SpinState
	err := c.call(http.MethodPost, "/api/roulette/spin", struct{}{}, &state)
	return &state, err
}

// Events connects to the server's websocket stream and forwards settlement
// events until ctx is done.
func (c *Client) Events(ctx context.Context) (<-chan Event, error) {
	u, err := url.Parse(c.base)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"
	u.RawQuery = "token=" + url.QueryEscape(c.token)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("connect event stream: %w", err)
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)
		defer conn.Close()
		for {
			var event Event
			if err := conn.ReadJSON(&event); err != nil {
				return
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	return events, nil
}

// call runs one request and decodes the response into out when non-nil.
func (c *Client) call(method, path string, body, out any) error {
	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.base+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return errors.New(apiErr.Error)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

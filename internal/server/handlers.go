package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/greenfelt/casino/internal/blackjack"
	"github.com/greenfelt/casino/internal/deck"
	"github.com/greenfelt/casino/internal/ledger"
	"github.com/greenfelt/casino/internal/roulette"
	"github.com/greenfelt/casino/internal/session"
	"github.com/greenfelt/casino/internal/store"
)

// Handler builds the HTTP API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("GET /api/balance", s.withUser(s.handleBalance))

	mux.HandleFunc("GET /api/blackjack", s.withUser(s.handleBlackjackState))
	mux.HandleFunc("POST /api/blackjack/start", s.withUser(s.handleBlackjackStart))
	mux.HandleFunc("POST /api/blackjack/hit", s.withUser(s.blackjackAction(s.service.HitBlackjack)))
	mux.HandleFunc("POST /api/blackjack/stand", s.withUser(s.blackjackAction(s.service.StandBlackjack)))
	mux.HandleFunc("POST /api/blackjack/double", s.withUser(s.blackjackAction(s.service.DoubleBlackjack)))
	mux.HandleFunc("POST /api/blackjack/split", s.withUser(s.blackjackAction(s.service.SplitBlackjack)))
	mux.HandleFunc("POST /api/blackjack/resolve", s.withUser(s.handleBlackjackResolve))
	mux.HandleFunc("POST /api/blackjack/next", s.withUser(s.handleBlackjackNext))

	mux.HandleFunc("GET /api/roulette", s.withUser(s.handleRouletteState))
	mux.HandleFunc("POST /api/roulette/bets", s.withUser(s.handleRouletteBet))
	mux.HandleFunc("POST /api/roulette/spin", s.withUser(s.handleRouletteSpin))

	mux.HandleFunc("GET /ws", s.handleEvents)
	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

type userHandler func(w http.ResponseWriter, r *http.Request, user string)

// withUser authenticates the request before calling the handler.
func (s *Server) withUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.sessions.CurrentUser(r)
		if err != nil {
			writeError(w, err)
			return
		}
		next(w, r, user)
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type accountResponse struct {
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := s.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, accountResponse{Username: account.Username, Balance: account.Balance})
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := s.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.sessions.Issue(account.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Username: account.Username, Balance: account.Balance})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request, user string) {
	balance, err := s.service.Balance(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

type wagerRequest struct {
	Wager int64 `json:"wager"`
}

type handRequest struct {
	Hand int `json:"hand"`
}

type handJSON struct {
	Cards     []string `json:"cards"`
	Wager     int64    `json:"wager"`
	Doubled   bool     `json:"doubled,omitempty"`
	Total     int      `json:"total"`
	Soft      bool     `json:"soft,omitempty"`
	Bust      bool     `json:"bust,omitempty"`
	Blackjack bool     `json:"blackjack,omitempty"`
	CanAct    bool     `json:"can_act"`
}

type dealerJSON struct {
	Cards      []string `json:"cards"`
	HoleHidden bool     `json:"hole_hidden,omitempty"`
	Total      int      `json:"total"`
	Bust       bool     `json:"bust,omitempty"`
	Blackjack  bool     `json:"blackjack,omitempty"`
}

type handResultJSON struct {
	Outcome string `json:"outcome"`
	Wager   int64  `json:"wager"`
	Payout  int64  `json:"payout"`
	Total   int    `json:"total"`
}

type resultJSON struct {
	DealerTotal int              `json:"dealer_total"`
	Hands       []handResultJSON `json:"hands"`
	Credit      int64            `json:"credit"`
	Balance     int64            `json:"balance"`
}

type blackjackJSON struct {
	RoundID string      `json:"round_id"`
	Status  string      `json:"status"`
	Active  int         `json:"active_hand"`
	Dealer  dealerJSON  `json:"dealer"`
	Hands   []handJSON  `json:"hands"`
	Result  *resultJSON `json:"result,omitempty"`
}

func cardStrings(cards []deck.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func blackjackResponse(snap *BlackjackSnapshot) blackjackJSON {
	resp := blackjackJSON{
		RoundID: snap.RoundID,
		Status:  snap.Status.String(),
		Active:  snap.Active,
		Dealer: dealerJSON{
			Cards:      cardStrings(snap.Dealer.Cards),
			HoleHidden: snap.Dealer.HoleHidden,
			Total:      snap.Dealer.Value.Total,
			Bust:       snap.Dealer.Value.Bust,
			Blackjack:  snap.Dealer.Value.Blackjack,
		},
		Hands: make([]handJSON, 0, len(snap.Hands)),
	}
	for _, h := range snap.Hands {
		resp.Hands = append(resp.Hands, handJSON{
			Cards:     cardStrings(h.Cards),
			Wager:     h.Wager,
			Doubled:   h.Doubled,
			Total:     h.Value.Total,
			Soft:      h.Value.Soft,
			Bust:      h.Value.Bust,
			Blackjack: h.Value.Blackjack,
			CanAct:    h.CanAct,
		})
	}
	if snap.Result != nil {
		result := &resultJSON{
			DealerTotal: snap.Result.Dealer.Total,
			Credit:      snap.Result.Credit,
			Balance:     snap.Result.Balance,
			Hands:       make([]handResultJSON, 0, len(snap.Result.Hands)),
		}
		for _, hr := range snap.Result.Hands {
			result.Hands = append(result.Hands, handResultJSON{
				Outcome: hr.Outcome.String(),
				Wager:   hr.Wager,
				Payout:  hr.Payout,
				Total:   hr.Value.Total,
			})
		}
		resp.Result = result
	}
	return resp
}

func (s *Server) handleBlackjackState(w http.ResponseWriter, r *http.Request, user string) {
	snap, err := s.service.BlackjackState(user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blackjackResponse(snap))
}

func (s *Server) handleBlackjackStart(w http.ResponseWriter, r *http.Request, user string) {
	var req wagerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := s.service.StartBlackjack(r.Context(), user, req.Wager)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blackjackResponse(snap))
}

// blackjackAction adapts a per-hand service call to an HTTP handler.
func (s *Server) blackjackAction(action func(ctx context.Context, user string, hand int) (*BlackjackSnapshot, error)) userHandler {
	return func(w http.ResponseWriter, r *http.Request, user string) {
		var req handRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		snap, err := action(r.Context(), user, req.Hand)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, blackjackResponse(snap))
	}
}

func (s *Server) handleBlackjackResolve(w http.ResponseWriter, r *http.Request, user string) {
	snap, err := s.service.ResolveBlackjack(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blackjackResponse(snap))
}

type nextRequest struct {
	CarryWager bool `json:"carry_wager"`
}

func (s *Server) handleBlackjackNext(w http.ResponseWriter, r *http.Request, user string) {
	var req nextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := s.service.NextBlackjack(r.Context(), user, req.CarryWager)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blackjackResponse(snap))
}

type betRequest struct {
	Kind    string `json:"kind"`
	Numbers []int  `json:"numbers,omitempty"`
	Amount  int64  `json:"amount"`
}

type placedBetJSON struct {
	Kind    string `json:"kind"`
	Numbers []int  `json:"numbers,omitempty"`
	Amount  int64  `json:"amount"`
}

type betResultJSON struct {
	Kind   string `json:"kind"`
	Amount int64  `json:"amount"`
	Won    bool   `json:"won"`
	Payout int64  `json:"payout"`
}

type spinJSON struct {
	RoundID string          `json:"round_id"`
	Pocket  int             `json:"pocket"`
	Color   string          `json:"color"`
	Bets    []betResultJSON `json:"bets"`
	Credit  int64           `json:"credit"`
	Balance int64           `json:"balance"`
}

// parseBet builds a board position from its wire form. Inside bets carry
// their defining numbers: one for straight, street, corner, line, dozen and
// column, two for a split. Outside bets carry none.
func parseBet(kind string, numbers []int) (roulette.Bet, error) {
	one := func() (int, error) {
		if len(numbers) != 1 {
			return 0, fmt.Errorf("%w: %s takes exactly one number", roulette.ErrInvalidBet, kind)
		}
		return numbers[0], nil
	}

	switch kind {
	case "straight":
		n, err := one()
		if err != nil {
			return roulette.Bet{}, err
		}
		return roulette.NewStraight(n)
	case "split":
		if len(numbers) != 2 {
			return roulette.Bet{}, fmt.Errorf("%w: split takes exactly two numbers", roulette.ErrInvalidBet)
		}
		return roulette.NewSplit(numbers[0], numbers[1])
	case "street":
		n, err := one()
		if err != nil {
			return roulette.Bet{}, err
		}
		return roulette.NewStreet(n)
	case "corner":
		n, err := one()
		if err != nil {
			return roulette.Bet{}, err
		}
		return roulette.NewCorner(n)
	case "line":
		n, err := one()
		if err != nil {
			return roulette.Bet{}, err
		}
		return roulette.NewLine(n)
	case "dozen":
		n, err := one()
		if err != nil {
			return roulette.Bet{}, err
		}
		return roulette.NewDozen(n)
	case "column":
		n, err := one()
		if err != nil {
			return roulette.Bet{}, err
		}
		return roulette.NewColumn(n)
	case "red":
		return roulette.NewRed(), nil
	case "black":
		return roulette.NewBlack(), nil
	case "even":
		return roulette.NewEven(), nil
	case "odd":
		return roulette.NewOdd(), nil
	case "low":
		return roulette.NewLow(), nil
	case "high":
		return roulette.NewHigh(), nil
	default:
		return roulette.Bet{}, fmt.Errorf("%w: unknown kind %q", roulette.ErrInvalidBet, kind)
	}
}

func placedBets(bets []roulette.PlacedBet) []placedBetJSON {
	out := make([]placedBetJSON, 0, len(bets))
	for _, b := range bets {
		out = append(out, placedBetJSON{
			Kind:    b.Bet.Kind.String(),
			Numbers: b.Bet.Numbers,
			Amount:  b.Amount,
		})
	}
	return out
}

func spinResponse(result *roulette.SpinResult) spinJSON {
	resp := spinJSON{
		RoundID: result.ID,
		Pocket:  result.Pocket,
		Color:   result.Color.String(),
		Credit:  result.Credit,
		Balance: result.Balance,
		Bets:    make([]betResultJSON, 0, len(result.Bets)),
	}
	for _, br := range result.Bets {
		resp.Bets = append(resp.Bets, betResultJSON{
			Kind:   br.Bet.Kind.String(),
			Amount: br.Amount,
			Won:    br.Won,
			Payout: br.Payout,
		})
	}
	return resp
}

func (s *Server) handleRouletteBet(w http.ResponseWriter, r *http.Request, user string) {
	var req betRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	bet, err := parseBet(req.Kind, req.Numbers)
	if err != nil {
		writeError(w, err)
		return
	}
	bets, err := s.service.PlaceRouletteBet(r.Context(), user, bet, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bets": placedBets(bets)})
}

func (s *Server) handleRouletteSpin(w http.ResponseWriter, r *http.Request, user string) {
	result, err := s.service.SpinRoulette(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spinResponse(result))
}

func (s *Server) handleRouletteState(w http.ResponseWriter, r *http.Request, user string) {
	bets, last := s.service.RouletteState(user)
	resp := map[string]any{"bets": placedBets(bets)}
	if last != nil {
		resp["last"] = spinResponse(last)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleEvents authenticates and hands the connection to the hub. Browsers
// cannot set headers on websocket upgrades, so a token query parameter is
// accepted as well.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	user, err := s.sessions.CurrentUser(r)
	if err != nil {
		if token := r.URL.Query().Get("token"); token != "" {
			user, err = s.sessions.Verify(token)
		}
		if err != nil {
			writeError(w, err)
			return
		}
	}
	s.hub.Serve(w, r, user)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNoSession), errors.Is(err, ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrExists), errors.Is(err, ErrRoundOpen):
		return http.StatusConflict
	case errors.Is(err, ErrNoRound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, ledger.ErrUnknownAccount):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, blackjack.ErrInvalidWager),
		errors.Is(err, blackjack.ErrInvalidAction),
		errors.Is(err, roulette.ErrInvalidWager),
		errors.Is(err, roulette.ErrInvalidBet),
		errors.Is(err, roulette.ErrNoBets),
		errors.Is(err, ledger.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

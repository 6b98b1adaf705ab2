package tui

import (
	"fmt"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTable records calls and plays back canned states.
type fakeTable struct {
	calls []string
	state *BlackjackState
	spin  *SpinState
	err   error
}

func (f *fakeTable) record(call string) { f.calls = append(f.calls, call) }

func (f *fakeTable) Balance() (int64, error) { f.record("balance"); return 750, f.err }

func (f *fakeTable) StartBlackjack(wager int64) (*BlackjackState, error) {
	f.record(fmt.Sprintf("start %d", wager))
	return f.state, f.err
}

func (f *fakeTable) Hit(hand int) (*BlackjackState, error) {
	f.record(fmt.Sprintf("hit %d", hand))
	return f.state, f.err
}

func (f *fakeTable) Stand(hand int) (*BlackjackState, error) {
	f.record(fmt.Sprintf("stand %d", hand))
	return f.state, f.err
}

func (f *fakeTable) Double(hand int) (*BlackjackState, error) {
	f.record(fmt.Sprintf("double %d", hand))
	return f.state, f.err
}

func (f *fakeTable) Split(hand int) (*BlackjackState, error) {
	f.record(fmt.Sprintf("split %d", hand))
	return f.state, f.err
}

func (f *fakeTable) Resolve() (*BlackjackState, error) { f.record("resolve"); return f.state, f.err }

func (f *fakeTable) Next(carry bool) (*BlackjackState, error) {
	f.record(fmt.Sprintf("next %v", carry))
	return f.state, f.err
}

func (f *fakeTable) PlaceBet(kind string, numbers []int, amount int64) ([]PlacedBet, error) {
	f.record(fmt.Sprintf("chip %s %v %d", kind, numbers, amount))
	return []PlacedBet{{Kind: kind, Numbers: numbers, Amount: amount}}, f.err
}

func (f *fakeTable) Spin() (*SpinState, error) { f.record("spin"); return f.spin, f.err }

func testModel(t *testing.T, table *fakeTable) *Model {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	return newModel(table, 1000, nil, logger)
}

// run executes a command line against the model, feeding resulting messages
// back in as the Bubble Tea runtime would.
func run(t *testing.T, m *Model, line string) {
	t.Helper()
	cmd := m.dispatch(line)
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		_, _ = m.Update(msg)
	}
}

func TestDispatchBlackjackCommands(t *testing.T) {
	table := &fakeTable{state: &BlackjackState{
		Status: "player_acting",
		Active: 0,
		Dealer: Dealer{Cards: []string{"K♦"}, HoleHidden: true, Total: 10},
		Hands:  []Hand{{Cards: []string{"K♠", "Q♠"}, Total: 20, Wager: 100, CanAct: true}},
	}}
	m := testModel(t, table)

	run(t, m, "bet 100")
	run(t, m, "hit")
	run(t, m, "stand")

	assert.Equal(t, []string{"start 100", "hit 0", "stand 0"}, table.calls)
	require.NotNil(t, m.state)
	assert.Equal(t, "player_acting", m.state.Status)
}

func TestDispatchUsesActiveHand(t *testing.T) {
	table := &fakeTable{state: &BlackjackState{
		Status: "player_acting",
		Active: 1,
		Hands:  []Hand{{Total: 21}, {Total: 12, CanAct: true}},
	}}
	m := testModel(t, table)

	run(t, m, "bet 50")
	run(t, m, "hit") // no index: follows the active hand
	run(t, m, "stand 0")

	assert.Equal(t, []string{"start 50", "hit 1", "stand 0"}, table.calls)
}

func TestDispatchRouletteCommands(t *testing.T) {
	table := &fakeTable{spin: &SpinState{
		Pocket: 17, Color: "black", Balance: 1350,
		Bets: []BetResult{{Kind: "straight", Amount: 10, Won: true, Payout: 360}},
	}}
	m := testModel(t, table)

	run(t, m, "chip straight 17 10")
	run(t, m, "chip red 25")
	run(t, m, "spin")

	assert.Equal(t, []string{"chip straight [17] 10", "chip red [] 25", "spin"}, table.calls)
	assert.Equal(t, int64(1350), m.balance)
	assert.Empty(t, m.bets, "board clears after the spin")
}

func TestSettlementUpdatesBalance(t *testing.T) {
	table := &fakeTable{state: &BlackjackState{
		Status: "settled",
		Active: -1,
		Dealer: Dealer{Cards: []string{"K♦", "8♦"}, Total: 18},
		Hands:  []Hand{{Cards: []string{"K♠", "Q♠"}, Total: 20, Wager: 100}},
		Result: &Result{
			DealerTotal: 18,
			Credit:      200,
			Balance:     1100,
			Hands:       []HandResult{{Outcome: "win", Wager: 100, Payout: 200, Total: 20}},
		},
	}}
	m := testModel(t, table)

	run(t, m, "bet 100")
	assert.Equal(t, int64(1100), m.balance)
}

func TestDispatchRejectsBadInput(t *testing.T) {
	table := &fakeTable{}
	m := testModel(t, table)

	run(t, m, "bet")
	run(t, m, "chip red")
	run(t, m, "shove all-in")

	assert.Empty(t, table.calls, "malformed commands never reach the API")
}

func TestErrorsLandInGameLog(t *testing.T) {
	table := &fakeTable{err: fmt.Errorf("blackjack: invalid wager")}
	m := testModel(t, table)

	before := len(m.gameLog)
	run(t, m, "bet 100")
	require.Greater(t, len(m.gameLog), before)
	assert.Contains(t, m.gameLog[len(m.gameLog)-1], "invalid wager")
}

func TestParseChip(t *testing.T) {
	kind, numbers, amount, err := parseChip([]string{"split", "8", "9", "25"})
	require.NoError(t, err)
	assert.Equal(t, "split", kind)
	assert.Equal(t, []int{8, 9}, numbers)
	assert.Equal(t, int64(25), amount)

	kind, numbers, amount, err = parseChip([]string{"red", "10"})
	require.NoError(t, err)
	assert.Equal(t, "red", kind)
	assert.Empty(t, numbers)
	assert.Equal(t, int64(10), amount)

	_, _, _, err = parseChip([]string{"red"})
	require.Error(t, err)

	_, _, _, err = parseChip([]string{"straight", "x", "10"})
	require.Error(t, err)
}

func TestRenderBlackjackHidesHoleCard(t *testing.T) {
	out := renderBlackjack(&BlackjackState{
		Status: "player_acting",
		Active: 0,
		Dealer: Dealer{Cards: []string{"K♦"}, HoleHidden: true, Total: 10},
		Hands:  []Hand{{Cards: []string{"A♠", "6♥"}, Total: 17, Soft: true, Wager: 50, CanAct: true}},
	})

	assert.Contains(t, out, "??")
	assert.Contains(t, out, "soft")
	assert.Contains(t, out, "> Hand 0")
}

func TestQuitLeavesTheTable(t *testing.T) {
	m := testModel(t, &fakeTable{})

	run(t, m, "quit")
	assert.True(t, m.quitting)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
}

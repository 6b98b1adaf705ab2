package tui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// api is the slice of the Client the model drives. It exists so tests can
// run the model against a fake table.
type api interface {
	Balance() (int64, error)
	StartBlackjack(wager int64) (*BlackjackState, error)
	Hit(hand int) (*BlackjackState, error)
	Stand(hand int) (*BlackjackState, error)
	Double(hand int) (*BlackjackState, error)
	Split(hand int) (*BlackjackState, error)
	Resolve() (*BlackjackState, error)
	Next(carryWager bool) (*BlackjackState, error)
	PlaceBet(kind string, numbers []int, amount int64) ([]PlacedBet, error)
	Spin() (*SpinState, error)
}

// Model is the Bubble Tea model for the casino table.
type Model struct {
	api    api
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	input       textinput.Model

	// State
	gameLog []string
	balance int64
	state   *BlackjackState
	bets    []PlacedBet
	events  <-chan Event

	// Dimensions
	width       int
	height      int
	initialized bool

	quitting bool
}

type stateMsg struct{ state *BlackjackState }
type spinMsg struct{ spin *SpinState }
type betsMsg struct{ bets []PlacedBet }
type balanceMsg struct{ balance int64 }
type errMsg struct{ err error }
type eventMsg struct{ event Event }

// NewModel creates the table model. The event channel may be nil when the
// server's event stream is unavailable.
func NewModel(client *Client, balance int64, events <-chan Event, logger *log.Logger) *Model {
	return newModel(client, balance, events, logger)
}

func newModel(a api, balance int64, events <-chan Event, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "bet 100, hit, stand, double, split, chip red 10, spin, help"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.Prompt = "> "

	m := &Model{
		api:         a,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
		balance:     balance,
		events:      events,
	}
	m.appendLog(InfoStyle.Render("Welcome to the table. Type 'help' for commands."))
	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

// waitForEvent re-arms the listener on the settlement event stream.
func (m *Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return nil
		}
		return eventMsg{event: event}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logHeight := m.height - 12
		if logHeight < 3 {
			logHeight = 3
		}
		m.logViewport.Width = m.width
		m.logViewport.Height = logHeight
		m.initialized = true
		m.refreshLog()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line != "" {
				if cmd := m.dispatch(line); cmd != nil {
					cmds = append(cmds, cmd)
				}
			}
			if m.quitting {
				return m, tea.Sequence(tea.ClearScreen, tea.Quit)
			}
		case "up":
			m.logViewport.ScrollUp(1)
		case "down":
			m.logViewport.ScrollDown(1)
		}

	case stateMsg:
		m.state = msg.state
		m.logRound(msg.state)

	case spinMsg:
		m.balance = msg.spin.Balance
		m.bets = nil
		m.logSpin(msg.spin)

	case betsMsg:
		m.bets = msg.bets
		m.appendLog(TableStyle.Render(fmt.Sprintf("%d chip(s) on the board", len(msg.bets))))

	case balanceMsg:
		m.balance = msg.balance
		m.appendLog(BalanceStyle.Render(fmt.Sprintf("Balance: %d", msg.balance)))

	case errMsg:
		m.appendLog(ErrorStyle.Render(msg.err.Error()))

	case eventMsg:
		m.logEvent(msg.event)
		cmds = append(cmds, m.waitForEvent())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// dispatch turns one input line into an API call command.
func (m *Model) dispatch(line string) tea.Cmd {
	fields := strings.Fields(strings.ToLower(line))
	verb, args := fields[0], fields[1:]

	switch verb {
	case "quit", "exit":
		m.quitting = true
		return nil

	case "help":
		m.appendLog(InfoStyle.Render(helpText))
		return nil

	case "balance":
		return m.callState(func() (tea.Msg, error) {
			balance, err := m.api.Balance()
			return balanceMsg{balance: balance}, err
		})

	case "bet", "deal":
		wager, err := parseAmount(args, 0)
		if err != nil {
			m.appendLog(ErrorStyle.Render("usage: bet <amount>"))
			return nil
		}
		return m.blackjackCall(func() (*BlackjackState, error) { return m.api.StartBlackjack(wager) })

	case "hit":
		hand := m.targetHand(args)
		return m.blackjackCall(func() (*BlackjackState, error) { return m.api.Hit(hand) })

	case "stand":
		hand := m.targetHand(args)
		return m.blackjackCall(func() (*BlackjackState, error) { return m.api.Stand(hand) })

	case "double":
		hand := m.targetHand(args)
		return m.blackjackCall(func() (*BlackjackState, error) { return m.api.Double(hand) })

	case "split":
		hand := m.targetHand(args)
		return m.blackjackCall(func() (*BlackjackState, error) { return m.api.Split(hand) })

	case "resolve":
		return m.blackjackCall(m.api.Resolve)

	case "next":
		return m.blackjackCall(func() (*BlackjackState, error) { return m.api.Next(false) })

	case "again":
		return m.blackjackCall(func() (*BlackjackState, error) { return m.api.Next(true) })

	case "chip":
		kind, numbers, amount, err := parseChip(args)
		if err != nil {
			m.appendLog(ErrorStyle.Render(err.Error()))
			return nil
		}
		return m.callState(func() (tea.Msg, error) {
			bets, err := m.api.PlaceBet(kind, numbers, amount)
			return betsMsg{bets: bets}, err
		})

	case "spin":
		return m.callState(func() (tea.Msg, error) {
			spin, err := m.api.Spin()
			return spinMsg{spin: spin}, err
		})

	default:
		m.appendLog(ErrorStyle.Render(fmt.Sprintf("unknown command %q, try 'help'", verb)))
		return nil
	}
}

const helpText = `commands:
  bet <amount>                 start a blackjack round
  hit | stand | double | split act on the active hand
  again | next                 next round (again re-stakes the same wager)
  resolve                      retry a stuck settlement
  chip <position> [n...] <amt> place a roulette chip (red, black, even, odd,
                               low, high, straight N, split A B, street R,
                               corner N, line R, dozen D, column C)
  spin                         spin the wheel
  balance                      show balance
  quit                         leave the table`

func (m *Model) callState(fn func() (tea.Msg, error)) tea.Cmd {
	return func() tea.Msg {
		msg, err := fn()
		if err != nil {
			return errMsg{err: err}
		}
		return msg
	}
}

func (m *Model) blackjackCall(fn func() (*BlackjackState, error)) tea.Cmd {
	return m.callState(func() (tea.Msg, error) {
		state, err := fn()
		return stateMsg{state: state}, err
	})
}

// targetHand picks the hand an action applies to: explicit index, or the
// hand currently in play.
func (m *Model) targetHand(args []string) int {
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			return n
		}
	}
	if m.state != nil {
		return m.state.Active
	}
	return 0
}

func parseAmount(args []string, index int) (int64, error) {
	if len(args) <= index {
		return 0, fmt.Errorf("missing amount")
	}
	return strconv.ParseInt(args[index], 10, 64)
}

// parseChip reads "<kind> [numbers...] <amount>".
func parseChip(args []string) (string, []int, int64, error) {
	if len(args) < 2 {
		return "", nil, 0, fmt.Errorf("usage: chip <position> [numbers...] <amount>")
	}

	kind := args[0]
	amount, err := strconv.ParseInt(args[len(args)-1], 10, 64)
	if err != nil {
		return "", nil, 0, fmt.Errorf("bad amount %q", args[len(args)-1])
	}

	var numbers []int
	for _, arg := range args[1 : len(args)-1] {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return "", nil, 0, fmt.Errorf("bad number %q", arg)
		}
		numbers = append(numbers, n)
	}
	return kind, numbers, amount, nil
}

func (m *Model) logRound(state *BlackjackState) {
	m.appendLog(TableStyle.Render(renderBlackjack(state)))
	if state.Result != nil {
		m.balance = state.Result.Balance
		for _, hr := range state.Result.Hands {
			line := fmt.Sprintf("%s: wager %d, payout %d", hr.Outcome, hr.Wager, hr.Payout)
			if hr.Payout > hr.Wager {
				m.appendLog(WinStyle.Render(line))
			} else {
				m.appendLog(LoseStyle.Render(line))
			}
		}
		m.appendLog(BalanceStyle.Render(fmt.Sprintf("Balance: %d", state.Result.Balance)))
	}
}

func (m *Model) logSpin(spin *SpinState) {
	line := fmt.Sprintf("The ball lands on %d (%s)", spin.Pocket, spin.Color)
	if spin.Color == "red" {
		m.appendLog(RedCardStyle.Render(line))
	} else {
		m.appendLog(TableStyle.Render(line))
	}
	for _, br := range spin.Bets {
		if br.Won {
			m.appendLog(WinStyle.Render(fmt.Sprintf("%s wins %d", br.Kind, br.Payout)))
		} else {
			m.appendLog(LoseStyle.Render(fmt.Sprintf("%s loses %d", br.Kind, br.Amount)))
		}
	}
	m.appendLog(BalanceStyle.Render(fmt.Sprintf("Balance: %d", spin.Balance)))
}

func (m *Model) logEvent(event Event) {
	var payload struct {
		Credit  int64 `json:"credit"`
		Balance int64 `json:"balance"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err == nil {
		m.balance = payload.Balance
	}
	m.appendLog(InfoStyle.Render(fmt.Sprintf("[%s] credit %d, balance %d",
		event.Type, payload.Credit, payload.Balance)))
}

// renderBlackjack draws the table state as text.
func renderBlackjack(state *BlackjackState) string {
	var b strings.Builder

	b.WriteString("Dealer: ")
	for i, card := range state.Dealer.Cards {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(styleCard(card))
	}
	if state.Dealer.HoleHidden {
		b.WriteString(" ??")
	} else {
		fmt.Fprintf(&b, "  (%d)", state.Dealer.Total)
	}
	b.WriteString("\n")

	for i, hand := range state.Hands {
		marker := "  "
		if state.Status == "player_acting" && i == state.Active {
			marker = "> "
		}
		fmt.Fprintf(&b, "%sHand %d: ", marker, i)
		for j, card := range hand.Cards {
			if j > 0 {
				b.WriteString(" ")
			}
			b.WriteString(styleCard(card))
		}
		fmt.Fprintf(&b, "  (%d", hand.Total)
		if hand.Soft {
			b.WriteString(" soft")
		}
		b.WriteString(")")
		switch {
		case hand.Blackjack:
			b.WriteString("  blackjack!")
		case hand.Bust:
			b.WriteString("  bust")
		}
		fmt.Fprintf(&b, "  wager %d", hand.Wager)
		if hand.Doubled {
			b.WriteString(" (doubled)")
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) appendLog(line string) {
	m.gameLog = append(m.gameLog, line)
	m.refreshLog()
}

func (m *Model) refreshLog() {
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.GotoBottom()
}

// View renders the table.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	header := HeaderStyle.Render(" GREENFELT CASINO ")
	balance := BalanceStyle.Render(fmt.Sprintf("Balance: %d", m.balance))
	top := lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", balance)

	var table string
	if m.state != nil {
		table = TableStyle.Render(renderBlackjack(m.state))
	}

	var board string
	if len(m.bets) > 0 {
		parts := make([]string, 0, len(m.bets))
		for _, bet := range m.bets {
			if len(bet.Numbers) > 0 && bet.Kind == "straight" {
				parts = append(parts, fmt.Sprintf("%s %d (%d)", bet.Kind, bet.Numbers[0], bet.Amount))
			} else {
				parts = append(parts, fmt.Sprintf("%s (%d)", bet.Kind, bet.Amount))
			}
		}
		board = InfoStyle.Render("Board: " + strings.Join(parts, ", "))
	}

	sections := []string{top}
	if table != "" {
		sections = append(sections, table)
	}
	if board != "" {
		sections = append(sections, board)
	}
	sections = append(sections, m.logViewport.View(), m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

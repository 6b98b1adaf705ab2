package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/greenfelt/casino/cmd/casino/shared"
	"github.com/greenfelt/casino/internal/tui"
)

// PlayCmd connects to a server and opens the interactive table.
type PlayCmd struct {
	Addr     string `kong:"default='http://localhost:8080',help='Server URL'"`
	Username string `kong:"required,help='Account username'"`
	Password string `kong:"required,help='Account password'"`
	Debug    bool   `kong:"help='Enable debug logging'"`
}

func (c *PlayCmd) Run() error {
	level := "warn"
	if c.Debug {
		level = "debug"
	}
	logger := shared.SetupLogger(level)

	if termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	client := tui.NewClient(c.Addr)
	balance, err := client.Login(c.Username, c.Password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The table still works without the live event stream.
	events, err := client.Events(ctx)
	if err != nil {
		logger.Warn("Event stream unavailable", "error", err)
		events = nil
	}

	model := tui.NewModel(client, balance, events, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

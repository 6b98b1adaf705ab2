package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/greenfelt/casino/cmd/casino/shared"
	"github.com/greenfelt/casino/internal/server"
	"github.com/greenfelt/casino/internal/store"
)

// ServeCmd runs the casino server.
type ServeCmd struct {
	Config string `kong:"default='casino.hcl',help='Path to HCL config file'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
	Memory bool   `kong:"help='Use an in-memory account store (accounts vanish on exit)'"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := cfg.Server.LogLevel
	if c.Debug {
		level = "debug"
	}
	logger := shared.SetupLogger(level)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var accounts store.Store
	if c.Memory {
		accounts = store.NewMemory()
		logger.Warn("Using in-memory account store")
	} else {
		accounts, err = store.OpenSQLite(cfg.Server.DatabasePath)
		if err != nil {
			return fmt.Errorf("open account store: %w", err)
		}
		logger.Info("Opened account store", "path", cfg.Server.DatabasePath)
	}
	defer func() { _ = accounts.Close() }()

	logger.Info("Starting casino server",
		"addr", cfg.ListenAddress(),
		"starting_balance", cfg.Server.StartingBalance,
		"blackjack_max_bet", cfg.Blackjack.MaxBet,
		"roulette_max_bet", cfg.Roulette.MaxBet)

	ctx := shared.SetupSignalHandler(logger)
	if err := server.New(cfg, accounts, logger).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

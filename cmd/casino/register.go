package main

import (
	"fmt"

	"github.com/greenfelt/casino/internal/tui"
)

// RegisterCmd creates an account over the HTTP API.
type RegisterCmd struct {
	Addr     string `kong:"default='http://localhost:8080',help='Server URL'"`
	Username string `kong:"arg,help='Account username'"`
	Password string `kong:"arg,help='Account password'"`
}

func (c *RegisterCmd) Run() error {
	client := tui.NewClient(c.Addr)
	if err := client.Register(c.Username, c.Password); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	balance, err := client.Login(c.Username, c.Password)
	if err != nil {
		return fmt.Errorf("login after register: %w", err)
	}

	fmt.Printf("Account %q created with balance %d\n", c.Username, balance)
	return nil
}

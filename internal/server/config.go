package server

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete server configuration. Every block is optional;
// defaults fill what the file leaves out.
type Config struct {
	Server    *Settings    `hcl:"server,block"`
	Blackjack *TableLimits `hcl:"blackjack,block"`
	Roulette  *TableLimits `hcl:"roulette,block"`
}

// Settings contains server-level configuration.
type Settings struct {
	Address         string `hcl:"address,optional"`
	Port            int    `hcl:"port,optional"`
	LogLevel        string `hcl:"log_level,optional"`
	DatabasePath    string `hcl:"database,optional"`
	SessionSecret   string `hcl:"session_secret,optional"`
	SessionTTLHours int    `hcl:"session_ttl_hours,optional"`
	StartingBalance int64  `hcl:"starting_balance,optional"`
}

// TableLimits bounds the wagers a game accepts.
type TableLimits struct {
	MinBet int64 `hcl:"min_bet,optional"`
	MaxBet int64 `hcl:"max_bet,optional"`
}

// envOverrides are applied on top of the file, keeping secrets out of it.
type envOverrides struct {
	Address       string `env:"CASINO_ADDRESS"`
	Port          int    `env:"CASINO_PORT"`
	DatabasePath  string `env:"CASINO_DATABASE"`
	SessionSecret string `env:"CASINO_SESSION_SECRET"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: &Settings{
			Address:         "localhost",
			Port:            8080,
			LogLevel:        "info",
			DatabasePath:    "casino.db",
			SessionTTLHours: 24,
			StartingBalance: 1000,
		},
		Blackjack: &TableLimits{MinBet: 1, MaxBet: 1000},
		Roulette:  &TableLimits{MinBet: 1, MaxBet: 1000},
	}
}

// LoadConfig loads configuration from an HCL file, fills defaults, and
// applies environment overrides. A missing file yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filename); err == nil {
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCLFile(filename)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
		}

		var loaded Config
		diags = gohcl.DecodeBody(file.Body, nil, &loaded)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
		}
		applyDefaults(&loaded)
		config = &loaded
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if overrides.Address != "" {
		config.Server.Address = overrides.Address
	}
	if overrides.Port != 0 {
		config.Server.Port = overrides.Port
	}
	if overrides.DatabasePath != "" {
		config.Server.DatabasePath = overrides.DatabasePath
	}
	if overrides.SessionSecret != "" {
		config.Server.SessionSecret = overrides.SessionSecret
	}

	return config, nil
}

func applyDefaults(config *Config) {
	if config.Server == nil {
		config.Server = &Settings{}
	}
	if config.Blackjack == nil {
		config.Blackjack = &TableLimits{}
	}
	if config.Roulette == nil {
		config.Roulette = &TableLimits{}
	}
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Server.DatabasePath == "" {
		config.Server.DatabasePath = "casino.db"
	}
	if config.Server.SessionTTLHours == 0 {
		config.Server.SessionTTLHours = 24
	}
	if config.Server.StartingBalance == 0 {
		config.Server.StartingBalance = 1000
	}
	if config.Blackjack.MinBet == 0 {
		config.Blackjack.MinBet = 1
	}
	if config.Blackjack.MaxBet == 0 {
		config.Blackjack.MaxBet = 1000
	}
	if config.Roulette.MinBet == 0 {
		config.Roulette.MinBet = 1
	}
	if config.Roulette.MaxBet == 0 {
		config.Roulette.MaxBet = 1000
	}
}

// Validate validates the server configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.StartingBalance <= 0 {
		return fmt.Errorf("starting balance must be positive, got %d", c.Server.StartingBalance)
	}
	if c.Server.SessionSecret == "" {
		return fmt.Errorf("session secret is required (set session_secret or CASINO_SESSION_SECRET)")
	}
	for name, limits := range map[string]*TableLimits{"blackjack": c.Blackjack, "roulette": c.Roulette} {
		if limits.MinBet <= 0 {
			return fmt.Errorf("%s: min bet must be positive", name)
		}
		if limits.MaxBet < limits.MinBet {
			return fmt.Errorf("%s: max bet must be at least the min bet", name)
		}
	}
	return nil
}

// SessionTTL returns how long issued sessions stay valid.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Server.SessionTTLHours) * time.Hour
}

// ListenAddress returns the host:port the server binds.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Package config parses the daemon's HCL configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete daemon configuration.
type Config struct {
	Server  ServerConfig  `hcl:"server,block"`
	Game    GameConfig    `hcl:"game,block"`
	Storage StorageConfig `hcl:"storage,block"`
	Agents  []AgentConfig `hcl:"agent,block"`
}

// ServerConfig contains process-level settings.
type ServerConfig struct {
	Listen   string `hcl:"listen,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameConfig sets the table parameters for new games. Amounts are in
// cents.
type GameConfig struct {
	SmallBlind          int64 `hcl:"small_blind"`
	BigBlind            int64 `hcl:"big_blind"`
	StartingStack       int64 `hcl:"starting_stack"`
	TurnTimeoutSeconds  int   `hcl:"turn_timeout_seconds,optional"`
	ScanIntervalSeconds int   `hcl:"scan_interval_seconds,optional"`
}

// StorageConfig selects the game store. An empty DSN keeps games in
// memory.
type StorageConfig struct {
	PostgresDSN string `hcl:"postgres_dsn,optional"`
}

// AgentConfig seeds the in-process ledger with an agent balance.
type AgentConfig struct {
	ID      string `hcl:"id,label"`
	Balance int64  `hcl:"balance"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Listen: ":8080", LogLevel: "info"},
		Game: GameConfig{
			SmallBlind:          100,
			BigBlind:            200,
			StartingStack:       20_000,
			TurnTimeoutSeconds:  30,
			ScanIntervalSeconds: 5,
		},
	}
}

// Load reads an HCL configuration file, applying defaults for missing
// values. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parse %s: %s", filename, diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: decode %s: %s", filename, diags.Error())
	}

	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	if cfg.Game.TurnTimeoutSeconds == 0 {
		cfg.Game.TurnTimeoutSeconds = 30
	}
	if cfg.Game.ScanIntervalSeconds == 0 {
		cfg.Game.ScanIntervalSeconds = 5
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Game.SmallBlind <= 0 || c.Game.BigBlind < c.Game.SmallBlind {
		return fmt.Errorf("config: invalid blinds %d/%d", c.Game.SmallBlind, c.Game.BigBlind)
	}
	if c.Game.StartingStack < c.Game.BigBlind {
		return fmt.Errorf("config: starting stack %d below big blind %d",
			c.Game.StartingStack, c.Game.BigBlind)
	}
	return nil
}

// Command holdemd runs the hold'em engine daemon: an HTTP/websocket
// gateway in front of the engine, a timeout scanner, and either an
// in-memory or Postgres-backed game store.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/chiptable/holdem/internal/config"
	"github.com/chiptable/holdem/internal/engine"
	"github.com/chiptable/holdem/internal/gateway"
	"github.com/chiptable/holdem/internal/store"
)

var CLI struct {
	Config   string `short:"c" default:"holdemd.hcl" help:"Path to HCL configuration file"`
	Listen   string `short:"l" help:"Listen address (overrides config)"`
	LogLevel string `help:"Log level (overrides config)"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		log.Error("failed to load config", "error", err)
		kctx.Exit(1)
	}
	if CLI.Listen != "" {
		cfg.Server.Listen = CLI.Listen
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if level, err := log.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("daemon exited", "error", err)
		kctx.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var gameStore engine.Store
	if cfg.Storage.PostgresDSN != "" {
		pg, err := store.OpenPostgres(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return err
		}
		defer pg.Close()
		gameStore = pg
		logger.Info("using postgres store")
	} else {
		gameStore = store.NewMemory()
		logger.Info("using in-memory store")
	}

	ledger := engine.NewMemoryLedger()
	for _, agent := range cfg.Agents {
		ledger.Fund(agent.ID, agent.Balance)
		logger.Info("funded agent", "agent", agent.ID, "balance", agent.Balance)
	}

	// The gateway doubles as the event sink, so wire it after the
	// engine exists.
	eng := engine.New(gameStore, ledger, nil, nil, logger, engine.Config{
		SmallBlind:    cfg.Game.SmallBlind,
		BigBlind:      cfg.Game.BigBlind,
		StartingStack: cfg.Game.StartingStack,
		TurnTimeout:   time.Duration(cfg.Game.TurnTimeoutSeconds) * time.Second,
	})
	gw := gateway.NewServer(eng, logger)
	eng.SetEvents(gw)

	scanner := engine.NewScanner(eng, time.Duration(cfg.Game.ScanIntervalSeconds)*time.Second)
	go func() {
		if err := scanner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scanner stopped", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           gw.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("holdemd listening", "addr", cfg.Server.Listen,
		"blinds", cfg.Game.SmallBlind, "timeout_s", cfg.Game.TurnTimeoutSeconds)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

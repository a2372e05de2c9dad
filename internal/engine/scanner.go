package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// scanConcurrency bounds how many games one sweep inspects at once.
const scanConcurrency = 8

// Scanner periodically sweeps in-progress games and auto-folds expired
// turns. It is the recovery path for disconnected agents and runs
// safely alongside direct player actions: every check takes the game's
// exclusive section.
type Scanner struct {
	engine   *Engine
	interval time.Duration
}

// NewScanner creates a scanner sweeping at the given interval.
func NewScanner(engine *Engine, interval time.Duration) *Scanner {
	return &Scanner{engine: engine, interval: interval}
}

// Run sweeps until ctx is cancelled.
func (sc *Scanner) Run(ctx context.Context) error {
	waiter := sc.engine.clock.TickerFunc(ctx, sc.interval, func() error {
		if err := sc.ScanOnce(ctx); err != nil {
			sc.engine.logger.Error("timeout scan failed", "error", err)
		}
		return nil
	}, "timeout-scanner")
	return waiter.Wait()
}

// ScanOnce checks every in-progress game for an expired turn.
func (sc *Scanner) ScanOnce(ctx context.Context) error {
	gameIDs, err := sc.engine.store.ListInProgress(ctx)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)
	for _, gameID := range gameIDs {
		gameID := gameID
		g.Go(func() error {
			if err := sc.engine.CheckTimeout(ctx, gameID); err != nil {
				sc.engine.logger.Warn("timeout check failed", "game", gameID, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Package engine orchestrates poker games: it serializes actions per
// game, drives validation, settlement and state mutation in order, and
// progresses hands through betting rounds, showdown and payout.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/chiptable/holdem/internal/deck"
	"github.com/chiptable/holdem/internal/game"
	"github.com/chiptable/holdem/internal/gameid"
)

// Config carries the table parameters the engine applies to new games.
type Config struct {
	SmallBlind    int64         // cents
	BigBlind      int64         // cents
	StartingStack int64         // cents
	TurnTimeout   time.Duration // per-turn deadline before auto-fold
}

// Engine applies actions to games. All mutations of one game run under
// its exclusive section; games are fully independent of each other.
type Engine struct {
	store   Store
	settler Settler
	events  Events
	locks   *lockRegistry
	clock   quartz.Clock
	logger  *log.Logger
	cfg     Config
}

// New creates an engine. A nil events sink discards events; a nil
// clock uses real time.
func New(store Store, settler Settler, events Events, clock quartz.Clock, logger *log.Logger, cfg Config) *Engine {
	if events == nil {
		events = NopEvents{}
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Engine{
		store:   store,
		settler: settler,
		events:  events,
		locks:   newLockRegistry(),
		clock:   clock,
		logger:  logger.WithPrefix("engine"),
		cfg:     cfg,
	}
}

// SetEvents swaps the event sink. Used when the sink (e.g. the
// gateway) is constructed around the engine itself. Call before
// serving traffic.
func (e *Engine) SetEvents(events Events) {
	if events == nil {
		events = NopEvents{}
	}
	e.events = events
}

// ActionSummary is the applied-state summary returned to a caller
// whose action was accepted.
type ActionSummary struct {
	GameID     string           `json:"game_id"`
	Applied    game.Applied     `json:"applied"`
	Pot        int64            `json:"pot"`
	CurrentBet int64            `json:"current_bet"`
	Round      game.Round       `json:"betting_round"`
	Stack      int64            `json:"stack"`
	GameStatus game.GameStatus  `json:"game_status"`
	HandResult *game.HandResult `json:"hand_result,omitempty"`
}

// CreateGame seats the given agents with the configured stacks and
// blinds, starts the first hand (settling blinds) and persists the
// game. Returns the new game's state.
func (e *Engine) CreateGame(ctx context.Context, agentIDs []string) (*game.State, error) {
	id := gameid.Generate()
	s, err := game.NewState(id, agentIDs, e.cfg.StartingStack, e.cfg.SmallBlind, e.cfg.BigBlind)
	if err != nil {
		return nil, err
	}

	release := e.locks.acquire(id)
	defer release()

	if err := e.startHand(ctx, s); err != nil {
		return nil, err
	}
	if err := e.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("engine: save new game: %w", err)
	}
	e.logger.Info("game created", "game", id, "players", len(agentIDs),
		"blinds", fmt.Sprintf("%d/%d", e.cfg.SmallBlind, e.cfg.BigBlind))
	return s, nil
}

// HandleAction validates, settles and applies one player action, then
// runs the progression check. Exactly one action per game is in flight
// at a time; concurrent requests queue in arrival order.
func (e *Engine) HandleAction(ctx context.Context, gameID, agentID string, action game.ActionType, amount int64) (*ActionSummary, error) {
	release := e.locks.acquire(gameID)
	defer release()

	s, err := e.store.Load(ctx, gameID)
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			e.locks.retire(gameID)
		}
		return nil, err
	}
	if s.Status != game.GameInProgress {
		// Late request on a finished game: drop the registry entry
		// once current holders drain, validation rejects below.
		e.locks.retire(gameID)
	}

	if verr := game.Validate(s, agentID, action, amount); verr != nil {
		return nil, verr
	}

	if pay := game.RequiredPayment(s, agentID, action, amount); pay > 0 {
		_, err := e.settler.Debit(ctx, gameID, agentID, pay)
		if errors.Is(err, ErrInsufficientFunds) {
			return nil, e.settleFailureOut(ctx, s, agentID, err)
		}
		if err != nil {
			// Transient failure: reject without touching state, caller may retry.
			return nil, fmt.Errorf("engine: settlement failed: %w", err)
		}
	}

	applied, err := s.ApplyAction(agentID, action, amount)
	if err != nil {
		return nil, err
	}
	now := e.clock.Now()
	s.AdvanceTurn(now)

	e.events.Publish(Event{
		Type: EventActionTaken, GameID: gameID, HandNumber: s.HandNumber,
		AgentID: agentID, Action: action, Amount: applied.Paid, Round: s.Round,
	})

	result, err := e.progressAndSave(ctx, s, now)
	if err != nil {
		return nil, err
	}

	_, p := s.Seat(agentID)
	return &ActionSummary{
		GameID:     gameID,
		Applied:    *applied,
		Pot:        s.Pot,
		CurrentBet: s.CurrentBet,
		Round:      s.Round,
		Stack:      p.Chips,
		GameStatus: s.Status,
		HandResult: result,
	}, nil
}

// CheckTimeout auto-folds the player on the clock if their turn has
// expired, then runs the same progression as a direct action. Safe to
// call concurrently with player actions; the per-game section orders
// them, and a late real action simply fails validation afterwards.
func (e *Engine) CheckTimeout(ctx context.Context, gameID string) error {
	release := e.locks.acquire(gameID)
	defer release()

	s, err := e.store.Load(ctx, gameID)
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			e.locks.retire(gameID)
		}
		return err
	}
	if s.Status != game.GameInProgress {
		e.locks.retire(gameID)
		return nil
	}

	now := e.clock.Now()
	if !s.TurnExpired(now, e.cfg.TurnTimeout) {
		return nil
	}

	agentID, err := s.AutoFold()
	if err != nil {
		return err
	}
	s.AdvanceTurn(now)
	e.logger.Warn("turn timed out, auto-folding", "game", gameID, "agent", agentID)
	e.events.Publish(Event{
		Type: EventActionTaken, GameID: gameID, HandNumber: s.HandNumber,
		AgentID: agentID, Action: game.ActionFold, Auto: true, Round: s.Round,
	})

	_, err = e.progressAndSave(ctx, s, now)
	return err
}

// settleFailureOut handles the insufficient-funds settlement class:
// the player is marked out, the turn advances as if they folded, and
// the game continues.
func (e *Engine) settleFailureOut(ctx context.Context, s *game.State, agentID string, cause error) error {
	if err := s.MarkOut(agentID); err != nil {
		return err
	}
	now := e.clock.Now()
	s.AdvanceTurn(now)
	e.logger.Warn("settlement rejected, marking agent out",
		"game", s.GameID, "agent", agentID, "cause", cause)

	if _, err := e.progressAndSave(ctx, s, now); err != nil {
		return err
	}
	return fmt.Errorf("engine: agent %s removed from game: %w", agentID, cause)
}

// progressAndSave runs the post-action progression, completes the hand
// if it finished, and persists the resulting state. Invariant
// violations abort the hand: the error is logged and the mutated state
// is discarded rather than saved with a wrong payout.
func (e *Engine) progressAndSave(ctx context.Context, s *game.State, now time.Time) (*game.HandResult, error) {
	result, err := e.progress(s, now)
	if err != nil {
		e.logger.Error("hand aborted on invariant violation",
			"game", s.GameID, "hand", s.HandNumber, "error", err)
		return nil, err
	}

	if result != nil {
		// Persist the resolved hand before any external credit or
		// next-hand debit. A save failure here leaves the stored state
		// and the ledger both untouched, so a retried request replays
		// the action without duplicating any settlement.
		if err := e.store.Save(ctx, s); err != nil {
			return nil, fmt.Errorf("engine: save game %s: %w", s.GameID, err)
		}
		if err := e.completeHand(ctx, s, result); err != nil {
			return result, err
		}
	}

	if err := e.store.Save(ctx, s); err != nil {
		return result, fmt.Errorf("engine: save game %s: %w", s.GameID, err)
	}
	return result, nil
}

// progress is the re-entrant progression check invoked after every
// mutation. Invoking it again on an already-advanced round changes
// nothing: every transition is guarded by the current round, pot and
// player statuses.
func (e *Engine) progress(s *game.State, now time.Time) (*game.HandResult, error) {
	for {
		if s.Status != game.GameInProgress {
			return nil, nil
		}
		// Hand already resolved and paid out.
		if s.Pot == 0 && s.Round == game.RoundShowdown {
			return nil, nil
		}

		// A lone contender takes the pot without a showdown.
		if len(s.Contenders()) == 1 {
			if s.Pot == 0 {
				return nil, nil
			}
			return s.AwardUncontested()
		}

		if !s.RoundComplete() && !s.BettingMoot() {
			return nil, nil // betting continues
		}

		if s.Round == game.RoundRiver || s.Round == game.RoundShowdown {
			if s.Round == game.RoundRiver {
				if err := s.AdvanceRound(now); err != nil {
					return nil, err
				}
			}
			return s.ResolveShowdown()
		}

		if err := s.AdvanceRound(now); err != nil {
			return nil, err
		}
		e.events.Publish(Event{
			Type: EventRoundComplete, GameID: s.GameID,
			HandNumber: s.HandNumber, Round: s.Round,
		})
	}
}

// completeHand publishes the result, settles payouts, and either ends
// the game or starts the next hand.
func (e *Engine) completeHand(ctx context.Context, s *game.State, result *game.HandResult) error {
	e.events.Publish(Event{
		Type: EventHandComplete, GameID: s.GameID,
		HandNumber: result.HandNumber, Result: result,
	})

	for agentID, amount := range result.Payouts {
		if amount <= 0 {
			continue
		}
		if _, err := e.settler.Credit(ctx, s.GameID, agentID, amount); err != nil {
			// Chips are already on the stack; the external credit is
			// reconciled out of band.
			e.logger.Error("payout credit failed", "game", s.GameID,
				"agent", agentID, "amount", amount, "error", err)
		}
	}

	if gameOver := s.FinishHand(); gameOver {
		e.events.Publish(Event{Type: EventGameEnded, GameID: s.GameID, HandNumber: s.HandNumber})
		e.locks.retire(s.GameID)
		e.logger.Info("game ended", "game", s.GameID, "hands", s.HandNumber)
		return nil
	}

	return e.startHand(ctx, s)
}

// startHand begins a fresh hand: rotate the button, settle and post
// blinds, deal hole cards and open preflop betting. A blind poster
// whose settlement fails for insufficient funds is marked out; the
// progression check then resolves any hand that is already over.
func (e *Engine) startHand(ctx context.Context, s *game.State) error {
	posts, err := s.BeginHand()
	if err != nil {
		return err
	}
	e.events.Publish(Event{Type: EventHandStarted, GameID: s.GameID, HandNumber: s.HandNumber})

	for _, post := range posts {
		if post.Amount > 0 {
			_, err := e.settler.Debit(ctx, s.GameID, post.AgentID, post.Amount)
			if errors.Is(err, ErrInsufficientFunds) {
				e.logger.Warn("blind settlement rejected, marking agent out",
					"game", s.GameID, "agent", post.AgentID, "blind", post.Kind)
				if err := s.MarkOut(post.AgentID); err != nil {
					return err
				}
				continue
			}
			if err != nil {
				return fmt.Errorf("engine: blind settlement failed: %w", err)
			}
		}
		if err := s.PostBlind(post); err != nil {
			return err
		}
		e.events.Publish(Event{
			Type: EventBlindPosted, GameID: s.GameID, HandNumber: s.HandNumber,
			AgentID: post.AgentID, Amount: post.Amount,
		})
	}

	d, err := deck.New()
	if err != nil {
		return err
	}
	if err := s.DealHole(d); err != nil {
		return err
	}

	now := e.clock.Now()
	s.BeginBetting(now)

	// A blind poster may have gone out above; resolve immediately if
	// the hand is already uncontested. As everywhere, the resolved
	// state is saved before the payout credit goes out.
	result, err := e.progress(s, now)
	if err != nil {
		return err
	}
	if result != nil {
		if err := e.store.Save(ctx, s); err != nil {
			return fmt.Errorf("engine: save game %s: %w", s.GameID, err)
		}
		return e.completeHand(ctx, s, result)
	}
	return nil
}

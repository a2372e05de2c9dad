package engine

import (
	"context"
	"errors"

	"github.com/chiptable/holdem/internal/game"
)

// TxRef identifies a completed settlement transaction.
type TxRef string

var (
	// ErrInsufficientFunds is the settlement failure class that marks
	// the payer out; any other settlement error rejects the action
	// without mutating state.
	ErrInsufficientFunds = errors.New("settlement: insufficient funds")

	ErrGameNotFound = errors.New("engine: game not found")
)

// Settler commits the external funds backing in-game chip movements.
// Debit is called before a bet/blind mutates state; Credit pays out
// winnings. Implementations may block; they are the engine's only
// suspension point.
type Settler interface {
	Debit(ctx context.Context, gameID, agentID string, amount int64) (TxRef, error)
	Credit(ctx context.Context, gameID, agentID string, amount int64) (TxRef, error)
}

// Store persists game documents. Load must return a state the caller
// owns outright (mutations are invisible until Save), Save atomically
// replaces the document, and ListInProgress feeds the timeout scanner.
type Store interface {
	Load(ctx context.Context, gameID string) (*game.State, error)
	Save(ctx context.Context, state *game.State) error
	ListInProgress(ctx context.Context) ([]string, error)
}

// EventType labels engine notifications.
type EventType string

const (
	EventHandStarted   EventType = "hand_started"
	EventBlindPosted   EventType = "blind_posted"
	EventActionTaken   EventType = "action_taken"
	EventRoundComplete EventType = "betting_round_complete"
	EventHandComplete  EventType = "hand_complete"
	EventGameEnded     EventType = "game_ended"
)

// Event is a fire-and-forget notification for observers. Never
// required for correctness.
type Event struct {
	Type       EventType        `json:"type"`
	GameID     string           `json:"game_id"`
	HandNumber int              `json:"hand_number,omitempty"`
	AgentID    string           `json:"agent_id,omitempty"`
	Action     game.ActionType  `json:"action,omitempty"`
	Amount     int64            `json:"amount,omitempty"`
	Auto       bool             `json:"auto,omitempty"` // timeout-driven fold
	Round      game.Round       `json:"round,omitempty"`
	Result     *game.HandResult `json:"result,omitempty"`
}

// Events broadcasts engine events to observers.
type Events interface {
	Publish(event Event)
}

// NopEvents discards all events.
type NopEvents struct{}

func (NopEvents) Publish(Event) {}

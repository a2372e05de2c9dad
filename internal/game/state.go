// Package game holds the Texas Hold'em table state and the pure rules
// that mutate it: action validation, pot and side-pot math, turn order
// and the hand lifecycle. Orchestration, locking and external
// collaborators live in the engine package.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/chiptable/holdem/internal/deck"
)

// ErrInvalidGame classifies game-setup rejections: the request was
// wrong, not the server.
var ErrInvalidGame = errors.New("game: invalid game setup")

// Round is a betting round within a hand.
type Round string

const (
	RoundPreflop  Round = "preflop"
	RoundFlop     Round = "flop"
	RoundTurn     Round = "turn"
	RoundRiver    Round = "river"
	RoundShowdown Round = "showdown"
)

// GameStatus is the lifecycle state of the whole game.
type GameStatus string

const (
	GameInProgress GameStatus = "in_progress"
	GameEnded      GameStatus = "ended"
)

// State is the full mutable state of one cash game. It is owned
// exclusively by whichever operation holds the per-game lock.
type State struct {
	GameID        string      `json:"game_id"`
	Players       []*Player   `json:"players"` // fixed seat order
	Community     []deck.Card `json:"community_cards"`
	Undealt       []deck.Card `json:"undealt,omitempty"` // remainder of this hand's deck
	Pot           int64       `json:"pot"`
	CurrentBet    int64       `json:"current_bet"`
	Round         Round       `json:"betting_round"`
	Current       int         `json:"current_player_index"`
	HandNumber    int         `json:"hand_number"`
	SmallBlind    int64       `json:"small_blind"`
	BigBlind      int64       `json:"big_blind"`
	Status        GameStatus  `json:"game_status"`
	TurnStartedAt time.Time   `json:"turn_started_at"`
	Acted         []bool      `json:"acted"` // per seat, this betting round
}

// NewState seats the given agents with equal stacks and fixed blinds.
// The game starts with no hand in progress; the engine starts the
// first hand once blinds settle.
func NewState(gameID string, agentIDs []string, stack, smallBlind, bigBlind int64) (*State, error) {
	if len(agentIDs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 players, got %d", ErrInvalidGame, len(agentIDs))
	}
	if bigBlind < smallBlind || smallBlind <= 0 {
		return nil, fmt.Errorf("%w: invalid blinds %d/%d", ErrInvalidGame, smallBlind, bigBlind)
	}
	seen := make(map[string]bool, len(agentIDs))
	players := make([]*Player, 0, len(agentIDs))
	for _, id := range agentIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate agent %q", ErrInvalidGame, id)
		}
		seen[id] = true
		players = append(players, &Player{AgentID: id, Chips: stack, Status: StatusActive})
	}
	return &State{
		GameID:     gameID,
		Players:    players,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		Round:      RoundPreflop,
		Status:     GameInProgress,
		Current:    -1,
		Acted:      make([]bool, len(players)),
	}, nil
}

// Seat returns the seat index and player for an agent, or -1 if the
// agent is not at this table.
func (s *State) Seat(agentID string) (int, *Player) {
	for i, p := range s.Players {
		if p.AgentID == agentID {
			return i, p
		}
	}
	return -1, nil
}

// DealerIndex returns the seat holding the dealer button, or -1 before
// the first hand.
func (s *State) DealerIndex() int {
	for i, p := range s.Players {
		if p.Dealer {
			return i
		}
	}
	return -1
}

// NextActive returns the next seat at or after from (wrapping) whose
// player can act, or -1 if none can.
func (s *State) NextActive(from int) int {
	n := len(s.Players)
	for i := 0; i < n; i++ {
		seat := ((from+i)%n + n) % n
		if s.Players[seat].CanAct() {
			return seat
		}
	}
	return -1
}

// Contenders returns the seats still contesting the hand (active or
// all-in).
func (s *State) Contenders() []int {
	var seats []int
	for i, p := range s.Players {
		if p.InHand() {
			seats = append(seats, i)
		}
	}
	return seats
}

// ActiveCount returns how many players can still act this hand.
func (s *State) ActiveCount() int {
	n := 0
	for _, p := range s.Players {
		if p.CanAct() {
			n++
		}
	}
	return n
}

// FundedCount returns how many players still hold chips or contest the
// current hand.
func (s *State) FundedCount() int {
	n := 0
	for _, p := range s.Players {
		if p.Status != StatusOut && (p.Chips > 0 || p.TotalBet > 0) {
			n++
		}
	}
	return n
}

// TotalChips returns all chips on the table: stacks plus the pot.
// Constant across a hand; the conservation invariant tests rely on it.
func (s *State) TotalChips() int64 {
	total := s.Pot
	for _, p := range s.Players {
		total += p.Chips
	}
	return total
}

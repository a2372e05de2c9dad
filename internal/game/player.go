package game

import "github.com/chiptable/holdem/internal/deck"

// Status is a player's standing within the current hand. Transitions
// are monotonic: active -> folded or all-in within a hand; out is
// terminal for the game.
type Status string

const (
	StatusActive Status = "active"
	StatusFolded Status = "folded"
	StatusAllIn  Status = "all-in"
	StatusOut    Status = "out"
)

// Player is one seat at the table. Chip amounts are integer cents.
type Player struct {
	AgentID    string      `json:"agent_id"`
	Chips      int64       `json:"chips"`
	Bet        int64       `json:"bet"`       // committed this betting round
	TotalBet   int64       `json:"total_bet"` // committed this hand
	Status     Status      `json:"status"`
	HoleCards  []deck.Card `json:"hole_cards,omitempty"`
	Dealer     bool        `json:"dealer"`
	SmallBlind bool        `json:"small_blind"`
	BigBlind   bool        `json:"big_blind"`
}

// CanAct reports whether the player may take a voluntary action.
func (p *Player) CanAct() bool {
	return p.Status == StatusActive
}

// InHand reports whether the player still contests the current hand.
func (p *Player) InHand() bool {
	return p.Status == StatusActive || p.Status == StatusAllIn
}

// commit moves up to amount cents from the player's stack into their
// round and hand commitments, returning what was actually moved. A
// commitment that empties the stack puts the player all-in.
func (p *Player) commit(amount int64) int64 {
	if amount > p.Chips {
		amount = p.Chips
	}
	p.Chips -= amount
	p.Bet += amount
	p.TotalBet += amount
	if p.Chips == 0 && p.Status == StatusActive {
		p.Status = StatusAllIn
	}
	return amount
}

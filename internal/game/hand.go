package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/chiptable/holdem/internal/deck"
	"github.com/chiptable/holdem/internal/evaluator"
)

var (
	ErrNotEnoughPlayers = errors.New("game: not enough funded players to start a hand")
	ErrHandInProgress   = errors.New("game: hand already in progress")
	ErrNoHand           = errors.New("game: no hand in progress")
)

// BlindKind labels a forced bet.
type BlindKind string

const (
	SmallBlind BlindKind = "small_blind"
	BigBlind   BlindKind = "big_blind"
)

// BlindPost is a forced bet the engine must settle before dealing
// proceeds. Amount is clamped to the poster's stack.
type BlindPost struct {
	AgentID string
	Kind    BlindKind
	Amount  int64
}

// Applied summarises an applied action for the caller.
type Applied struct {
	AgentID string     `json:"agent_id"`
	Action  ActionType `json:"action"`
	Paid    int64      `json:"paid"`
	AllIn   bool       `json:"all_in"`
}

// BeginHand rotates the dealer button and blind flags, resets all
// per-hand state and returns the blind postings the engine must settle
// before cards are dealt. Players left without chips must already be
// marked out.
func (s *State) BeginHand() ([]BlindPost, error) {
	if s.FundedCount() < 2 {
		return nil, ErrNotEnoughPlayers
	}

	// Fresh traversal: every funded player returns to active.
	for _, p := range s.Players {
		if p.Status == StatusOut {
			continue
		}
		p.Status = StatusActive
		p.Bet = 0
		p.TotalBet = 0
		p.HoleCards = nil
		p.Dealer = false
		p.SmallBlind = false
		p.BigBlind = false
	}
	s.Community = nil
	s.Undealt = nil
	s.Pot = 0
	s.CurrentBet = 0
	s.Round = RoundPreflop
	s.HandNumber++
	s.Current = -1
	s.Acted = make([]bool, len(s.Players))

	dealer := s.rotateDealer()

	// Heads-up the dealer doubles as the small blind; otherwise the
	// blinds are the next two seats clockwise.
	var sb, bb int
	if s.ActiveCount() == 2 {
		sb = dealer
		bb = s.NextActive(dealer + 1)
	} else {
		sb = s.NextActive(dealer + 1)
		bb = s.NextActive(sb + 1)
	}
	s.Players[sb].SmallBlind = true
	s.Players[bb].BigBlind = true

	return []BlindPost{
		{AgentID: s.Players[sb].AgentID, Kind: SmallBlind, Amount: min64(s.SmallBlind, s.Players[sb].Chips)},
		{AgentID: s.Players[bb].AgentID, Kind: BigBlind, Amount: min64(s.BigBlind, s.Players[bb].Chips)},
	}, nil
}

// rotateDealer moves the button to the next seat still in the game and
// returns its index.
func (s *State) rotateDealer() int {
	prev := s.DealerIndex()
	for _, p := range s.Players {
		p.Dealer = false
	}
	dealer := s.NextActive(prev + 1)
	s.Players[dealer].Dealer = true
	return dealer
}

// PostBlind commits a settled blind to the pot.
func (s *State) PostBlind(post BlindPost) error {
	_, p := s.Seat(post.AgentID)
	if p == nil {
		return fmt.Errorf("game: unknown agent %q", post.AgentID)
	}
	paid := p.commit(post.Amount)
	s.Pot += paid
	if p.Bet > s.CurrentBet {
		s.CurrentBet = p.Bet
	}
	return nil
}

// DealHole deals two hole cards to every player contesting the hand
// and retains the rest of the deck for the community rounds.
func (s *State) DealHole(d *deck.Deck) error {
	for _, p := range s.Players {
		if !p.InHand() {
			continue
		}
		cards, err := d.Deal(2)
		if err != nil {
			return err
		}
		p.HoleCards = cards
	}
	s.Undealt = d.Cards()
	return nil
}

// BeginBetting opens the preflop round: first to act is the seat after
// the big blind.
func (s *State) BeginBetting(now time.Time) {
	bb := -1
	for i, p := range s.Players {
		if p.BigBlind {
			bb = i
		}
	}
	s.Current = s.NextActive(bb + 1)
	s.TurnStartedAt = now
}

// ApplyAction mutates state for a validated, settled action. It does
// not advance the turn; the orchestrator does that after its
// progression checks.
func (s *State) ApplyAction(agentID string, action ActionType, amount int64) (*Applied, error) {
	seat, p := s.Seat(agentID)
	if p == nil {
		return nil, fmt.Errorf("game: unknown agent %q", agentID)
	}

	applied := &Applied{AgentID: agentID, Action: action}

	switch action {
	case ActionFold:
		p.Status = StatusFolded
		p.HoleCards = nil

	case ActionCheck:
		// No chips move.

	case ActionCall:
		toCall := min64(s.CurrentBet-p.Bet, p.Chips)
		applied.Paid = p.commit(toCall)
		s.Pot += applied.Paid

	case ActionBet:
		applied.Paid = p.commit(amount)
		s.Pot += applied.Paid
		s.CurrentBet = p.Bet
		s.reopenBetting(seat)

	case ActionRaise:
		applied.Paid = p.commit(amount - p.Bet)
		s.Pot += applied.Paid
		s.CurrentBet = p.Bet
		s.reopenBetting(seat)

	default:
		return nil, fmt.Errorf("game: cannot apply action %q", action)
	}

	s.Acted[seat] = true
	applied.AllIn = p.Status == StatusAllIn
	return applied, nil
}

// reopenBetting clears acted flags after an aggressive action so every
// other player must respond.
func (s *State) reopenBetting(aggressor int) {
	for i := range s.Acted {
		s.Acted[i] = i == aggressor
	}
}

// AutoFold folds the player on the clock. This is the engine's only
// unprompted mutation path, used when a turn times out.
func (s *State) AutoFold() (string, error) {
	if s.Current < 0 || s.Current >= len(s.Players) {
		return "", ErrNoHand
	}
	p := s.Players[s.Current]
	p.Status = StatusFolded
	p.HoleCards = nil
	s.Acted[s.Current] = true
	return p.AgentID, nil
}

// MarkOut removes a player from the game, e.g. after a settlement
// failure for insufficient funds. Their prior contributions stay in
// the pot.
func (s *State) MarkOut(agentID string) error {
	_, p := s.Seat(agentID)
	if p == nil {
		return fmt.Errorf("game: unknown agent %q", agentID)
	}
	p.Status = StatusOut
	p.HoleCards = nil
	return nil
}

// AdvanceRound reveals the next tranche of community cards, resets
// round bets (hand totals are untouched) and restarts the turn order
// from the first player able to act after the dealer.
func (s *State) AdvanceRound(now time.Time) error {
	for _, p := range s.Players {
		p.Bet = 0
	}
	s.CurrentBet = 0
	s.Acted = make([]bool, len(s.Players))

	var dealCount int
	switch s.Round {
	case RoundPreflop:
		s.Round = RoundFlop
		dealCount = 3
	case RoundFlop:
		s.Round = RoundTurn
		dealCount = 1
	case RoundTurn:
		s.Round = RoundRiver
		dealCount = 1
	case RoundRiver:
		s.Round = RoundShowdown
		s.Current = -1
		return nil
	default:
		return fmt.Errorf("game: cannot advance from %s", s.Round)
	}

	d := deck.FromCards(s.Undealt)
	cards, err := d.Deal(dealCount)
	if err != nil {
		return err
	}
	s.Community = append(s.Community, cards...)
	s.Undealt = d.Cards()

	s.ResetTurnForRound(now)
	return nil
}

// AwardUncontested pays the whole pot to the last player contesting
// the hand, without a showdown.
func (s *State) AwardUncontested() (*HandResult, error) {
	contenders := s.Contenders()
	if len(contenders) != 1 {
		return nil, fmt.Errorf("game: %d contenders, cannot award uncontested", len(contenders))
	}
	winner := s.Players[contenders[0]]
	amount := s.Pot
	winner.Chips += amount
	s.Pot = 0
	s.Current = -1

	result := &HandResult{
		HandNumber:  s.HandNumber,
		Uncontested: true,
		Pots: []PotAward{{
			PotNumber: 0,
			Amount:    amount,
			Winners:   []string{winner.AgentID},
			Payouts:   map[string]int64{winner.AgentID: amount},
		}},
	}
	result.addPayouts(result.Pots[0].Payouts)
	return result, nil
}

// ResolveShowdown computes pots from hand contributions, ranks every
// non-folded contender's best hand and pays each pot out. Folded
// players may appear in a pot's contributor set but can never win it.
func (s *State) ResolveShowdown() (*HandResult, error) {
	if len(s.Community) != 5 {
		return nil, fmt.Errorf("game: showdown requires 5 community cards, got %d", len(s.Community))
	}

	ranks := make(map[string]evaluator.HandRank)
	for _, p := range s.Players {
		if !p.InHand() {
			continue
		}
		if len(p.HoleCards) != 2 {
			return nil, fmt.Errorf("game: agent %s missing hole cards at showdown", p.AgentID)
		}
		rank, err := evaluator.Evaluate(append(append([]deck.Card(nil), p.HoleCards...), s.Community...))
		if err != nil {
			return nil, err
		}
		ranks[p.AgentID] = rank
	}

	pots := ComputePots(s)
	if err := checkPotTotals(s, pots); err != nil {
		return nil, err
	}

	result := &HandResult{HandNumber: s.HandNumber}
	for _, pot := range pots {
		// Award-time filter: only non-folded contributors compete.
		var winners []string
		var best evaluator.HandRank
		for _, agentID := range pot.Eligible {
			rank, ok := ranks[agentID]
			if !ok {
				continue
			}
			if len(winners) == 0 || rank.Compare(best) > 0 {
				best = rank
				winners = []string{agentID}
			} else if rank.Compare(best) == 0 {
				winners = append(winners, agentID)
			}
		}

		payouts, err := DistributePot(s, pot, winners)
		if err != nil {
			return nil, err
		}
		for agentID, amount := range payouts {
			_, p := s.Seat(agentID)
			p.Chips += amount
		}
		result.Pots = append(result.Pots, PotAward{
			PotNumber:   pot.PotNumber,
			Amount:      pot.Amount,
			Winners:     winners,
			WinningHand: best.String(),
			Payouts:     payouts,
		})
		result.addPayouts(payouts)
	}

	s.Pot = 0
	s.Round = RoundShowdown
	s.Current = -1
	return result, nil
}

// FinishHand marks depleted players out and reports whether the game
// is over (fewer than two players can fund the next hand).
func (s *State) FinishHand() bool {
	for _, p := range s.Players {
		if p.Status != StatusOut && p.Chips == 0 {
			p.Status = StatusOut
		}
	}
	funded := 0
	for _, p := range s.Players {
		if p.Status != StatusOut && p.Chips > 0 {
			funded++
		}
	}
	if funded <= 1 {
		s.Status = GameEnded
		return true
	}
	return false
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

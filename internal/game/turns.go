package game

import "time"

// AdvanceTurn moves the action to the next player who can act,
// skipping folded, all-in and out seats, and restarts the turn clock.
// Sets Current to -1 when nobody can act (all-in runout).
func (s *State) AdvanceTurn(now time.Time) {
	s.Current = s.NextActive(s.Current + 1)
	s.TurnStartedAt = now
}

// ResetTurnForRound points the action at the first player who can act
// clockwise from the dealer, for the start of a betting round.
func (s *State) ResetTurnForRound(now time.Time) {
	s.Current = s.NextActive(s.DealerIndex() + 1)
	s.TurnStartedAt = now
}

// TurnExpired reports whether the current turn has exceeded its
// deadline. False when no one is on the clock.
func (s *State) TurnExpired(now time.Time, timeout time.Duration) bool {
	if s.Status != GameInProgress || s.Current < 0 || s.Round == RoundShowdown {
		return false
	}
	if s.TurnStartedAt.IsZero() {
		return false
	}
	return !now.Before(s.TurnStartedAt.Add(timeout))
}

// BettingMoot reports whether further betting cannot change the pot:
// at most one player can still act and no active player owes chips.
// When true the board runs out to showdown without waiting for turns.
func (s *State) BettingMoot() bool {
	if s.ActiveCount() > 1 {
		return false
	}
	for _, p := range s.Players {
		if p.CanAct() && p.Bet != s.CurrentBet {
			return false
		}
	}
	return true
}

// RoundComplete reports whether the current betting round is settled:
// every player who can still act has acted this round and matches the
// table bet. Players who are folded, all-in or out owe nothing.
func (s *State) RoundComplete() bool {
	for i, p := range s.Players {
		if !p.CanAct() {
			continue
		}
		if !s.Acted[i] || p.Bet != s.CurrentBet {
			return false
		}
	}
	return true
}

package game

import "fmt"

// ActionType is a voluntary player action.
type ActionType string

const (
	ActionFold  ActionType = "fold"
	ActionCheck ActionType = "check"
	ActionCall  ActionType = "call"
	ActionBet   ActionType = "bet"
	ActionRaise ActionType = "raise"
)

// Reason is a machine-distinguishable rejection code.
type Reason string

const (
	ReasonGameNotInProgress Reason = "game_not_in_progress"
	ReasonUnknownAgent      Reason = "unknown_agent"
	ReasonCannotAct         Reason = "cannot_act"
	ReasonNotYourTurn       Reason = "not_your_turn"
	ReasonUnknownAction     Reason = "unknown_action"
	ReasonCheckFacingBet    Reason = "check_facing_bet"
	ReasonNothingToCall     Reason = "nothing_to_call"
	ReasonNoChips           Reason = "no_chips"
	ReasonBetFacingBet      Reason = "bet_facing_bet"
	ReasonBetTooSmall       Reason = "bet_too_small"
	ReasonBetTooLarge       Reason = "bet_too_large"
	ReasonRaiseWithoutBet   Reason = "raise_without_bet"
	ReasonRaiseTooSmall     Reason = "raise_too_small"
	ReasonRaiseTooLarge     Reason = "raise_too_large"
)

// ValidationError rejects an action with a reason code and, where the
// amount was out of range, the legal bounds so the caller can retry
// with a corrected request.
type ValidationError struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
	Min     int64  `json:"min,omitempty"`
	Max     int64  `json:"max,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid action (%s): %s", e.Reason, e.Message)
}

func reject(reason Reason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func rejectBounds(reason Reason, min, max int64, format string, args ...any) *ValidationError {
	e := reject(reason, format, args...)
	e.Min, e.Max = min, max
	return e
}

// Validate reports whether agentID may take the requested action in
// the current state. Read-only: callers apply effects only after both
// validation and settlement succeed. For bets, amount is the wager;
// for raises, amount is the new total committed this round.
func Validate(s *State, agentID string, action ActionType, amount int64) *ValidationError {
	if s.Status != GameInProgress {
		return reject(ReasonGameNotInProgress, "game %s has ended", s.GameID)
	}
	seat, p := s.Seat(agentID)
	if p == nil {
		return reject(ReasonUnknownAgent, "agent %s is not in this game", agentID)
	}
	if !p.CanAct() {
		return reject(ReasonCannotAct, "agent %s is %s", agentID, p.Status)
	}
	if seat != s.Current {
		return reject(ReasonNotYourTurn, "it is not agent %s's turn", agentID)
	}

	toCall := s.CurrentBet - p.Bet

	switch action {
	case ActionFold:
		return nil

	case ActionCheck:
		if toCall != 0 {
			return rejectBounds(ReasonCheckFacingBet, toCall, toCall,
				"cannot check facing a bet, %d to call", toCall)
		}
		return nil

	case ActionCall:
		if toCall <= 0 {
			return reject(ReasonNothingToCall, "no outstanding bet to call")
		}
		if p.Chips < 1 {
			return reject(ReasonNoChips, "agent %s has no chips", agentID)
		}
		// A short call (stack < toCall) is legal and becomes an all-in.
		return nil

	case ActionBet:
		if s.CurrentBet != 0 {
			return reject(ReasonBetFacingBet, "bet is open at %d, raise instead", s.CurrentBet)
		}
		if amount < s.BigBlind {
			return rejectBounds(ReasonBetTooSmall, s.BigBlind, p.Chips,
				"bet %d below minimum %d", amount, s.BigBlind)
		}
		if amount > p.Chips {
			return rejectBounds(ReasonBetTooLarge, s.BigBlind, p.Chips,
				"bet %d exceeds stack %d", amount, p.Chips)
		}
		return nil

	case ActionRaise:
		if s.CurrentBet == 0 {
			return reject(ReasonRaiseWithoutBet, "no bet to raise, bet instead")
		}
		minRaise := s.CurrentBet + s.BigBlind
		maxRaise := p.Bet + p.Chips
		if amount < minRaise {
			return rejectBounds(ReasonRaiseTooSmall, minRaise, maxRaise,
				"raise to %d below minimum %d", amount, minRaise)
		}
		if amount > maxRaise {
			return rejectBounds(ReasonRaiseTooLarge, minRaise, maxRaise,
				"raise to %d exceeds stack, maximum %d", amount, maxRaise)
		}
		return nil

	default:
		return reject(ReasonUnknownAction, "unknown action %q", action)
	}
}

// RequiredPayment returns how many cents the action moves from the
// player's stack, for the settlement step. Call it only on a validated
// action.
func RequiredPayment(s *State, agentID string, action ActionType, amount int64) int64 {
	_, p := s.Seat(agentID)
	if p == nil {
		return 0
	}
	switch action {
	case ActionCall:
		toCall := s.CurrentBet - p.Bet
		if toCall > p.Chips {
			toCall = p.Chips
		}
		return toCall
	case ActionBet:
		return amount
	case ActionRaise:
		return amount - p.Bet
	default:
		return 0
	}
}

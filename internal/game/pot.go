package game

import (
	"errors"
	"fmt"
	"sort"
)

// PotType distinguishes the main pot from side pots.
type PotType string

const (
	PotMain PotType = "main"
	PotSide PotType = "side"
)

// Pot is a derived slice of the table pot with its eligible-winner set.
// Eligibility here means "contributed to this level"; folded
// contributors are included and are filtered out at award time. The
// two steps are deliberately separate: conflating "contributed" with
// "can win" is how side-pot bugs happen.
type Pot struct {
	Amount    int64    `json:"amount"`
	Eligible  []string `json:"eligible_players"`
	Type      PotType  `json:"pot_type"`
	PotNumber int      `json:"pot_number"`
}

// Invariant violations at payout are programming faults: the hand is
// aborted rather than paying out incorrectly.
var (
	ErrNoEligibleWinner = errors.New("pot: no eligible winner")
	ErrPotMismatch      = errors.New("pot: computed pots do not sum to table pot")
)

// ComputePots derives one pot per distinct contribution level from all
// players who put chips in this hand, regardless of current status.
// Pot i holds (L_i - L_{i-1}) cents from every player whose total
// commitment reached level L_i.
func ComputePots(s *State) []Pot {
	levelSet := make(map[int64]bool)
	for _, p := range s.Players {
		if p.TotalBet > 0 {
			levelSet[p.TotalBet] = true
		}
	}
	levels := make([]int64, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	pots := make([]Pot, 0, len(levels))
	prev := int64(0)
	for i, level := range levels {
		var eligible []string
		for _, p := range s.Players {
			if p.TotalBet >= level {
				eligible = append(eligible, p.AgentID)
			}
		}
		pot := Pot{
			Amount:    (level - prev) * int64(len(eligible)),
			Eligible:  eligible,
			Type:      PotSide,
			PotNumber: i,
		}
		if i == 0 {
			pot.Type = PotMain
		}
		pots = append(pots, pot)
		prev = level
	}
	return pots
}

// checkPotTotals verifies the derived pots account for every cent the
// table pot holds.
func checkPotTotals(s *State, pots []Pot) error {
	var sum int64
	for _, pot := range pots {
		sum += pot.Amount
	}
	if sum != s.Pot {
		return fmt.Errorf("%w: derived %d, table %d", ErrPotMismatch, sum, s.Pot)
	}
	return nil
}

// DistributePot splits a pot equally among its winners. When the
// amount does not divide evenly, the leftover cents go one each to the
// winners seated soonest clockwise from the dealer.
func DistributePot(s *State, pot Pot, winners []string) (map[string]int64, error) {
	if len(winners) == 0 {
		return nil, fmt.Errorf("%w: pot %d (%d cents)", ErrNoEligibleWinner, pot.PotNumber, pot.Amount)
	}

	share := pot.Amount / int64(len(winners))
	remainder := pot.Amount % int64(len(winners))
	if share < 0 || remainder < 0 {
		return nil, fmt.Errorf("pot: negative split for pot %d (%d cents, %d winners)",
			pot.PotNumber, pot.Amount, len(winners))
	}

	ordered := append([]string(nil), winners...)
	dealer := s.DealerIndex()
	n := len(s.Players)
	distance := func(agentID string) int {
		seat, _ := s.Seat(agentID)
		return ((seat-dealer)%n + n) % n
	}
	sort.Slice(ordered, func(i, j int) bool {
		return distance(ordered[i]) < distance(ordered[j])
	})

	payouts := make(map[string]int64, len(ordered))
	for i, agentID := range ordered {
		payouts[agentID] = share
		if int64(i) < remainder {
			payouts[agentID]++
		}
	}
	return payouts, nil
}

package game

// PotAward records how one pot was decided.
type PotAward struct {
	PotNumber   int              `json:"pot_number"`
	Amount      int64            `json:"amount"`
	Winners     []string         `json:"winners"`
	WinningHand string           `json:"winning_hand,omitempty"`
	Payouts     map[string]int64 `json:"payouts"`
}

// HandResult summarises a completed hand: winners per pot, the amount
// paid to each player, and the winning hand description.
type HandResult struct {
	HandNumber  int              `json:"hand_number"`
	Uncontested bool             `json:"uncontested"` // everyone else folded
	Pots        []PotAward       `json:"pots"`
	Payouts     map[string]int64 `json:"payouts"`
}

func (r *HandResult) addPayouts(payouts map[string]int64) {
	if r.Payouts == nil {
		r.Payouts = make(map[string]int64)
	}
	for agentID, amount := range payouts {
		r.Payouts[agentID] += amount
	}
}

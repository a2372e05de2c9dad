package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiptable/holdem/internal/deck"
)

func card(r deck.Rank, s deck.Suit) deck.Card {
	return deck.NewCard(r, s)
}

func headsUp(t *testing.T) *State {
	t.Helper()

	s, err := NewState("g1", []string{"alice", "bob"}, 1000, 10, 20)
	require.NoError(t, err)
	return s
}

func TestNewStateRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := NewState("g1", []string{"solo"}, 1000, 10, 20)
	require.ErrorIs(t, err, ErrInvalidGame)

	_, err = NewState("g1", []string{"a", "a"}, 1000, 10, 20)
	require.ErrorIs(t, err, ErrInvalidGame)

	_, err = NewState("g1", []string{"a", "b"}, 1000, 20, 10)
	require.ErrorIs(t, err, ErrInvalidGame)
}

func TestBeginHandHeadsUpBlinds(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	posts, err := s.BeginHand()
	require.NoError(t, err)

	// First hand: button on seat 0, who doubles as the small blind
	// heads-up.
	assert.Equal(t, 1, s.HandNumber)
	assert.True(t, s.Players[0].Dealer)
	assert.True(t, s.Players[0].SmallBlind)
	assert.True(t, s.Players[1].BigBlind)

	require.Len(t, posts, 2)
	assert.Equal(t, BlindPost{AgentID: "alice", Kind: SmallBlind, Amount: 10}, posts[0])
	assert.Equal(t, BlindPost{AgentID: "bob", Kind: BigBlind, Amount: 20}, posts[1])
}

func TestBeginHandRotatesButton(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	_, err := s.BeginHand()
	require.NoError(t, err)
	require.True(t, s.Players[0].Dealer)

	_, err = s.BeginHand()
	require.NoError(t, err)
	assert.True(t, s.Players[1].Dealer)
	assert.False(t, s.Players[0].Dealer)
	assert.Equal(t, 2, s.HandNumber)
}

func TestBeginHandThreeHanded(t *testing.T) {
	t.Parallel()

	s, err := NewState("g1", []string{"a", "b", "c"}, 1000, 10, 20)
	require.NoError(t, err)
	posts, err := s.BeginHand()
	require.NoError(t, err)

	assert.True(t, s.Players[0].Dealer)
	assert.True(t, s.Players[1].SmallBlind)
	assert.True(t, s.Players[2].BigBlind)
	assert.Equal(t, "b", posts[0].AgentID)
	assert.Equal(t, "c", posts[1].AgentID)
}

func TestBeginHandResetsHandState(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	s.Pot = 500
	s.CurrentBet = 100
	s.Community = []deck.Card{card(deck.Ace, deck.Spades)}
	s.Players[0].Status = StatusFolded
	s.Players[0].TotalBet = 100

	_, err := s.BeginHand()
	require.NoError(t, err)
	assert.Zero(t, s.Pot)
	assert.Zero(t, s.CurrentBet)
	assert.Empty(t, s.Community)
	assert.Equal(t, RoundPreflop, s.Round)
	for _, p := range s.Players {
		assert.Equal(t, StatusActive, p.Status)
		assert.Zero(t, p.Bet)
		assert.Zero(t, p.TotalBet)
		assert.Nil(t, p.HoleCards)
	}
}

func TestBeginHandNeedsTwoFundedPlayers(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	s.Players[1].Status = StatusOut
	s.Players[1].Chips = 0
	_, err := s.BeginHand()
	require.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func TestPostBlindShortStackGoesAllIn(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	_, err := s.BeginHand()
	require.NoError(t, err)
	s.Players[1].Chips = 15 // cannot cover the 20 big blind

	require.NoError(t, s.PostBlind(BlindPost{AgentID: "bob", Kind: BigBlind, Amount: 15}))
	assert.Equal(t, StatusAllIn, s.Players[1].Status)
	assert.Equal(t, int64(15), s.Players[1].TotalBet)
	assert.Equal(t, int64(15), s.Pot)
	assert.Equal(t, int64(15), s.CurrentBet)
}

func TestDealHole(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	_, err := s.BeginHand()
	require.NoError(t, err)

	d, err := deck.New()
	require.NoError(t, err)
	require.NoError(t, s.DealHole(d))

	assert.Len(t, s.Players[0].HoleCards, 2)
	assert.Len(t, s.Players[1].HoleCards, 2)
	assert.Len(t, s.Undealt, 48)
}

// startHand posts both blinds and deals so action tests can script a
// live hand.
func startHand(t *testing.T, s *State) {
	t.Helper()

	posts, err := s.BeginHand()
	require.NoError(t, err)
	for _, post := range posts {
		require.NoError(t, s.PostBlind(post))
	}
	d, err := deck.New()
	require.NoError(t, err)
	require.NoError(t, s.DealHole(d))
	s.BeginBetting(time.Now())
}

func TestBeginBettingHeadsUpDealerActsFirst(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	startHand(t, s)
	// Preflop heads-up the dealer/small blind acts first.
	assert.Equal(t, 0, s.Current)
}

func TestApplyCall(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	startHand(t, s)

	applied, err := s.ApplyAction("alice", ActionCall, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), applied.Paid)
	assert.False(t, applied.AllIn)
	assert.Equal(t, int64(20), s.Players[0].Bet)
	assert.Equal(t, int64(980), s.Players[0].Chips)
	assert.Equal(t, int64(40), s.Pot)
	assert.True(t, s.Acted[0])
	assert.False(t, s.RoundComplete(), "big blind still has the option")
}

func TestApplyFoldClearsHoleCards(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	startHand(t, s)

	_, err := s.ApplyAction("alice", ActionFold, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusFolded, s.Players[0].Status)
	assert.Nil(t, s.Players[0].HoleCards)
}

func TestApplyRaiseReopensBetting(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	startHand(t, s)

	_, err := s.ApplyAction("alice", ActionCall, 0)
	require.NoError(t, err)
	applied, err := s.ApplyAction("bob", ActionRaise, 60)
	require.NoError(t, err)

	assert.Equal(t, int64(40), applied.Paid)
	assert.Equal(t, int64(60), s.CurrentBet)
	assert.False(t, s.Acted[0], "raise forces alice to act again")
	assert.True(t, s.Acted[1])
}

func TestApplyBetAllIn(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	startHand(t, s)
	require.NoError(t, s.AdvanceRound(time.Now())) // to flop so betting opens at 0

	applied, err := s.ApplyAction("bob", ActionBet, 980)
	require.NoError(t, err)
	assert.True(t, applied.AllIn)
	assert.Equal(t, StatusAllIn, s.Players[1].Status)
	assert.Equal(t, int64(980), s.CurrentBet)
}

func TestAdvanceRoundDealsCommunity(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	startHand(t, s)
	now := time.Now()

	require.NoError(t, s.AdvanceRound(now))
	assert.Equal(t, RoundFlop, s.Round)
	assert.Len(t, s.Community, 3)
	assert.Zero(t, s.CurrentBet)
	for _, p := range s.Players {
		assert.Zero(t, p.Bet)
		assert.NotZero(t, p.TotalBet, "hand totals survive the round change")
	}
	// Postflop the non-dealer acts first.
	assert.Equal(t, 1, s.Current)

	require.NoError(t, s.AdvanceRound(now))
	assert.Equal(t, RoundTurn, s.Round)
	assert.Len(t, s.Community, 4)

	require.NoError(t, s.AdvanceRound(now))
	assert.Equal(t, RoundRiver, s.Round)
	assert.Len(t, s.Community, 5)

	require.NoError(t, s.AdvanceRound(now))
	assert.Equal(t, RoundShowdown, s.Round)

	require.Error(t, s.AdvanceRound(now), "cannot advance past showdown")
}

func TestAwardUncontested(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	startHand(t, s)

	_, err := s.ApplyAction("alice", ActionFold, 0)
	require.NoError(t, err)

	result, err := s.AwardUncontested()
	require.NoError(t, err)
	assert.True(t, result.Uncontested)
	assert.Equal(t, map[string]int64{"bob": 30}, result.Payouts)
	assert.Equal(t, int64(1010), s.Players[1].Chips)
	assert.Zero(t, s.Pot)
}

func TestAwardUncontestedRequiresLoneContender(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	startHand(t, s)
	_, err := s.AwardUncontested()
	require.Error(t, err)
}

// riggedShowdown puts both players at the river with known cards.
// Community gives bob a pair of aces against alice's pair of kings.
func riggedShowdown(t *testing.T, s *State) {
	t.Helper()

	s.Community = []deck.Card{
		card(deck.Ace, deck.Spades),
		card(deck.King, deck.Hearts),
		card(deck.Seven, deck.Diamonds),
		card(deck.Four, deck.Clubs),
		card(deck.Two, deck.Spades),
	}
	s.Players[0].HoleCards = []deck.Card{card(deck.King, deck.Spades), card(deck.Nine, deck.Hearts)}
	s.Players[1].HoleCards = []deck.Card{card(deck.Ace, deck.Hearts), card(deck.Queen, deck.Diamonds)}
	s.Round = RoundRiver
}

func TestResolveShowdownWinnerTakesPot(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	startHand(t, s)
	_, err := s.ApplyAction("alice", ActionCall, 0)
	require.NoError(t, err)
	riggedShowdown(t, s)

	result, err := s.ResolveShowdown()
	require.NoError(t, err)
	require.Len(t, result.Pots, 1)
	assert.Equal(t, []string{"bob"}, result.Pots[0].Winners)
	assert.Equal(t, int64(40), result.Payouts["bob"])
	assert.Contains(t, result.Pots[0].WinningHand, "Pair")
	assert.Equal(t, int64(1020), s.Players[1].Chips)
	assert.Equal(t, int64(980), s.Players[0].Chips)
	assert.Zero(t, s.Pot)
}

func TestResolveShowdownSplitPot(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	startHand(t, s)
	_, err := s.ApplyAction("alice", ActionCall, 0)
	require.NoError(t, err)

	// Board plays for both: broadway on the table.
	s.Community = []deck.Card{
		card(deck.Ace, deck.Spades),
		card(deck.King, deck.Hearts),
		card(deck.Queen, deck.Diamonds),
		card(deck.Jack, deck.Clubs),
		card(deck.Ten, deck.Spades),
	}
	s.Players[0].HoleCards = []deck.Card{card(deck.Two, deck.Spades), card(deck.Three, deck.Hearts)}
	s.Players[1].HoleCards = []deck.Card{card(deck.Two, deck.Hearts), card(deck.Three, deck.Diamonds)}
	s.Round = RoundRiver

	result, err := s.ResolveShowdown()
	require.NoError(t, err)
	require.Len(t, result.Pots, 1)
	assert.ElementsMatch(t, []string{"alice", "bob"}, result.Pots[0].Winners)
	assert.Equal(t, int64(20), result.Payouts["alice"])
	assert.Equal(t, int64(20), result.Payouts["bob"])
}

func TestResolveShowdownFoldedContributorCannotWin(t *testing.T) {
	t.Parallel()

	// Three players contributed; carol folded after committing 100.
	// Even holding the nuts she cannot win either pot.
	s, err := NewState("g1", []string{"alice", "bob", "carol"}, 1000, 10, 20)
	require.NoError(t, err)
	s.Players[0].Dealer = true
	for i, total := range []int64{150, 150, 100} {
		s.Players[i].TotalBet = total
		s.Players[i].Chips -= total
	}
	s.Pot = 400
	s.Players[2].Status = StatusFolded
	s.Community = []deck.Card{
		card(deck.Ace, deck.Spades),
		card(deck.King, deck.Spades),
		card(deck.Queen, deck.Spades),
		card(deck.Four, deck.Clubs),
		card(deck.Two, deck.Hearts),
	}
	s.Players[0].HoleCards = []deck.Card{card(deck.Ace, deck.Hearts), card(deck.Nine, deck.Diamonds)}
	s.Players[1].HoleCards = []deck.Card{card(deck.King, deck.Hearts), card(deck.Nine, deck.Clubs)}
	s.Players[2].HoleCards = nil // folded hands are mucked
	s.Round = RoundRiver

	result, err := s.ResolveShowdown()
	require.NoError(t, err)
	require.Len(t, result.Pots, 2)
	for _, pot := range result.Pots {
		assert.NotContains(t, pot.Winners, "carol")
	}
	assert.Equal(t, int64(400), result.Payouts["alice"], "pair of aces sweeps both pots")
}

func TestResolveShowdownSidePots(t *testing.T) {
	t.Parallel()

	// alice all-in for 50 with the best hand, bob and carol in for 150.
	// alice wins only the 150 main pot; bob's second-best hand takes
	// the 200 side pot.
	s, err := NewState("g1", []string{"alice", "bob", "carol"}, 1000, 10, 20)
	require.NoError(t, err)
	s.Players[0].Dealer = true
	for i, total := range []int64{50, 150, 150} {
		s.Players[i].TotalBet = total
		s.Players[i].Chips -= total
	}
	s.Players[0].Status = StatusAllIn
	s.Pot = 350
	s.Community = []deck.Card{
		card(deck.Ace, deck.Spades),
		card(deck.King, deck.Hearts),
		card(deck.Seven, deck.Diamonds),
		card(deck.Four, deck.Clubs),
		card(deck.Two, deck.Spades),
	}
	s.Players[0].HoleCards = []deck.Card{card(deck.Ace, deck.Hearts), card(deck.Ace, deck.Diamonds)}
	s.Players[1].HoleCards = []deck.Card{card(deck.King, deck.Spades), card(deck.King, deck.Diamonds)}
	s.Players[2].HoleCards = []deck.Card{card(deck.Queen, deck.Hearts), card(deck.Jack, deck.Diamonds)}
	s.Round = RoundRiver

	result, err := s.ResolveShowdown()
	require.NoError(t, err)
	require.Len(t, result.Pots, 2)
	assert.Equal(t, []string{"alice"}, result.Pots[0].Winners)
	assert.Equal(t, int64(150), result.Pots[0].Amount)
	assert.Equal(t, []string{"bob"}, result.Pots[1].Winners)
	assert.Equal(t, int64(200), result.Pots[1].Amount)

	assert.Equal(t, int64(150), result.Payouts["alice"])
	assert.Equal(t, int64(200), result.Payouts["bob"])
	assert.Zero(t, result.Payouts["carol"])
}

func TestFinishHandMarksOutAndEndsGame(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	s.Players[0].Chips = 0

	gameOver := s.FinishHand()
	assert.True(t, gameOver)
	assert.Equal(t, StatusOut, s.Players[0].Status)
	assert.Equal(t, GameEnded, s.Status)
}

func TestFinishHandContinuesWithTwoFunded(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	assert.False(t, s.FinishHand())
	assert.Equal(t, GameInProgress, s.Status)
}

func TestChipConservationThroughHand(t *testing.T) {
	t.Parallel()

	s := headsUp(t)
	total := s.TotalChips()
	startHand(t, s)
	assert.Equal(t, total, s.TotalChips())

	_, err := s.ApplyAction("alice", ActionCall, 0)
	require.NoError(t, err)
	assert.Equal(t, total, s.TotalChips())

	_, err = s.ApplyAction("bob", ActionRaise, 100)
	require.NoError(t, err)
	assert.Equal(t, total, s.TotalChips())

	_, err = s.ApplyAction("alice", ActionCall, 0)
	require.NoError(t, err)
	riggedShowdown(t, s)
	_, err = s.ResolveShowdown()
	require.NoError(t, err)
	assert.Equal(t, total, s.TotalChips())
}

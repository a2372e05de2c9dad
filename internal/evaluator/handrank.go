package evaluator

import (
	"strings"

	"github.com/chiptable/holdem/internal/deck"
)

// Category enumerates poker hand categories ordered from weakest to strongest.
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns a human-readable category description.
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandRank is the totally ordered strength of a 5-card hand. Category
// dominates; Tiebreaks hold the ranks that settle ties within a
// category in descending significance (e.g. a full house compares trip
// rank then pair rank, a flush compares all five card ranks high to
// low). Unused trailing positions are zero.
type HandRank struct {
	Category  Category
	Tiebreaks [5]deck.Rank
}

// Compare returns >0 if h beats o, <0 if o beats h, and 0 on an exact
// chop. Equality is reachable and is what drives split pots.
func (h HandRank) Compare(o HandRank) int {
	if h.Category != o.Category {
		return int(h.Category) - int(o.Category)
	}
	for i := range h.Tiebreaks {
		if h.Tiebreaks[i] != o.Tiebreaks[i] {
			return int(h.Tiebreaks[i]) - int(o.Tiebreaks[i])
		}
	}
	return 0
}

// String describes the hand for result summaries, e.g. "Full House (K over 2)".
func (h HandRank) String() string {
	switch h.Category {
	case HighCard, Flush:
		return h.Category.String() + " (" + h.Tiebreaks[0].String() + " high)"
	case Pair, ThreeOfAKind, FourOfAKind:
		return h.Category.String() + " (" + h.Tiebreaks[0].String() + ")"
	case TwoPair, FullHouse:
		return h.Category.String() + " (" + h.Tiebreaks[0].String() + " over " + h.Tiebreaks[1].String() + ")"
	case Straight, StraightFlush:
		if h.Category == StraightFlush && h.Tiebreaks[0] == deck.Ace {
			return "Royal Flush"
		}
		return h.Category.String() + " (" + h.Tiebreaks[0].String() + " high)"
	default:
		return strings.TrimSpace(h.Category.String())
	}
}

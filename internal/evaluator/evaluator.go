// Package evaluator ranks Texas Hold'em hands. Given up to seven cards
// it finds the best five-card hand and produces a totally ordered
// HandRank for comparison and tie-breaking at showdown.
package evaluator

import (
	"fmt"
	"sort"

	"github.com/chiptable/holdem/internal/deck"
)

// Evaluate returns the strongest HandRank over all 5-card subsets of
// the given cards. Accepts 5 to 7 cards.
func Evaluate(cards []deck.Card) (HandRank, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return HandRank{}, fmt.Errorf("evaluator: need 5-7 cards, got %d", len(cards))
	}

	var best HandRank
	first := true
	var hand [5]deck.Card

	var pick func(start, chosen int)
	pick = func(start, chosen int) {
		if chosen == 5 {
			r := evaluate5(hand)
			if first || r.Compare(best) > 0 {
				best = r
				first = false
			}
			return
		}
		for i := start; i <= len(cards)-(5-chosen); i++ {
			hand[chosen] = cards[i]
			pick(i+1, chosen+1)
		}
	}
	pick(0, 0)

	return best, nil
}

// evaluate5 ranks exactly five cards.
func evaluate5(cards [5]deck.Card) HandRank {
	ranks := make([]deck.Rank, 5)
	flush := true
	for i, c := range cards {
		ranks[i] = c.Rank
		if c.Suit != cards[0].Suit {
			flush = false
		}
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] > ranks[j] })

	straightHigh, straight := straightHighRank(ranks)

	if straight && flush {
		return HandRank{Category: StraightFlush, Tiebreaks: [5]deck.Rank{straightHigh}}
	}

	// Group ranks by multiplicity, ordered by count then rank so the
	// significant groups lead the tiebreaks.
	type group struct {
		rank  deck.Rank
		count int
	}
	counts := map[deck.Rank]int{}
	for _, r := range ranks {
		counts[r]++
	}
	groups := make([]group, 0, len(counts))
	for r, n := range counts {
		groups = append(groups, group{rank: r, count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	var tb [5]deck.Rank
	for i, g := range groups {
		tb[i] = g.rank
	}

	switch {
	case groups[0].count == 4:
		return HandRank{Category: FourOfAKind, Tiebreaks: tb}
	case groups[0].count == 3 && groups[1].count == 2:
		return HandRank{Category: FullHouse, Tiebreaks: tb}
	case flush:
		copy(tb[:], ranks)
		return HandRank{Category: Flush, Tiebreaks: tb}
	case straight:
		return HandRank{Category: Straight, Tiebreaks: [5]deck.Rank{straightHigh}}
	case groups[0].count == 3:
		return HandRank{Category: ThreeOfAKind, Tiebreaks: tb}
	case groups[0].count == 2 && groups[1].count == 2:
		return HandRank{Category: TwoPair, Tiebreaks: tb}
	case groups[0].count == 2:
		return HandRank{Category: Pair, Tiebreaks: tb}
	default:
		copy(tb[:], ranks)
		return HandRank{Category: HighCard, Tiebreaks: tb}
	}
}

// straightHighRank reports whether the five distinct-or-not ranks
// (sorted descending) form a straight and the rank of its high card.
// A-2-3-4-5 is the lowest straight: the ace plays low and the high
// card is the five.
func straightHighRank(sorted []deck.Rank) (deck.Rank, bool) {
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return 0, false // paired, cannot be a straight
		}
	}

	if sorted[0]-sorted[4] == 4 {
		return sorted[0], true
	}

	// Wheel: A,5,4,3,2 sorted descending.
	if sorted[0] == deck.Ace && sorted[1] == deck.Five && sorted[1]-sorted[4] == 3 {
		return deck.Five, true
	}

	return 0, false
}

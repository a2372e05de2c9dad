// Package deck provides a standard 52-card deck shuffled with a
// cryptographically strong random source, so that no party can predict
// or replay a deal.
package deck

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// ErrExhausted is returned when more cards are requested than remain.
var ErrExhausted = errors.New("deck: not enough cards remaining")

// Deck represents an ordered sequence of cards dealt from the front
// without replacement.
type Deck struct {
	cards []Card
}

// New creates a full 52-card deck shuffled with crypto/rand.
func New() (*Deck, error) {
	cards := make([]Card, 0, 52)
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}

	// Fisher-Yates with crypto/rand indices.
	for i := len(cards) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, fmt.Errorf("deck: shuffle: %w", err)
		}
		j := int(n.Int64())
		cards[i], cards[j] = cards[j], cards[i]
	}

	return &Deck{cards: cards}, nil
}

// FromCards builds a deck from an explicit card sequence. Used to
// restore the undealt remainder of a persisted hand and to rig deals in
// tests.
func FromCards(cards []Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

// Deal removes and returns the next n cards from the front of the deck.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 {
		return nil, fmt.Errorf("deck: cannot deal %d cards", n)
	}
	if n > len(d.cards) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrExhausted, n, len(d.cards))
	}
	dealt := d.cards[:n]
	d.cards = d.cards[n:]
	return dealt, nil
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the undealt cards, front first.
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}

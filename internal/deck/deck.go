package deck

import (
	"errors"
	rand "math/rand/v2"
)

// ErrExhausted is returned by Deal when no cards remain. A single-deck
// blackjack round cannot consume all 52 cards, so hitting this indicates a
// bug in the caller rather than a recoverable condition.
var ErrExhausted = errors.New("deck: exhausted")

// Deck represents an ordered deck of playing cards, consumed from the top.
// It is never replenished mid-round; a fresh round builds a fresh deck.
type Deck struct {
	cards []Card
}

// New creates a standard 52-card deck in deterministic suit-major order.
func New() *Deck {
	d := &Deck{cards: make([]Card, 0, 52)}
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
	return d
}

// Stacked creates a deck that deals the given cards in order. Used by tests
// to script exact rounds.
func Stacked(cards ...Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// Shuffle permutes the deck uniformly with a Fisher-Yates pass over the
// provided rng.
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the top card of the deck.
func (d *Deck) Deal() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrExhausted
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// Remaining returns the number of cards left in the deck.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

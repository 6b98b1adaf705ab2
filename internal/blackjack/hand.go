package blackjack

import "github.com/greenfelt/casino/internal/deck"

// Value is the evaluation of a set of cards under soft/hard ace rules.
type Value struct {
	Total     int
	Soft      bool // an ace is currently counted as 11
	Bust      bool
	Blackjack bool // exactly two cards totalling 21
}

// Score evaluates cards with the two-pass ace algorithm: non-aces sum first,
// then each ace counts 11 if that keeps the total at or under 21, else 1.
// Aces are demoted greedily for the highest legal total, so the result does
// not depend on card order.
func Score(cards []deck.Card) Value {
	total := 0
	aces := 0
	for _, c := range cards {
		if c.IsAce() {
			aces++
			continue
		}
		total += c.BlackjackValue()
	}

	soft := false
	for i := 0; i < aces; i++ {
		// Remaining aces still need at least 1 each.
		if total+11+(aces-i-1) <= 21 {
			total += 11
			soft = true
		} else {
			total += 1
		}
	}

	return Value{
		Total:     total,
		Soft:      soft,
		Bust:      total > 21,
		Blackjack: len(cards) == 2 && total == 21,
	}
}

// Hand is a single blackjack hand with its own wager. A split produces two
// Hands that each own their wager independently.
type Hand struct {
	Cards   []deck.Card
	Wager   int64
	Doubled bool

	// split marks hands produced by a split; they can reach 21 but never a
	// natural blackjack.
	split bool

	// done means no further actions are allowed: stood, busted, doubled or
	// resolved at deal time.
	done bool
}

func newHand(wager int64, cards ...deck.Card) *Hand {
	h := &Hand{Wager: wager, Cards: make([]deck.Card, 0, 4)}
	h.Cards = append(h.Cards, cards...)
	return h
}

// Value evaluates the hand.
func (h *Hand) Value() Value {
	v := Score(h.Cards)
	if h.split {
		v.Blackjack = false
	}
	return v
}

// CanAct reports whether the hand may still take actions.
func (h *Hand) CanAct() bool {
	return !h.done
}

// IsBlackjack reports a natural: two cards totalling 21 on an unsplit hand.
func (h *Hand) IsBlackjack() bool {
	return h.Value().Blackjack
}

// CanSplit reports whether the hand is a splittable pair.
func (h *Hand) CanSplit() bool {
	return len(h.Cards) == 2 && h.Cards[0].Rank == h.Cards[1].Rank
}

// CanDouble reports whether the hand is eligible for doubling down.
func (h *Hand) CanDouble() bool {
	return len(h.Cards) == 2 && !h.Doubled
}

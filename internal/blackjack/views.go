package blackjack

import "github.com/greenfelt/casino/internal/deck"

// HandView is a read-only projection of a player hand.
type HandView struct {
	Cards   []deck.Card
	Wager   int64
	Doubled bool
	Value   Value
	CanAct  bool
}

// DealerView is a read-only projection of the dealer hand. While the player
// is still acting only the upcard is visible and HoleHidden is set; the
// value then covers the upcard alone.
type DealerView struct {
	Cards      []deck.Card
	HoleHidden bool
	Value      Value
}

// Hands returns projections of every player hand in table order.
func (r *Round) Hands() []HandView {
	views := make([]HandView, 0, len(r.hands))
	for _, h := range r.hands {
		views = append(views, HandView{
			Cards:   append([]deck.Card(nil), h.Cards...),
			Wager:   h.Wager,
			Doubled: h.Doubled,
			Value:   h.Value(),
			CanAct:  h.CanAct(),
		})
	}
	return views
}

// Dealer returns the dealer hand projection for the current state.
func (r *Round) Dealer() DealerView {
	if r.status == PlayerActing && len(r.dealer) > 0 {
		up := r.dealer[:1]
		return DealerView{
			Cards:      append([]deck.Card(nil), up...),
			HoleHidden: true,
			Value:      Score(up),
		}
	}
	return DealerView{
		Cards: append([]deck.Card(nil), r.dealer...),
		Value: Score(r.dealer),
	}
}

// ActiveHand returns the index of the hand whose turn it is, or -1.
func (r *Round) ActiveHand() int {
	return r.active
}

// Result returns the settlement summary, or nil before the round settles.
func (r *Round) Result() *Result {
	return r.result
}

package blackjack

import (
	"testing"

	"github.com/greenfelt/casino/internal/deck"
	"github.com/greenfelt/casino/internal/randutil"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		cards     string
		total     int
		soft      bool
		bust      bool
		blackjack bool
	}{
		{name: "natural blackjack", cards: "AsKs", total: 21, soft: true, blackjack: true},
		{name: "hard twenty", cards: "KsQh", total: 20},
		{name: "soft seventeen", cards: "Ad6c", total: 17, soft: true},
		{name: "soft eighteen three cards", cards: "Ad3c4h", total: 18, soft: true},
		{name: "ace demoted", cards: "Ad9c5h", total: 15},
		{name: "two aces", cards: "AdAc", total: 12, soft: true},
		{name: "two aces and nine", cards: "AdAc9s", total: 21, soft: true},
		{name: "twenty one three cards is not blackjack", cards: "7d7c7s", total: 21},
		{name: "bust", cards: "KdQc5s", total: 25, bust: true},
		{name: "ace saves after demotion", cards: "KdAc", total: 21, soft: true, blackjack: true},
		{name: "four aces", cards: "AdAcAhAs", total: 14, soft: true},
		{name: "face cards count ten", cards: "JdQc", total: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Score(deck.MustParseCards(tt.cards))
			if v.Total != tt.total {
				t.Errorf("Total = %d, want %d", v.Total, tt.total)
			}
			if v.Soft != tt.soft {
				t.Errorf("Soft = %v, want %v", v.Soft, tt.soft)
			}
			if v.Bust != tt.bust {
				t.Errorf("Bust = %v, want %v", v.Bust, tt.bust)
			}
			if v.Blackjack != tt.blackjack {
				t.Errorf("Blackjack = %v, want %v", v.Blackjack, tt.blackjack)
			}
		})
	}
}

func TestScoreIsOrderIndependent(t *testing.T) {
	hands := []string{
		"AsKs", "AdAc9s", "Ad9c5h", "KdQc5s", "AdAcAhAs", "Ad3c4h2s",
	}

	rng := randutil.New(99)
	for _, hand := range hands {
		cards := deck.MustParseCards(hand)
		want := Score(cards)

		for trial := 0; trial < 20; trial++ {
			shuffled := append([]deck.Card(nil), cards...)
			rng.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			if got := Score(shuffled); got != want {
				t.Fatalf("Score(%v) = %+v, want %+v for %s", shuffled, got, want, hand)
			}
		}
	}
}

func TestSplitHandNeverScoresBlackjack(t *testing.T) {
	h := newHand(50, deck.MustParseCards("AsKd")...)
	h.split = true

	v := h.Value()
	if v.Total != 21 {
		t.Errorf("Total = %d, want 21", v.Total)
	}
	if v.Blackjack {
		t.Error("split hand reaching 21 must not count as blackjack")
	}
}

func TestHandEligibility(t *testing.T) {
	pair := newHand(10, deck.MustParseCards("8s8d")...)
	if !pair.CanSplit() {
		t.Error("pair of eights should be splittable")
	}
	if !pair.CanDouble() {
		t.Error("two-card hand should be doublable")
	}

	unpaired := newHand(10, deck.MustParseCards("8sKd")...)
	if unpaired.CanSplit() {
		t.Error("unpaired hand must not be splittable")
	}

	three := newHand(10, deck.MustParseCards("2s3d4c")...)
	if three.CanDouble() {
		t.Error("three-card hand must not be doublable")
	}
	if three.CanSplit() {
		t.Error("three-card hand must not be splittable")
	}
}

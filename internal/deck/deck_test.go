package deck

import (
	"errors"
	"testing"

	"github.com/greenfelt/casino/internal/randutil"
)

func TestNewDeckHas52UniqueCards(t *testing.T) {
	d := New()
	if d.Remaining() != 52 {
		t.Fatalf("expected 52 cards, got %d", d.Remaining())
	}

	seen := make(map[Card]bool)
	for {
		card, err := d.Deal()
		if err != nil {
			break
		}
		if seen[card] {
			t.Errorf("duplicate card %s", card)
		}
		seen[card] = true
	}
	if len(seen) != 52 {
		t.Errorf("expected 52 unique cards, got %d", len(seen))
	}
}

func TestShufflePreservesCardSet(t *testing.T) {
	d := New()
	d.Shuffle(randutil.New(42))

	seen := make(map[Card]bool)
	for {
		card, err := d.Deal()
		if err != nil {
			break
		}
		if seen[card] {
			t.Fatalf("duplicate card %s after shuffle", card)
		}
		seen[card] = true
	}
	if len(seen) != 52 {
		t.Errorf("expected 52 unique cards after shuffle, got %d", len(seen))
	}
}

func TestShuffleIsDeterministicPerSeed(t *testing.T) {
	a := New()
	b := New()
	a.Shuffle(randutil.New(7))
	b.Shuffle(randutil.New(7))

	for i := 0; i < 52; i++ {
		ca, _ := a.Deal()
		cb, _ := b.Deal()
		if ca != cb {
			t.Fatalf("card %d differs: %s vs %s", i, ca, cb)
		}
	}
}

func TestShuffleMovesCards(t *testing.T) {
	// A uniform shuffle leaving all 52 cards in build order is a 1-in-52!
	// event; treat it as a failed shuffle.
	d := New()
	ordered := New()
	d.Shuffle(randutil.New(1))

	same := true
	for i := 0; i < 52; i++ {
		ca, _ := d.Deal()
		cb, _ := ordered.Deal()
		if ca != cb {
			same = false
		}
	}
	if same {
		t.Error("shuffle left the deck in build order")
	}
}

func TestDealDecreasesDeck(t *testing.T) {
	d := New()
	for i := 52; i > 0; i-- {
		if d.Remaining() != i {
			t.Fatalf("expected %d remaining, got %d", i, d.Remaining())
		}
		if _, err := d.Deal(); err != nil {
			t.Fatalf("unexpected deal error with %d cards left: %v", i, err)
		}
	}
}

func TestDealFromEmptyDeck(t *testing.T) {
	d := Stacked()
	_, err := d.Deal()
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
}

func TestStackedDealsInOrder(t *testing.T) {
	cards := MustParseCards("AsKd5c")
	d := Stacked(cards...)

	for i, want := range cards {
		got, err := d.Deal()
		if err != nil {
			t.Fatalf("deal %d: %v", i, err)
		}
		if got != want {
			t.Errorf("deal %d = %s, want %s", i, got, want)
		}
	}
}

package roulette

import (
	"errors"
	"testing"
)

func TestPocketColor(t *testing.T) {
	reds := []int{1, 3, 5, 7, 9, 12, 14, 16, 18, 19, 21, 23, 25, 27, 30, 32, 34, 36}

	if PocketColor(0) != Green {
		t.Error("0 should be green")
	}

	redSet := make(map[int]bool)
	for _, n := range reds {
		redSet[n] = true
		if PocketColor(n) != RedColor {
			t.Errorf("%d should be red", n)
		}
	}
	for n := 1; n <= 36; n++ {
		if !redSet[n] && PocketColor(n) != BlackColor {
			t.Errorf("%d should be black", n)
		}
	}
}

func TestOutsideBetNumberSets(t *testing.T) {
	tests := []struct {
		name  string
		bet   Bet
		count int
		check func(n int) bool
	}{
		{"red", NewRed(), 18, func(n int) bool { return PocketColor(n) == RedColor }},
		{"black", NewBlack(), 18, func(n int) bool { return PocketColor(n) == BlackColor }},
		{"even", NewEven(), 18, func(n int) bool { return n%2 == 0 }},
		{"odd", NewOdd(), 18, func(n int) bool { return n%2 == 1 }},
		{"low", NewLow(), 18, func(n int) bool { return n >= 1 && n <= 18 }},
		{"high", NewHigh(), 18, func(n int) bool { return n >= 19 && n <= 36 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.bet.Numbers) != tt.count {
				t.Errorf("covers %d numbers, want %d", len(tt.bet.Numbers), tt.count)
			}
			for _, n := range tt.bet.Numbers {
				if n < 1 || n > 36 {
					t.Errorf("number %d out of board range", n)
				}
				if !tt.check(n) {
					t.Errorf("number %d should not be covered", n)
				}
			}
			if tt.bet.Covers(0) {
				t.Error("outside bets must lose on 0")
			}
			if tt.bet.Multiplier() != 2 {
				t.Errorf("multiplier = %d, want 2", tt.bet.Multiplier())
			}
		})
	}
}

func TestInsideBetConstruction(t *testing.T) {
	straight, err := NewStraight(17)
	if err != nil {
		t.Fatalf("straight: %v", err)
	}
	if straight.Multiplier() != 36 {
		t.Errorf("straight multiplier = %d, want 36", straight.Multiplier())
	}
	if !straight.Covers(17) || straight.Covers(18) {
		t.Error("straight 17 coverage wrong")
	}

	zero, err := NewStraight(0)
	if err != nil {
		t.Fatalf("straight on zero should be allowed: %v", err)
	}
	if !zero.Covers(0) {
		t.Error("straight 0 should cover 0")
	}

	if _, err := NewStraight(37); !errors.Is(err, ErrInvalidBet) {
		t.Errorf("straight 37: got %v, want ErrInvalidBet", err)
	}

	street, err := NewStreet(4)
	if err != nil {
		t.Fatalf("street: %v", err)
	}
	wantStreet := []int{10, 11, 12}
	for i, n := range wantStreet {
		if street.Numbers[i] != n {
			t.Errorf("street 4 numbers = %v, want %v", street.Numbers, wantStreet)
			break
		}
	}
	if street.Multiplier() != 12 {
		t.Errorf("street multiplier = %d, want 12", street.Multiplier())
	}

	dozen, err := NewDozen(2)
	if err != nil {
		t.Fatalf("dozen: %v", err)
	}
	if len(dozen.Numbers) != 12 || !dozen.Covers(13) || !dozen.Covers(24) || dozen.Covers(12) || dozen.Covers(25) {
		t.Errorf("dozen 2 coverage wrong: %v", dozen.Numbers)
	}
	if dozen.Multiplier() != 3 {
		t.Errorf("dozen multiplier = %d, want 3", dozen.Multiplier())
	}

	column, err := NewColumn(1)
	if err != nil {
		t.Fatalf("column: %v", err)
	}
	if len(column.Numbers) != 12 || !column.Covers(1) || !column.Covers(34) || column.Covers(2) {
		t.Errorf("column 1 coverage wrong: %v", column.Numbers)
	}
}

func TestSplitAdjacency(t *testing.T) {
	tests := []struct {
		a, b    int
		wantErr bool
	}{
		{1, 2, false},   // horizontal
		{2, 5, false},   // vertical
		{35, 36, false}, // horizontal, last row
		{3, 4, true},    // row boundary, not adjacent on layout
		{1, 3, true},    // same row but not touching
		{1, 5, true},    // diagonal
		{0, 1, true},    // zero splits not supported
	}

	for _, tt := range tests {
		_, err := NewSplit(tt.a, tt.b)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewSplit(%d, %d) error = %v, wantErr %v", tt.a, tt.b, err, tt.wantErr)
		}
	}
}

func TestCornerConstruction(t *testing.T) {
	corner, err := NewCorner(1)
	if err != nil {
		t.Fatalf("corner: %v", err)
	}
	want := []int{1, 2, 4, 5}
	for i, n := range want {
		if corner.Numbers[i] != n {
			t.Errorf("corner 1 numbers = %v, want %v", corner.Numbers, want)
			break
		}
	}
	if corner.Multiplier() != 9 {
		t.Errorf("corner multiplier = %d, want 9", corner.Multiplier())
	}

	// A corner cannot start in the third layout column.
	if _, err := NewCorner(3); !errors.Is(err, ErrInvalidBet) {
		t.Errorf("corner at 3: got %v, want ErrInvalidBet", err)
	}
}

func TestLineConstruction(t *testing.T) {
	line, err := NewLine(1)
	if err != nil {
		t.Fatalf("line: %v", err)
	}
	if len(line.Numbers) != 6 || !line.Covers(1) || !line.Covers(6) || line.Covers(7) {
		t.Errorf("line 1 coverage wrong: %v", line.Numbers)
	}
	if line.Multiplier() != 6 {
		t.Errorf("line multiplier = %d, want 6", line.Multiplier())
	}

	if _, err := NewLine(12); !errors.Is(err, ErrInvalidBet) {
		t.Errorf("line 12: got %v, want ErrInvalidBet", err)
	}
}

// Package roulette implements single-zero (European) roulette: a bet ledger
// accepting any mix of board positions and a settlement pass resolving one
// spin against every placed bet.
package roulette

import (
	"errors"
	"fmt"
)

// Pockets is the number of wheel pockets, 0 through 36.
const Pockets = 37

// ErrInvalidBet indicates a bet on a position that does not exist on the
// board.
var ErrInvalidBet = errors.New("roulette: invalid bet")

// Color classifies a pocket.
type Color int

const (
	Green Color = iota // 0 only
	RedColor
	BlackColor
)

// String returns the string representation of a color
func (c Color) String() string {
	switch c {
	case Green:
		return "green"
	case RedColor:
		return "red"
	case BlackColor:
		return "black"
	default:
		return "unknown"
	}
}

// redNumbers is the fixed 18-number red set of the standard layout. Black is
// its complement within 1-36; 0 is green and loses every outside bet.
var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true,
	12: true, 14: true, 16: true, 18: true, 19: true,
	21: true, 23: true, 25: true, 27: true, 30: true,
	32: true, 34: true, 36: true,
}

// PocketColor returns the color of a pocket.
func PocketColor(pocket int) Color {
	switch {
	case pocket == 0:
		return Green
	case redNumbers[pocket]:
		return RedColor
	default:
		return BlackColor
	}
}

// Kind is the bet variant.
type Kind int

const (
	Straight Kind = iota
	SplitBet
	Street
	Corner
	Line
	Dozen
	Column
	Red
	Black
	Even
	Odd
	Low  // 1-18
	High // 19-36
)

// String returns the string representation of a bet kind
func (k Kind) String() string {
	switch k {
	case Straight:
		return "straight"
	case SplitBet:
		return "split"
	case Street:
		return "street"
	case Corner:
		return "corner"
	case Line:
		return "line"
	case Dozen:
		return "dozen"
	case Column:
		return "column"
	case Red:
		return "red"
	case Black:
		return "black"
	case Even:
		return "even"
	case Odd:
		return "odd"
	case Low:
		return "1-18"
	case High:
		return "19-36"
	default:
		return "unknown"
	}
}

// Bet is a board position: the set of pockets it covers and, via its kind,
// the payout multiplier.
type Bet struct {
	Kind    Kind
	Numbers []int
}

// Multiplier returns the credit per unit stake when the bet wins, stake
// included: a straight pays 35:1 so a winning chip returns 36x.
func (b Bet) Multiplier() int64 {
	switch b.Kind {
	case Straight:
		return 36
	case SplitBet:
		return 18
	case Street:
		return 12
	case Corner:
		return 9
	case Line:
		return 6
	case Dozen, Column:
		return 3
	default: // even-money outside bets
		return 2
	}
}

// Covers reports whether the bet wins on the given pocket.
func (b Bet) Covers(pocket int) bool {
	for _, n := range b.Numbers {
		if n == pocket {
			return true
		}
	}
	return false
}

// String returns the string representation of a bet
func (b Bet) String() string {
	switch b.Kind {
	case Straight:
		return fmt.Sprintf("straight %d", b.Numbers[0])
	case Red, Black, Even, Odd, Low, High:
		return b.Kind.String()
	default:
		return fmt.Sprintf("%s %v", b.Kind, b.Numbers)
	}
}

// NewStraight bets a single pocket, 0 included.
func NewStraight(pocket int) (Bet, error) {
	if pocket < 0 || pocket > 36 {
		return Bet{}, fmt.Errorf("%w: pocket %d", ErrInvalidBet, pocket)
	}
	return Bet{Kind: Straight, Numbers: []int{pocket}}, nil
}

// NewSplit bets two adjacent numbers on the layout grid.
func NewSplit(a, b int) (Bet, error) {
	if a > b {
		a, b = b, a
	}
	if a < 1 || b > 36 {
		return Bet{}, fmt.Errorf("%w: split %d/%d", ErrInvalidBet, a, b)
	}
	horizontal := b-a == 1 && a%3 != 0
	vertical := b-a == 3
	if !horizontal && !vertical {
		return Bet{}, fmt.Errorf("%w: %d and %d are not adjacent", ErrInvalidBet, a, b)
	}
	return Bet{Kind: SplitBet, Numbers: []int{a, b}}, nil
}

// NewStreet bets one of the twelve three-number rows.
func NewStreet(row int) (Bet, error) {
	if row < 1 || row > 12 {
		return Bet{}, fmt.Errorf("%w: street row %d", ErrInvalidBet, row)
	}
	first := (row-1)*3 + 1
	return Bet{Kind: Street, Numbers: []int{first, first + 1, first + 2}}, nil
}

// NewCorner bets the four-number square whose top-left pocket is given.
func NewCorner(topLeft int) (Bet, error) {
	if topLeft < 1 || topLeft > 32 || topLeft%3 == 0 {
		return Bet{}, fmt.Errorf("%w: corner at %d", ErrInvalidBet, topLeft)
	}
	return Bet{Kind: Corner, Numbers: []int{topLeft, topLeft + 1, topLeft + 3, topLeft + 4}}, nil
}

// NewLine bets two adjacent streets (six numbers), identified by the first
// of the two rows.
func NewLine(row int) (Bet, error) {
	if row < 1 || row > 11 {
		return Bet{}, fmt.Errorf("%w: line row %d", ErrInvalidBet, row)
	}
	first := (row-1)*3 + 1
	numbers := make([]int, 6)
	for i := range numbers {
		numbers[i] = first + i
	}
	return Bet{Kind: Line, Numbers: numbers}, nil
}

// NewDozen bets one of the three dozens (1: 1-12, 2: 13-24, 3: 25-36).
func NewDozen(dozen int) (Bet, error) {
	if dozen < 1 || dozen > 3 {
		return Bet{}, fmt.Errorf("%w: dozen %d", ErrInvalidBet, dozen)
	}
	first := (dozen-1)*12 + 1
	numbers := make([]int, 12)
	for i := range numbers {
		numbers[i] = first + i
	}
	return Bet{Kind: Dozen, Numbers: numbers}, nil
}

// NewColumn bets one of the three layout columns.
func NewColumn(column int) (Bet, error) {
	if column < 1 || column > 3 {
		return Bet{}, fmt.Errorf("%w: column %d", ErrInvalidBet, column)
	}
	numbers := make([]int, 12)
	for i := range numbers {
		numbers[i] = column + i*3
	}
	return Bet{Kind: Column, Numbers: numbers}, nil
}

// NewRed bets the red set.
func NewRed() Bet {
	return Bet{Kind: Red, Numbers: colorNumbers(RedColor)}
}

// NewBlack bets the black set.
func NewBlack() Bet {
	return Bet{Kind: Black, Numbers: colorNumbers(BlackColor)}
}

// NewEven bets the even numbers 2-36; 0 is not even for betting purposes.
func NewEven() Bet {
	return Bet{Kind: Even, Numbers: rangeNumbers(func(n int) bool { return n%2 == 0 })}
}

// NewOdd bets the odd numbers 1-35.
func NewOdd() Bet {
	return Bet{Kind: Odd, Numbers: rangeNumbers(func(n int) bool { return n%2 == 1 })}
}

// NewLow bets 1-18.
func NewLow() Bet {
	return Bet{Kind: Low, Numbers: rangeNumbers(func(n int) bool { return n <= 18 })}
}

// NewHigh bets 19-36.
func NewHigh() Bet {
	return Bet{Kind: High, Numbers: rangeNumbers(func(n int) bool { return n >= 19 })}
}

func colorNumbers(color Color) []int {
	return rangeNumbers(func(n int) bool { return PocketColor(n) == color })
}

func rangeNumbers(include func(int) bool) []int {
	numbers := make([]int, 0, 18)
	for n := 1; n <= 36; n++ {
		if include(n) {
			numbers = append(numbers, n)
		}
	}
	return numbers
}

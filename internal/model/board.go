package model

import (
	"fmt"
	"strings"
)

// Position is a square. Y=0 is the eighth rank, X=0 the a-file.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NoPosition marks an absent square, e.g. no en passant target.
var NoPosition = Position{X: -1, Y: -1}

func NewPosition(x, y int) Position {
	return Position{X: x, Y: y}
}

// ParsePosition reads algebraic text such as "e4".
func ParsePosition(s string) (Position, error) {
	if len(s) != 2 {
		return NoPosition, fmt.Errorf("%q: %w", s, ErrInvalidSquare)
	}
	p := Position{X: int(s[0] - 'a'), Y: 8 - int(s[1]-'0')}
	if s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoPosition, fmt.Errorf("%q: %w", s, ErrInvalidSquare)
	}
	return p, nil
}

func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < 8 && p.Y >= 0 && p.Y < 8
}

// Rotate turns the square by 180 degrees.
func (p Position) Rotate() Position {
	return Position{X: 7 - p.X, Y: 7 - p.Y}
}

func (p Position) String() string {
	if !p.InBounds() {
		return "-"
	}
	return fmt.Sprintf("%c%d", p.X+'a', 8-p.Y)
}

func (p Position) offset(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Board is an 8x8 grid indexed [rank][file]. It is a value: copies never
// share cells, so speculative moves work on a copy.
type Board [8][8]Piece

func (b *Board) At(p Position) Piece {
	if !p.InBounds() {
		return NoPiece
	}
	return b[p.Y][p.X]
}

func (b *Board) Set(p Position, piece Piece) {
	b[p.Y][p.X] = piece
}

func (b *Board) Clear(p Position) {
	b[p.Y][p.X] = NoPiece
}

// FindKing returns NoPosition when the color has no king.
func (b *Board) FindKing(c Color) Position {
	king := Piece{Type: King, Color: c}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if b[y][x] == king {
				return Position{X: x, Y: y}
			}
		}
	}
	return NoPosition
}

// Count returns the number of pieces of the given color.
func (b *Board) Count(c Color) int {
	n := 0
	b.each(func(_ Position, p Piece) {
		if p.Color == c {
			n++
		}
	})
	return n
}

// Validate requires exactly one king per color and no pawns on the back ranks.
func (b *Board) Validate() error {
	kings := map[Color]int{}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := b[y][x]
			switch {
			case p.Type == King:
				kings[p.Color]++
			case p.Type == Pawn && (y == 0 || y == 7):
				return fmt.Errorf("pawn on %s: %w", Position{X: x, Y: y}, ErrInvalidPosition)
			}
		}
	}
	for _, c := range []Color{White, Black} {
		if kings[c] != 1 {
			return fmt.Errorf("%s has %d kings: %w", c, kings[c], ErrInvalidPosition)
		}
	}
	return nil
}

func (b *Board) each(fn func(Position, Piece)) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if !b[y][x].IsEmpty() {
				fn(Position{X: x, Y: y}, b[y][x])
			}
		}
	}
}

// String draws the board with rank 8 on top.
func (b Board) String() string {
	var sb strings.Builder
	for y := 0; y < 8; y++ {
		fmt.Fprintf(&sb, "%d ", 8-y)
		for x := 0; x < 8; x++ {
			if b[y][x].IsEmpty() {
				sb.WriteByte('.')
			} else {
				sb.WriteByte(b[y][x].Letter())
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  abcdefgh\n")
	return sb.String()
}

func newBoard() Board {
	var board Board
	back := []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for x, t := range back {
		board[0][x] = Piece{Type: t, Color: Black}
		board[1][x] = Piece{Type: Pawn, Color: Black}
		board[6][x] = Piece{Type: Pawn, Color: White}
		board[7][x] = Piece{Type: t, Color: White}
	}
	return board
}

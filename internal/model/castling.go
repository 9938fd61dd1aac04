package model

import "strings"

// CastlingRights is the KQkq bit set. Bits are only ever cleared during a game.
type CastlingRights uint8

const (
	WhiteKingSide  CastlingRights = 0b1000
	WhiteQueenSide CastlingRights = 0b0100
	BlackKingSide  CastlingRights = 0b0010
	BlackQueenSide CastlingRights = 0b0001

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
)

var castlingLetters = []struct {
	right  CastlingRights
	letter byte
}{
	{WhiteKingSide, 'K'},
	{WhiteQueenSide, 'Q'},
	{BlackKingSide, 'k'},
	{BlackQueenSide, 'q'},
}

func (c CastlingRights) Has(r CastlingRights) bool {
	return c&r == r
}

func (c *CastlingRights) Set(r CastlingRights) {
	*c |= r
}

func (c *CastlingRights) Unset(r CastlingRights) {
	*c &^= r
}

// String renders the rights in canonical KQkq order, "-" when empty.
func (c CastlingRights) String() string {
	var sb strings.Builder
	for _, l := range castlingLetters {
		if c.Has(l.right) {
			sb.WriteByte(l.letter)
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

func (c CastlingRights) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func castlingRightFromLetter(b byte) (CastlingRights, bool) {
	for _, l := range castlingLetters {
		if l.letter == b {
			return l.right, true
		}
	}
	return NoCastling, false
}

// rightsFor returns both castling bits of a color.
func rightsFor(c Color) CastlingRights {
	if c == White {
		return WhiteKingSide | WhiteQueenSide
	}
	return BlackKingSide | BlackQueenSide
}

// rookCorner maps a rook home square to the right it guards.
func rookCorner(p Position) (CastlingRights, bool) {
	switch p {
	case Position{X: 7, Y: 7}:
		return WhiteKingSide, true
	case Position{X: 0, Y: 7}:
		return WhiteQueenSide, true
	case Position{X: 7, Y: 0}:
		return BlackKingSide, true
	case Position{X: 0, Y: 0}:
		return BlackQueenSide, true
	}
	return NoCastling, false
}

func homeRank(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

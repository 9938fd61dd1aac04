package model

import (
	"fmt"
	"strings"
)

type Move struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

func NewMove(from, to Position) Move {
	return Move{From: from, To: to}
}

// ParseMove reads coordinate text such as "e2e4". A trailing promotion
// letter ("e7e8q") is accepted and dropped: pawns always promote to a queen.
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("%q: %w", s, ErrInvalidMove)
	}
	from, err := ParsePosition(s[:2])
	if err != nil {
		return Move{}, fmt.Errorf("%q: %w", s, ErrInvalidMove)
	}
	to, err := ParsePosition(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("%q: %w", s, ErrInvalidMove)
	}
	if len(s) == 5 && !strings.ContainsRune("qrbn", rune(s[4])) {
		return Move{}, fmt.Errorf("%q: bad promotion letter: %w", s, ErrInvalidMove)
	}
	return Move{From: from, To: to}, nil
}

func (m Move) String() string {
	return m.From.String() + m.To.String()
}

func (m Move) Rotate() Move {
	return Move{From: m.From.Rotate(), To: m.To.Rotate()}
}

// Orientation is how a client draws the board. The core always works in
// white-bottom coordinates; Align converts at the presentation boundary.
type Orientation uint8

const (
	WhiteBottom Orientation = iota
	BlackBottom
)

func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "", "white":
		return WhiteBottom, nil
	case "black":
		return BlackBottom, nil
	}
	return WhiteBottom, fmt.Errorf("unknown orientation %q", s)
}

func (o Orientation) AlignPosition(p Position) Position {
	if o == WhiteBottom {
		return p
	}
	return p.Rotate()
}

func (o Orientation) AlignMove(m Move) Move {
	if o == WhiteBottom {
		return m
	}
	return m.Rotate()
}

// SpecialMove flags moves with side effects beyond moving one piece.
type SpecialMove uint8

const (
	NormalMove SpecialMove = iota
	EnPassantMove
	CastleMove
)

type CastleRookMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Ply is the record of one applied move and its board delta.
type Ply struct {
	Piece            Piece           `json:"piece"`
	From             Position        `json:"from"`
	To               Position        `json:"to"`
	Captured         Piece           `json:"captured"`
	CapturedAt       Position        `json:"capturedAt"`
	CastleRookMove   *CastleRookMove `json:"castleRookMove"`
	EnPassantCapture bool            `json:"enPassantCapture"`
	Promotion        PieceType       `json:"promotion"`
	Notation         string          `json:"notation"`
}

func (p Ply) Move() Move {
	return Move{From: p.From, To: p.To}
}

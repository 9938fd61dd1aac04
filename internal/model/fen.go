package model

import (
	"fmt"
	"strconv"
	"strings"
)

const InitialFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// GameContext is the FEN metadata that travels with a board.
type GameContext struct {
	ToMove          Color          `json:"toMove"`
	Castling        CastlingRights `json:"castling"`
	EnPassantTarget Position       `json:"enPassantTarget"`
	HalfMoveClock   int            `json:"halfMoveClock"`
	FullMoveCounter int            `json:"fullMoveCounter"`
}

func NewGameContext() GameContext {
	return GameContext{
		ToMove:          White,
		Castling:        AllCastling,
		EnPassantTarget: NoPosition,
		HalfMoveClock:   0,
		FullMoveCounter: 1,
	}
}

func (c GameContext) HasEnPassant() bool {
	return c.EnPassantTarget.InBounds()
}

// ParseFEN decodes the six FEN fields. Nothing is returned on failure.
func ParseFEN(fen string) (Board, GameContext, error) {
	var board Board
	ctx := NewGameContext()

	fields := strings.Split(strings.TrimSpace(fen), " ")
	if len(fields) != 6 {
		return board, ctx, fenError("fields", "", "expected 6 fields, got %d", len(fields))
	}

	if err := parsePlacement(&board, fields[0]); err != nil {
		return Board{}, NewGameContext(), err
	}

	switch fields[1] {
	case "w":
		ctx.ToMove = White
	case "b":
		ctx.ToMove = Black
	default:
		return Board{}, NewGameContext(), fenError("side to move", fields[1], "expected w or b")
	}

	castling, err := parseCastling(fields[2])
	if err != nil {
		return Board{}, NewGameContext(), err
	}
	ctx.Castling = castling

	ctx.EnPassantTarget = NoPosition
	if fields[3] != "-" {
		target, err := ParsePosition(fields[3])
		if err != nil {
			return Board{}, NewGameContext(), fenError("en passant", fields[3], "%v", err)
		}
		ctx.EnPassantTarget = target
	}

	half, err := strconv.Atoi(fields[4])
	if err != nil || half < 0 {
		return Board{}, NewGameContext(), fenError("half-move clock", fields[4], "expected a non-negative integer")
	}
	full, err := strconv.Atoi(fields[5])
	if err != nil || full < 1 {
		return Board{}, NewGameContext(), fenError("full-move counter", fields[5], "expected a positive integer")
	}
	ctx.HalfMoveClock = half
	ctx.FullMoveCounter = full

	return board, ctx, nil
}

func parsePlacement(board *Board, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fenError("placement", placement, "expected 8 ranks, got %d", len(ranks))
	}
	for y, rank := range ranks {
		x := 0
		for i := 0; i < len(rank); i++ {
			c := rank[i]
			if c >= '1' && c <= '8' {
				x += int(c - '0')
				continue
			}
			piece, ok := PieceFromLetter(c)
			if !ok {
				return fenError("placement", rank, "unknown piece letter %q", c)
			}
			if x >= 8 {
				return fenError("placement", rank, "rank overflows 8 files")
			}
			board[y][x] = piece
			x++
		}
		if x != 8 {
			return fenError("placement", rank, "rank covers %d files", x)
		}
	}
	return nil
}

func parseCastling(s string) (CastlingRights, error) {
	rights := NoCastling
	if s == "-" {
		return rights, nil
	}
	for i := 0; i < len(s); i++ {
		r, ok := castlingRightFromLetter(s[i])
		if !ok {
			return NoCastling, fenError("castling", s, "unknown castling letter %q", s[i])
		}
		rights.Set(r)
	}
	return rights, nil
}

// BuildFEN encodes a board and context. Castling letters come out in KQkq order.
func BuildFEN(board Board, ctx GameContext) string {
	var sb strings.Builder
	writePlacement(&sb, board)
	sb.WriteByte(' ')
	if ctx.ToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	sb.WriteString(ctx.Castling.String())
	sb.WriteByte(' ')
	sb.WriteString(ctx.EnPassantTarget.String())
	fmt.Fprintf(&sb, " %d %d", ctx.HalfMoveClock, ctx.FullMoveCounter)
	return sb.String()
}

func writePlacement(sb *strings.Builder, board Board) {
	for y := 0; y < 8; y++ {
		empty := 0
		for x := 0; x < 8; x++ {
			piece := board[y][x]
			if piece.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(piece.Letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if y < 7 {
			sb.WriteByte('/')
		}
	}
}

// positionKey is the FEN without the clocks, used for repetition counting.
func positionKey(board Board, ctx GameContext) string {
	var sb strings.Builder
	writePlacement(&sb, board)
	fmt.Fprintf(&sb, " %c %s %s", "wb"[ctx.ToMove], ctx.Castling, ctx.EnPassantTarget)
	return sb.String()
}

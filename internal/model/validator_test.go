package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckMovePieces(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		move    string
		legal   bool
		special SpecialMove
	}{
		{"pawn single step", InitialFEN, "e2e3", true, NormalMove},
		{"pawn double step", InitialFEN, "e2e4", true, NormalMove},
		{"pawn triple step", InitialFEN, "e2e5", false, NormalMove},
		{"pawn sideways", InitialFEN, "e2d2", false, NormalMove},
		{"pawn diagonal onto empty", InitialFEN, "e2d3", false, NormalMove},
		{"pawn double step blocked", "rnbqkbnr/pppppppp/8/8/8/4n3/PPPPPPPP/RNBQKB1R w KQkq - 0 1", "e2e4", false, NormalMove},
		{"pawn double step onto piece", "rnbqkbnr/pppppppp/8/8/4n3/8/PPPPPPPP/RNBQKB1R w KQkq - 0 1", "e2e4", false, NormalMove},
		{"pawn double step off start", "4k3/8/8/8/8/4P3/8/4K3 w - - 0 1", "e3e5", false, NormalMove},
		{"pawn capture", "rnbqkbnr/pppppppp/8/8/8/3n4/PPPPPPPP/RNBQKB1R w KQkq - 0 1", "e2d3", true, NormalMove},
		{"pawn backwards", "4k3/8/8/8/4P3/8/8/4K3 w - - 0 1", "e4e3", false, NormalMove},
		{"black pawn forward", "4k3/4p3/8/8/8/8/8/4K3 b - - 0 1", "e7e5", true, NormalMove},
		{"en passant", "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 2", "e5d6", true, EnPassantMove},
		{"en passant without target", "4k3/8/8/3pP3/8/8/8/4K3 w - - 0 2", "e5d6", false, NormalMove},
		{"en passant from wrong rank", "4k3/8/3p4/8/4P3/8/8/4K3 w - d6 0 2", "e4d5", false, NormalMove},
		{"knight jump", InitialFEN, "g1f3", true, NormalMove},
		{"knight onto own piece", InitialFEN, "g1e2", false, NormalMove},
		{"knight straight", InitialFEN, "g1g3", false, NormalMove},
		{"bishop blocked", InitialFEN, "f1c4", false, NormalMove},
		{"bishop open", "4k3/8/8/8/8/8/8/4KB2 w - - 0 1", "f1a6", true, NormalMove},
		{"bishop not diagonal", "4k3/8/8/8/8/8/8/4KB2 w - - 0 1", "f1f4", false, NormalMove},
		{"rook file", "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", "a1a8", true, NormalMove},
		{"rook blocked", "4k3/8/8/8/p7/8/8/R3K3 w - - 0 1", "a1a8", false, NormalMove},
		{"rook captures blocker", "4k3/8/8/8/p7/8/8/R3K3 w - - 0 1", "a1a4", true, NormalMove},
		{"rook diagonal", "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", "a1c3", false, NormalMove},
		{"queen diagonal", "4k3/8/8/8/8/8/8/3QK3 w - - 0 1", "d1h5", true, NormalMove},
		{"queen file", "4k3/8/8/8/8/8/8/3QK3 w - - 0 1", "d1d8", true, NormalMove},
		{"queen knight jump", "4k3/8/8/8/8/8/8/3QK3 w - - 0 1", "d1e3", false, NormalMove},
		{"king step", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", "e1d2", true, NormalMove},
		{"king two squares no rights", "4k3/8/8/8/8/8/8/4K2R w - - 0 1", "e1g1", false, NormalMove},
		{"castle king side", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", true, CastleMove},
		{"castle queen side", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1c1", true, CastleMove},
		{"black castle king side", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8g8", true, CastleMove},
		{"castle through attacked square", "r3kr2/8/8/8/8/8/8/R3K2R w KQq - 0 1", "e1g1", false, NormalMove},
		{"castle other side unaffected", "r3kr2/8/8/8/8/8/8/R3K2R w KQq - 0 1", "e1c1", true, CastleMove},
		{"castle into attacked square", "r3k1r1/8/8/8/8/8/8/R3K2R w KQq - 0 1", "e1g1", false, NormalMove},
		{"castle out of check", "4r1k1/8/8/8/8/8/8/R3K2R w KQ - 0 1", "e1g1", false, NormalMove},
		{"castle with knight in the way", "r3k2r/8/8/8/8/8/8/RN2K2R w KQkq - 0 1", "e1c1", false, NormalMove},
		{"castle without rook", "r3k2r/8/8/8/8/8/8/4K2R w KQkq - 0 1", "e1c1", false, NormalMove},
		{"castle right cleared", "r3k2r/8/8/8/8/8/8/R3K2R w Qkq - 0 1", "e1g1", false, NormalMove},
		{"empty origin", InitialFEN, "e4e5", false, NormalMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, ctx := mustFEN(t, tt.fen)
			legal, special := CheckMove(board, mustMove(t, tt.move), ctx)
			assert.Equal(t, tt.legal, legal)
			assert.Equal(t, tt.special, special)
		})
	}
}

func TestCheckMoveOffBoard(t *testing.T) {
	board, ctx := mustFEN(t, InitialFEN)
	legal, _ := CheckMove(board, Move{From: Position{X: 4, Y: 6}, To: Position{X: 4, Y: 8}}, ctx)
	assert.False(t, legal)
	legal, _ = CheckMove(board, Move{From: NoPosition, To: Position{X: 4, Y: 4}}, ctx)
	assert.False(t, legal)
}

func TestKingChecked(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		color   Color
		checked bool
	}{
		{"initial", InitialFEN, White, false},
		{"queen on file", "k7/8/8/8/8/8/8/QK6 b - - 0 30", Black, true},
		{"blocked queen", "k7/p7/8/8/8/8/8/QK6 b - - 0 30", Black, false},
		{"knight", "4k3/8/3N4/8/8/8/8/4K3 b - - 0 1", Black, true},
		{"pawn", "4k3/3P4/8/8/8/8/8/4K3 b - - 0 1", Black, true},
		{"pawn straight ahead", "4k3/4P3/8/8/8/8/8/4K3 b - - 0 1", Black, false},
		{"bishop", "4k3/8/8/8/B7/8/8/4K3 b - - 0 1", Black, true},
		{"no king", "8/8/8/8/8/8/8/4K3 b - - 0 1", Black, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, ctx := mustFEN(t, tt.fen)
			assert.Equal(t, tt.checked, KingChecked(board, ctx, tt.color))
		})
	}
}

func TestKingMated(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		color   Color
		checked bool
		mated   bool
	}{
		{"check with escape squares", "k7/8/8/8/8/8/8/QK6 b - - 0 30", Black, true, false},
		{"queen protected by king", "k7/1Q6/1K6/8/8/8/8/8 b - - 0 30", Black, true, true},
		{"back rank", "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", Black, false, false},
		{"back rank mate", "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1", Black, true, true},
		{"block available", "R5k1/5ppp/8/8/8/8/8/2r3K1 b - - 0 1", Black, true, false},
		{"capture available", "R4rk1/5ppp/8/8/8/8/8/6K1 b - - 0 1", Black, false, false},
		{"fools mate", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", White, true, true},
		{"scholars mate", "r1bqkb1r/pppp1Qpp/2n2n2/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 0 4", Black, true, true},
		{"initial", InitialFEN, White, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, ctx := mustFEN(t, tt.fen)
			assert.Equal(t, tt.checked, KingChecked(board, ctx, tt.color))
			assert.Equal(t, tt.mated, KingMated(board, ctx, tt.color))
		})
	}
}

func TestStalemate(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		color     Color
		stalemate bool
	}{
		{"queen boxes king", "k7/8/1Q6/8/8/8/8/2K5 b - - 0 1", Black, true},
		{"king has a square", "k7/8/8/2Q5/8/8/8/2K5 b - - 0 1", Black, false},
		{"pawn can move", "k7/7p/1Q6/8/8/8/8/2K5 b - - 0 1", Black, false},
		{"blocked pawn", "k7/8/1Q6/8/8/7p/7P/2K5 b - - 0 1", Black, true},
		{"mate is not stalemate", "k7/1Q6/1K6/8/8/8/8/8 b - - 0 30", Black, false},
		{"initial", InitialFEN, White, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, ctx := mustFEN(t, tt.fen)
			assert.Equal(t, tt.stalemate, Stalemate(board, ctx, tt.color))
		})
	}
}

func TestIsLegalKeepsKingSafe(t *testing.T) {
	// the bishop on e2 is pinned by the rook on e7
	board, ctx := mustFEN(t, "4k3/4r3/8/8/8/8/4B3/4K3 w - - 0 1")

	pseudo, _ := CheckMove(board, mustMove(t, "e2d3"), ctx)
	assert.True(t, pseudo)
	legal, _ := IsLegal(board, mustMove(t, "e2d3"), ctx)
	assert.False(t, legal)

	legal, _ = IsLegal(board, mustMove(t, "e1d1"), ctx)
	assert.True(t, legal)

	// king may not step next to the other king
	board, ctx = mustFEN(t, "8/8/8/3k4/8/3K4/8/8 w - - 0 1")
	legal, _ = IsLegal(board, mustMove(t, "d3d4"), ctx)
	assert.False(t, legal)
}

func TestEnPassantDiscoveredCheck(t *testing.T) {
	// taking en passant would open the fifth rank to the rook
	board, ctx := mustFEN(t, "8/8/8/K2pP2r/8/8/8/7k w - d6 0 1")
	pseudo, special := CheckMove(board, mustMove(t, "e5d6"), ctx)
	require.True(t, pseudo)
	require.Equal(t, EnPassantMove, special)

	legal, _ := IsLegal(board, mustMove(t, "e5d6"), ctx)
	assert.False(t, legal)
}

func TestLegalMoves(t *testing.T) {
	board, ctx := mustFEN(t, InitialFEN)
	assert.Len(t, LegalMoves(board, ctx, White), 20)
	assert.Len(t, LegalMoves(board, ctx, Black), 20)
	assert.Len(t, LegalMovesFrom(board, ctx, mustSquare(t, "b1")), 2)
	assert.Empty(t, LegalMovesFrom(board, ctx, mustSquare(t, "e4")))

	board, ctx = mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	king := LegalMovesFrom(board, ctx, mustSquare(t, "e1"))
	assert.Contains(t, king, mustMove(t, "e1g1"))
	assert.Contains(t, king, mustMove(t, "e1c1"))
	assert.Len(t, king, 7)
}

func TestValidatorLeavesBoardUntouched(t *testing.T) {
	board, ctx := mustFEN(t, "r3k2r/pppq1ppp/8/3pP3/8/8/PPPQ1PPP/R3K2R w KQkq d6 0 9")
	before := board

	CheckMove(board, mustMove(t, "e1g1"), ctx)
	IsLegal(board, mustMove(t, "e5d6"), ctx)
	KingMated(board, ctx, White)
	Stalemate(board, ctx, Black)
	LegalMoves(board, ctx, White)

	assert.Equal(t, before, board)
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		fen          string
		insufficient bool
	}{
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", true},
		{"4k3/8/8/8/8/8/8/3BK3 w - - 0 1", true},
		{"4kn2/8/8/8/8/8/8/3BK3 w - - 0 1", true},
		{"4k3/8/8/8/8/8/8/3RK3 w - - 0 1", false},
		{"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", false},
		{"4k3/8/8/8/8/8/8/2NBK3 w - - 0 1", false},
		{InitialFEN, false},
	}
	for _, tt := range tests {
		t.Run(tt.fen, func(t *testing.T) {
			board, _ := mustFEN(t, tt.fen)
			assert.Equal(t, tt.insufficient, InsufficientMaterial(board))
		})
	}
}

func TestApplyMoveSideEffects(t *testing.T) {
	board, _ := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	after, ply := applyMove(board, mustMove(t, "e1g1"), CastleMove)
	assert.Equal(t, Piece{Type: King, Color: White}, after.At(mustSquare(t, "g1")))
	assert.Equal(t, Piece{Type: Rook, Color: White}, after.At(mustSquare(t, "f1")))
	assert.True(t, after.At(mustSquare(t, "h1")).IsEmpty())
	require.NotNil(t, ply.CastleRookMove)
	assert.Equal(t, mustSquare(t, "h1"), ply.CastleRookMove.From)

	board, _ = mustFEN(t, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 2")
	after, ply = applyMove(board, mustMove(t, "e5d6"), EnPassantMove)
	assert.True(t, after.At(mustSquare(t, "d5")).IsEmpty())
	assert.Equal(t, Piece{Type: Pawn, Color: White}, after.At(mustSquare(t, "d6")))
	assert.Equal(t, mustSquare(t, "d5"), ply.CapturedAt)
	assert.Equal(t, Piece{Type: Pawn, Color: Black}, ply.Captured)

	board, _ = mustFEN(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	after, ply = applyMove(board, mustMove(t, "a7a8"), NormalMove)
	assert.Equal(t, Piece{Type: Queen, Color: White}, after.At(mustSquare(t, "a8")))
	assert.Equal(t, Queen, ply.Promotion)
}

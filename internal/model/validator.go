package model

import "golang.org/x/exp/constraints"

// The validator is a set of pure functions. Boards are passed by value, so
// speculative moves are made on a copy and never leak into the caller's board.

// CheckMove reports whether m is pseudo-legal for the piece on m.From. It does
// not look at whether the mover's own king is left in check.
func CheckMove(b Board, m Move, ctx GameContext) (bool, SpecialMove) {
	return checkMove(&b, m, ctx, true)
}

func checkMove(b *Board, m Move, ctx GameContext, allowCastle bool) (bool, SpecialMove) {
	if !m.From.InBounds() || !m.To.InBounds() || m.From == m.To {
		return false, NormalMove
	}
	piece := b.At(m.From)
	if piece.IsEmpty() {
		return false, NormalMove
	}
	target := b.At(m.To)
	if !target.IsEmpty() && target.Color == piece.Color {
		return false, NormalMove
	}

	switch piece.Type {
	case Pawn:
		return checkPawnMove(b, m, piece, ctx)
	case Knight:
		return checkKnightMove(m), NormalMove
	case Bishop:
		return checkBishopMove(b, m), NormalMove
	case Rook:
		return checkRookMove(b, m), NormalMove
	case Queen:
		return checkBishopMove(b, m) || checkRookMove(b, m), NormalMove
	case King:
		return checkKingMove(b, m, piece, ctx, allowCastle)
	}
	return false, NormalMove
}

func checkPawnMove(b *Board, m Move, piece Piece, ctx GameContext) (bool, SpecialMove) {
	dir, startRow, enPassantRow := -1, 6, 3
	if piece.Color == Black {
		dir, startRow, enPassantRow = 1, 1, 4
	}
	dx := m.To.X - m.From.X
	dy := m.To.Y - m.From.Y
	target := b.At(m.To)

	switch {
	case dx == 0 && target.IsEmpty():
		if dy == dir {
			return true, NormalMove
		}
		if dy == 2*dir && m.From.Y == startRow && b.At(m.From.offset(0, dir)).IsEmpty() {
			return true, NormalMove
		}
	case abs(dx) == 1 && dy == dir:
		if !target.IsEmpty() {
			return true, NormalMove
		}
		if ctx.HasEnPassant() && m.To == ctx.EnPassantTarget && m.From.Y == enPassantRow {
			bypassed := b.At(Position{X: m.To.X, Y: m.From.Y})
			if bypassed.Type == Pawn && bypassed.Color != piece.Color {
				return true, EnPassantMove
			}
		}
	}
	return false, NormalMove
}

func checkKnightMove(m Move) bool {
	dx := abs(m.To.X - m.From.X)
	dy := abs(m.To.Y - m.From.Y)
	return (dx == 1 && dy == 2) || (dx == 2 && dy == 1)
}

func checkBishopMove(b *Board, m Move) bool {
	dx := m.To.X - m.From.X
	dy := m.To.Y - m.From.Y
	if dx == 0 || abs(dx) != abs(dy) {
		return false
	}
	return pathClear(b, m)
}

func checkRookMove(b *Board, m Move) bool {
	if (m.From.X == m.To.X) == (m.From.Y == m.To.Y) {
		return false
	}
	return pathClear(b, m)
}

// pathClear reports whether every square strictly between the endpoints is empty.
func pathClear(b *Board, m Move) bool {
	dx := sign(m.To.X - m.From.X)
	dy := sign(m.To.Y - m.From.Y)
	for p := m.From.offset(dx, dy); p != m.To; p = p.offset(dx, dy) {
		if !b.At(p).IsEmpty() {
			return false
		}
	}
	return true
}

func checkKingMove(b *Board, m Move, piece Piece, ctx GameContext, allowCastle bool) (bool, SpecialMove) {
	dx := m.To.X - m.From.X
	dy := m.To.Y - m.From.Y
	if abs(dx) <= 1 && abs(dy) <= 1 {
		return true, NormalMove
	}
	if !allowCastle || abs(dx) != 2 || dy != 0 {
		return false, NormalMove
	}
	if checkCastle(b, m, piece, ctx) {
		return true, CastleMove
	}
	return false, NormalMove
}

func checkCastle(b *Board, m Move, king Piece, ctx GameContext) bool {
	rank := homeRank(king.Color)
	if m.From != (Position{X: 4, Y: rank}) {
		return false
	}
	right, rookFrom, _ := castleSide(king.Color, m.To)
	if !ctx.Castling.Has(right) {
		return false
	}
	if b.At(rookFrom) != (Piece{Type: Rook, Color: king.Color}) {
		return false
	}
	if !pathClear(b, Move{From: m.From, To: rookFrom}) {
		return false
	}

	enemy := king.Color.Opposite()
	if squareAttackedBy(b, m.From, enemy, ctx) {
		return false
	}
	step := sign(m.To.X - m.From.X)
	for p := m.From.offset(step, 0); ; p = p.offset(step, 0) {
		if kingAttackedOn(*b, m.From, p, king, ctx) {
			return false
		}
		if p == m.To {
			break
		}
	}
	return true
}

// castleSide returns the right, rook origin and rook destination for a
// castling king landing on to.
func castleSide(c Color, to Position) (CastlingRights, Position, Position) {
	rank := homeRank(c)
	kingSide := to.X == 6
	var right CastlingRights
	switch {
	case c == White && kingSide:
		right = WhiteKingSide
	case c == White:
		right = WhiteQueenSide
	case kingSide:
		right = BlackKingSide
	default:
		right = BlackQueenSide
	}
	if kingSide {
		return right, Position{X: 7, Y: rank}, Position{X: 5, Y: rank}
	}
	return right, Position{X: 0, Y: rank}, Position{X: 3, Y: rank}
}

// kingAttackedOn moves the king to sq on a copy of the board and tests it.
func kingAttackedOn(b Board, from, sq Position, king Piece, ctx GameContext) bool {
	b.Clear(from)
	b.Set(sq, king)
	return squareAttackedBy(&b, sq, king.Color.Opposite(), ctx)
}

// squareAttackedBy asks every piece of color by whether it could capture on sq.
// sq must be occupied by a piece of the other color.
func squareAttackedBy(b *Board, sq Position, by Color, ctx GameContext) bool {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := b[y][x]
			if p.IsEmpty() || p.Color != by {
				continue
			}
			if ok, _ := checkMove(b, Move{From: Position{X: x, Y: y}, To: sq}, ctx, false); ok {
				return true
			}
		}
	}
	return false
}

// KingChecked reports whether c's king is attacked. A board without a king
// of that color is never in check.
func KingChecked(b Board, ctx GameContext, c Color) bool {
	king := b.FindKing(c)
	if king == NoPosition {
		return false
	}
	return squareAttackedBy(&b, king, c.Opposite(), ctx)
}

// LeavesKingInCheck plays m on a copy of b and reports whether the mover's
// king is attacked afterwards.
func LeavesKingInCheck(b Board, m Move, special SpecialMove, ctx GameContext) bool {
	mover := b.At(m.From)
	after, _ := applyMove(b, m, special)
	return KingChecked(after, ctx, mover.Color)
}

// IsLegal combines CheckMove with the king safety test.
func IsLegal(b Board, m Move, ctx GameContext) (bool, SpecialMove) {
	ok, special := CheckMove(b, m, ctx)
	if !ok || LeavesKingInCheck(b, m, special, ctx) {
		return false, NormalMove
	}
	return true, special
}

// LegalMovesFrom lists every legal destination of the piece on from.
func LegalMovesFrom(b Board, ctx GameContext, from Position) []Move {
	moves := []Move{}
	if b.At(from).IsEmpty() {
		return moves
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			m := Move{From: from, To: Position{X: x, Y: y}}
			if ok, _ := IsLegal(b, m, ctx); ok {
				moves = append(moves, m)
			}
		}
	}
	return moves
}

func LegalMoves(b Board, ctx GameContext, c Color) []Move {
	moves := []Move{}
	b.each(func(from Position, p Piece) {
		if p.Color == c {
			moves = append(moves, LegalMovesFrom(b, ctx, from)...)
		}
	})
	return moves
}

func hasLegalMove(b Board, ctx GameContext, c Color) bool {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := b[y][x]
			if p.IsEmpty() || p.Color != c {
				continue
			}
			from := Position{X: x, Y: y}
			for ty := 0; ty < 8; ty++ {
				for tx := 0; tx < 8; tx++ {
					if ok, _ := IsLegal(b, Move{From: from, To: Position{X: tx, Y: ty}}, ctx); ok {
						return true
					}
				}
			}
		}
	}
	return false
}

// KingMated reports check with no legal escape.
func KingMated(b Board, ctx GameContext, c Color) bool {
	return KingChecked(b, ctx, c) && !hasLegalMove(b, ctx, c)
}

// Stalemate reports no legal move while not in check.
func Stalemate(b Board, ctx GameContext, c Color) bool {
	return !KingChecked(b, ctx, c) && !hasLegalMove(b, ctx, c)
}

const minMaterial = 5

func Material(b Board, c Color) int {
	total := 0
	b.each(func(_ Position, p Piece) {
		if p.Color == c {
			total += p.Value()
		}
	})
	return total
}

func hasPawn(b Board, c Color) bool {
	pawn := Piece{Type: Pawn, Color: c}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if b[y][x] == pawn {
				return true
			}
		}
	}
	return false
}

// InsufficientMaterial is true when neither side has a pawn or at least a
// rook's worth of material.
func InsufficientMaterial(b Board) bool {
	for _, c := range []Color{White, Black} {
		if Material(b, c) >= minMaterial || hasPawn(b, c) {
			return false
		}
	}
	return true
}

// applyMove returns the board after m and the delta it caused.
func applyMove(b Board, m Move, special SpecialMove) (Board, Ply) {
	piece := b.At(m.From)
	ply := Ply{
		Piece:      piece,
		From:       m.From,
		To:         m.To,
		Captured:   b.At(m.To),
		CapturedAt: NoPosition,
		Notation:   m.String(),
	}
	if !ply.Captured.IsEmpty() {
		ply.CapturedAt = m.To
	}

	switch special {
	case EnPassantMove:
		at := Position{X: m.To.X, Y: m.From.Y}
		ply.Captured = b.At(at)
		ply.CapturedAt = at
		ply.EnPassantCapture = true
		b.Clear(at)
	case CastleMove:
		_, rookFrom, rookTo := castleSide(piece.Color, m.To)
		b.Set(rookTo, b.At(rookFrom))
		b.Clear(rookFrom)
		ply.CastleRookMove = &CastleRookMove{From: rookFrom, To: rookTo}
	}

	b.Set(m.To, piece)
	b.Clear(m.From)
	if piece.Type == Pawn && (m.To.Y == 0 || m.To.Y == 7) {
		b.Set(m.To, Piece{Type: Queen, Color: piece.Color})
		ply.Promotion = Queen
	}
	return b, ply
}

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

func sign[T constraints.Signed](x T) T {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

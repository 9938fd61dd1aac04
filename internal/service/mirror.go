package service

import (
	"github.com/benbeisheim/rulechess-backend/internal/model"
	"github.com/benbeisheim/rulechess-backend/internal/ws"
)

// boardMirror is the server side copy of what clients display. It follows
// the game through model.BoardObserver and queues the deltas to send.
type boardMirror struct {
	board  model.Board
	deltas []ws.BoardDelta
}

func (m *boardMirror) InitPosition(board model.Board) {
	m.board = board
	m.deltas = append(m.deltas, ws.BoardDelta{Kind: ws.DeltaInit, Board: &board})
}

func (m *boardMirror) MovePiece(mv model.Move) bool {
	piece := m.board.At(mv.From)
	if piece.IsEmpty() || !mv.To.InBounds() {
		return false
	}
	m.board.Clear(mv.From)
	m.board.Set(mv.To, piece)
	m.deltas = append(m.deltas, ws.BoardDelta{Kind: ws.DeltaMove, Move: &mv})
	return true
}

func (m *boardMirror) ReplacePiece(at model.Position, piece model.Piece) {
	if !at.InBounds() {
		return
	}
	m.board.Set(at, piece)
	m.deltas = append(m.deltas, ws.BoardDelta{Kind: ws.DeltaReplace, At: &at, Piece: &piece})
}

func (m *boardMirror) RemovePiece(at model.Position) {
	if !at.InBounds() {
		return
	}
	m.board.Clear(at)
	m.deltas = append(m.deltas, ws.BoardDelta{Kind: ws.DeltaRemove, At: &at})
}

func (m *boardMirror) flush() []ws.BoardDelta {
	deltas := m.deltas
	m.deltas = nil
	return deltas
}

package model

import "fmt"

const (
	RepetitionLastMove = "lastmove"
	RepetitionPosition = "position"

	repetitionLimit = 3
)

// RepetitionTracker decides when a game is drawn by repetition.
type RepetitionTracker interface {
	Reset(board Board, ctx GameContext)
	// Record is called after each applied move with the state after it.
	// moveNumber is the full-move counter once the move is made, so a Black
	// move already counts towards the next move.
	Record(ply Ply, moveNumber int, board Board, ctx GameContext)
	Repeated() bool
}

func NewRepetitionTracker(mode string) (RepetitionTracker, error) {
	switch mode {
	case "", RepetitionLastMove:
		return &LastMoveRepetition{}, nil
	case RepetitionPosition:
		return NewPositionRepetition(), nil
	}
	return nil, fmt.Errorf("unknown repetition mode %q", mode)
}

// LastMoveRepetition remembers where each side's piece left from on odd
// move numbers and counts how often the next even move goes straight back.
// It under-detects real threefold repetition.
type LastMoveRepetition struct {
	lastFrom map[Color]Position
	counter  int
}

func (r *LastMoveRepetition) Reset(Board, GameContext) {
	r.lastFrom = map[Color]Position{White: NoPosition, Black: NoPosition}
	r.counter = 0
}

func (r *LastMoveRepetition) Record(ply Ply, moveNumber int, _ Board, _ GameContext) {
	if r.lastFrom == nil {
		r.Reset(Board{}, GameContext{})
	}
	color := ply.Piece.Color
	if moveNumber%2 == 1 {
		r.lastFrom[color] = ply.From
		return
	}
	if r.lastFrom[color] == ply.To {
		r.counter++
	} else {
		r.counter = 0
	}
}

func (r *LastMoveRepetition) Repeated() bool {
	return r.counter >= repetitionLimit
}

func (r *LastMoveRepetition) Count() int {
	return r.counter
}

// PositionRepetition counts occurrences of each position (placement, side
// to move, castling rights and en passant square).
type PositionRepetition struct {
	seen map[string]int
	last string
}

func NewPositionRepetition() *PositionRepetition {
	return &PositionRepetition{seen: map[string]int{}}
}

func (r *PositionRepetition) Reset(board Board, ctx GameContext) {
	r.seen = map[string]int{}
	r.last = positionKey(board, ctx)
	r.seen[r.last] = 1
}

func (r *PositionRepetition) Record(_ Ply, _ int, board Board, ctx GameContext) {
	if r.seen == nil {
		r.seen = map[string]int{}
	}
	r.last = positionKey(board, ctx)
	r.seen[r.last]++
}

func (r *PositionRepetition) Repeated() bool {
	return r.seen[r.last] >= repetitionLimit
}

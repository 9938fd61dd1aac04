// Package engineapi asks external chess engines for move suggestions.
package engineapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/benbeisheim/rulechess-backend/internal/model"
)

var ErrEngine = errors.New("engine request failed")

const (
	MinDepth     = 4
	MaxDepth     = 16
	DefaultDepth = 12

	defaultVariants        = 1
	defaultMaxThinkingTime = 50
)

type Request struct {
	FEN      string
	Depth    int
	Variants int
	// MaxThinkingTime is in milliseconds.
	MaxThinkingTime int
	// SearchMoves restricts the search to these moves, space separated.
	SearchMoves string
}

func NewRequest(fen string, depth int) Request {
	return Request{
		FEN:             fen,
		Depth:           ClampDepth(depth),
		Variants:        defaultVariants,
		MaxThinkingTime: defaultMaxThinkingTime,
	}
}

// Suggestion is an engine's answer. BestMove has not been checked against
// any rules; callers must run it through the game before applying it.
type Suggestion struct {
	BestMove     model.Move  `json:"bestMove"`
	Ponder       *model.Move `json:"ponder,omitempty"`
	Evaluation   *float64    `json:"evaluation,omitempty"`
	Mate         *int        `json:"mate,omitempty"`
	Depth        int         `json:"depth,omitempty"`
	Continuation []string    `json:"continuation,omitempty"`
}

type Suggester interface {
	Suggest(ctx context.Context, req Request) (Suggestion, error)
}

func ClampDepth(depth int) int {
	switch {
	case depth == 0:
		return DefaultDepth
	case depth < MinDepth:
		return MinDepth
	case depth > MaxDepth:
		return MaxDepth
	}
	return depth
}

func engineError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEngine, fmt.Sprintf(format, args...))
}

// parseBestMove reads "bestmove e2e4 ponder e7e5". The ponder part is
// optional and dropped when unreadable.
func parseBestMove(text string) (model.Move, *model.Move, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 || fields[0] != "bestmove" {
		return model.Move{}, nil, engineError("unexpected bestmove %q", text)
	}
	best, err := model.ParseMove(fields[1])
	if err != nil {
		return model.Move{}, nil, fmt.Errorf("%w: %w", ErrEngine, err)
	}
	if len(fields) < 4 || fields[2] != "ponder" {
		return best, nil, nil
	}
	ponder, err := model.ParseMove(fields[3])
	if err != nil {
		return best, nil, nil
	}
	return best, &ponder, nil
}

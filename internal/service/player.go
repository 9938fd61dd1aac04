package service

import (
	"fmt"

	"github.com/benbeisheim/rulechess-backend/internal/model"
)

type Mode string

const (
	// ModeLocal lets joined players share one board. A lone player moves
	// both colors; once a second player joins each moves their own.
	ModeLocal Mode = "local"
	// ModeBot pits one player against the engine.
	ModeBot Mode = "bot"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeLocal:
		return ModeLocal, nil
	case ModeBot:
		return ModeBot, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrInvalidMode)
}

type Player struct {
	ID    string      `json:"name"`
	Color model.Color `json:"color"`
}

// Players is the seating of a session. Engine marks the color played by
// the engine in bot games.
type Players struct {
	White  *Player      `json:"white"`
	Black  *Player      `json:"black"`
	Engine *model.Color `json:"engine,omitempty"`
}

func (p *Players) seat(c model.Color) **Player {
	if c == model.White {
		return &p.White
	}
	return &p.Black
}

func (p *Players) find(playerID string) (*Player, bool) {
	for _, player := range []*Player{p.White, p.Black} {
		if player != nil && player.ID == playerID {
			return player, true
		}
	}
	return nil, false
}

func (p *Players) count() int {
	n := 0
	if p.White != nil {
		n++
	}
	if p.Black != nil {
		n++
	}
	return n
}

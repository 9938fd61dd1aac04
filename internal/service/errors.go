package service

import "errors"

var (
	ErrGameNotFound       = errors.New("game not found")
	ErrGameFull           = errors.New("game is full")
	ErrNotInGame          = errors.New("player is not in this game")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrIllegalMove        = errors.New("illegal move")
	ErrInvalidMode        = errors.New("invalid game mode")
	ErrAlreadyConnected   = errors.New("connection already exists")
	ErrBotUnavailable     = errors.New("no engine configured")
	ErrBotBusy            = errors.New("engine is already thinking")
	ErrNotBotTurn         = errors.New("engine is not to move")
	ErrPositionChanged    = errors.New("position changed while engine was thinking")
	ErrSuggestionRejected = errors.New("engine suggested an illegal move")
)

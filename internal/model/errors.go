package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFEN      = errors.New("invalid FEN string")
	ErrInvalidSquare   = errors.New("invalid square")
	ErrInvalidMove     = errors.New("invalid move text")
	ErrInvalidPosition = errors.New("invalid position")
	ErrNoPosition      = errors.New("no position loaded")
	ErrGameRunning     = errors.New("game is already running")
	ErrGameNotRunning  = errors.New("game is not running")
	ErrGameOver        = errors.New("game is over")

	// ErrDesync means the board observer failed to mirror a move the game
	// already applied. The game is ended and cannot continue.
	ErrDesync = errors.New("board observer out of sync")
)

// FENError reports which FEN field failed to parse.
type FENError struct {
	Field string
	Value string
	Err   error
}

func (e *FENError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FENError) Unwrap() error {
	return e.Err
}

func fenError(field, value, format string, args ...interface{}) error {
	return &FENError{
		Field: field,
		Value: value,
		Err:   fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidFEN),
	}
}

package service

import (
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

type GameManager struct {
	games          map[string]*Session
	repetitionMode string
	mu             sync.RWMutex
}

func NewGameManager(repetitionMode string) *GameManager {
	return &GameManager{
		games:          make(map[string]*Session),
		repetitionMode: repetitionMode,
	}
}

func (gm *GameManager) CreateGame(opts CreateOptions) (*Session, error) {
	gameID := uuid.New().String()
	session, err := newSession(gameID, opts, gm.repetitionMode)
	if err != nil {
		return nil, err
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.games[gameID] = session
	log.Infow("game created", "game", gameID, "mode", string(session.Mode()))
	return session, nil
}

func (gm *GameManager) GetGame(gameID string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	session, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return session, nil
}

func (gm *GameManager) RemoveGame(gameID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	delete(gm.games, gameID)
}

func (gm *GameManager) Count() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}

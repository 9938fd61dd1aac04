package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/rulechess-backend/internal/engineapi"
	"github.com/benbeisheim/rulechess-backend/internal/model"
)

type GameService struct {
	gameManager   *GameManager
	engine        engineapi.Suggester
	engineTimeout time.Duration
	bots          sync.WaitGroup
}

// NewGameService builds the service. engine may be nil, in which case bot
// games cannot be created.
func NewGameService(gameManager *GameManager, engine engineapi.Suggester, engineTimeout time.Duration) *GameService {
	return &GameService{
		gameManager:   gameManager,
		engine:        engine,
		engineTimeout: engineTimeout,
	}
}

// CreateGame starts a session and seats playerID in it. If the engine is
// to move first it starts thinking right away.
func (gs *GameService) CreateGame(playerID string, opts CreateOptions) (GameState, error) {
	if opts.Mode == ModeBot && gs.engine == nil {
		return GameState{}, ErrBotUnavailable
	}
	session, err := gs.gameManager.CreateGame(opts)
	if err != nil {
		return GameState{}, err
	}
	if _, err := session.Join(playerID); err != nil {
		return GameState{}, err
	}
	gs.triggerBot(session)
	return session.State(), nil
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.Color, error) {
	session, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.White, err
	}
	return session.Join(playerID)
}

func (gs *GameService) GetGameState(gameID string) (GameState, error) {
	session, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return GameState{}, err
	}
	return session.State(), nil
}

func (gs *GameService) LegalMoves(gameID string, from model.Position) ([]model.Move, error) {
	session, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return session.LegalMovesFrom(from), nil
}

// Board returns the current board and last move of a game.
func (gs *GameService) Board(gameID string) (model.Board, *model.Move, error) {
	session, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.Board{}, nil, err
	}
	board, last := session.Snapshot()
	return board, last, nil
}

func (gs *GameService) HandleMove(gameID string, playerID string, move model.Move) (GameState, error) {
	session, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return GameState{}, err
	}
	state, err := session.Move(playerID, move)
	if err != nil {
		return state, err
	}
	gs.triggerBot(session)
	return state, nil
}

func (gs *GameService) Resign(gameID string, playerID string) (GameState, error) {
	session, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return GameState{}, err
	}
	return session.Resign(playerID)
}

// RequestBotMove asks the engine to move now and waits for it. It is the
// retry path after a failed engine request.
func (gs *GameService) RequestBotMove(ctx context.Context, gameID string) (GameState, error) {
	session, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return GameState{}, err
	}
	if gs.engine == nil {
		return GameState{}, ErrBotUnavailable
	}
	ctx, cancel := gs.engineContext(ctx)
	defer cancel()
	return session.playBot(ctx, gs.engine)
}

func (gs *GameService) triggerBot(session *Session) {
	if gs.engine == nil || !session.botToMove() {
		return
	}
	gs.bots.Add(1)
	go func() {
		defer gs.bots.Done()
		ctx, cancel := gs.engineContext(context.Background())
		defer cancel()
		if _, err := session.playBot(ctx, gs.engine); err != nil {
			if errors.Is(err, ErrBotBusy) {
				return
			}
			log.Errorw("engine move failed", "game", session.ID, "error", err)
			session.broadcastError(err)
		}
	}()
}

func (gs *GameService) engineContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if gs.engineTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, gs.engineTimeout)
}

// Wait blocks until every engine request started by the service is done.
func (gs *GameService) Wait() {
	gs.bots.Wait()
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn Conn) error {
	session, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	log.Debugf("registering connection for player %s in game %s", playerID, gameID)
	return session.Register(playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn Conn) {
	session, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return
	}
	log.Debugf("unregistering connection for player %s in game %s", playerID, gameID)
	session.Unregister(playerID, conn)
}

func (gs *GameService) SendError(gameID string, playerID string, err error) {
	session, gerr := gs.gameManager.GetGame(gameID)
	if gerr != nil {
		return
	}
	session.SendError(playerID, err)
}

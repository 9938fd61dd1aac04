package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/rulechess-backend/internal/engineapi"
	"github.com/benbeisheim/rulechess-backend/internal/model"
	"github.com/benbeisheim/rulechess-backend/internal/ws"
)

// Conn is the part of a websocket connection a session writes to.
type Conn interface {
	WriteJSON(v interface{}) error
}

type peer struct {
	conn Conn
	mu   sync.Mutex
}

func (p *peer) send(msgs ...ws.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, msg := range msgs {
		if err := p.conn.WriteJSON(msg); err != nil {
			return err
		}
	}
	return nil
}

// The connections for a specific session
type sessionConnections struct {
	peers map[string]*peer // playerID -> connection
	mu    sync.RWMutex
}

type CreateOptions struct {
	FEN  string
	Mode Mode
	// Color is the player's color in bot games.
	Color model.Color
	// Depth is the engine search depth in bot games.
	Depth int
}

// GameState is what clients receive: the core status plus session info.
type GameState struct {
	ID      string  `json:"id"`
	Mode    Mode    `json:"mode"`
	Players Players `json:"players"`
	model.Status
}

// Session is one game with its seating, connections and engine opponent.
type Session struct {
	ID       string
	mode     Mode
	depth    int
	botColor model.Color

	mu          sync.Mutex
	game        *model.Game
	mirror      *boardMirror
	players     Players
	botThinking bool

	connections *sessionConnections

	// Broadcasts go out in the order their moves were applied: seq is
	// taken under mu, and publish waits on pubCond for its turn.
	seq       uint64
	pubMu     sync.Mutex
	pubCond   *sync.Cond
	published uint64
}

func newSession(id string, opts CreateOptions, repetitionMode string) (*Session, error) {
	tracker, err := model.NewRepetitionTracker(repetitionMode)
	if err != nil {
		return nil, err
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModeLocal
	}
	s := &Session{
		ID:     id,
		mode:   mode,
		depth:  engineapi.ClampDepth(opts.Depth),
		mirror: &boardMirror{},
		connections: &sessionConnections{
			peers: make(map[string]*peer),
		},
	}
	s.pubCond = sync.NewCond(&s.pubMu)
	if mode == ModeBot {
		s.botColor = opts.Color.Opposite()
		s.players.Engine = &s.botColor
	}

	fen := opts.FEN
	if fen == "" {
		fen = model.InitialFEN
	}
	game, err := model.NewGameFromFEN(fen,
		model.WithObserver(s.mirror),
		model.WithRepetitionTracker(tracker),
		model.WithGameOverHandler(s.onGameOver),
	)
	if err != nil {
		return nil, err
	}
	s.game = game
	if err := s.game.Start(); err != nil {
		return nil, err
	}
	s.mirror.flush()
	return s, nil
}

func (s *Session) onGameOver(result model.Result, reason string) {
	log.Infow("game over", "game", s.ID, "result", result.String(), "reason", reason)
}

func (s *Session) Mode() Mode {
	return s.mode
}

// Join seats a player. Joining again returns the seat already held.
func (s *Session) Join(playerID string) (model.Color, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if player, ok := s.players.find(playerID); ok {
		return player.Color, nil
	}

	var colors []model.Color
	switch s.mode {
	case ModeBot:
		colors = []model.Color{s.botColor.Opposite()}
	default:
		colors = []model.Color{model.White, model.Black}
	}
	for _, c := range colors {
		seat := s.players.seat(c)
		if *seat == nil {
			*seat = &Player{ID: playerID, Color: c}
			log.Infow("player joined", "game", s.ID, "player", playerID, "color", c.String())
			return c, nil
		}
	}
	return model.White, ErrGameFull
}

func (s *Session) State() GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Session) state() GameState {
	return GameState{
		ID:      s.ID,
		Mode:    s.mode,
		Players: s.players,
		Status:  s.game.Status(),
	}
}

// Snapshot returns the board and the last move, for rendering.
func (s *Session) Snapshot() (model.Board, *model.Move) {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.game.LastPly()
	if !ok {
		return s.game.Board(), nil
	}
	m := last.Move()
	return s.game.Board(), &m
}

func (s *Session) LegalMovesFrom(from model.Position) []model.Move {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.LegalMovesFrom(from)
}

// color picks the side playerID acts for. A lone local player acts for
// whichever side is to move.
func (s *Session) color(playerID string) (model.Color, error) {
	player, ok := s.players.find(playerID)
	if !ok {
		return model.White, ErrNotInGame
	}
	if s.mode == ModeLocal && s.players.count() == 1 {
		return s.game.ToMove(), nil
	}
	return player.Color, nil
}

// Move plays m for playerID and broadcasts the result.
func (s *Session) Move(playerID string, m model.Move) (GameState, error) {
	s.mu.Lock()
	color, err := s.color(playerID)
	if err != nil {
		s.mu.Unlock()
		return GameState{}, err
	}
	if color != s.game.ToMove() {
		s.mu.Unlock()
		return GameState{}, ErrNotYourTurn
	}
	state, deltas, err := s.tryMove(m)
	var seq uint64
	if err == nil || errors.Is(err, model.ErrDesync) {
		seq = s.nextSeq()
	}
	s.mu.Unlock()

	if seq != 0 {
		s.publish(seq, state, deltas)
	}
	return state, err
}

// tryMove must be called with s.mu held.
func (s *Session) tryMove(m model.Move) (GameState, []ws.BoardDelta, error) {
	if s.game.State() != model.Running {
		return s.state(), nil, model.ErrGameNotRunning
	}
	ok, err := s.game.TryMove(m)
	deltas := s.mirror.flush()
	if err != nil {
		log.Errorw("board mirror lost sync", "game", s.ID, "move", m.String(), "error", err)
		return s.state(), deltas, err
	}
	if !ok {
		return s.state(), nil, fmt.Errorf("%s: %w", m, ErrIllegalMove)
	}
	log.Debugf("game %s: %s played %s", s.ID, s.game.ToMove().Opposite(), m)
	return s.state(), deltas, nil
}

func (s *Session) Resign(playerID string) (GameState, error) {
	s.mu.Lock()
	color, err := s.color(playerID)
	if err == nil {
		err = s.game.Resign(color)
	}
	state := s.state()
	var seq uint64
	if err == nil {
		seq = s.nextSeq()
	}
	s.mu.Unlock()

	if err != nil {
		return state, err
	}
	s.publish(seq, state, nil)
	return state, nil
}

func (s *Session) botToMove() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode == ModeBot && !s.botThinking &&
		s.game.State() == model.Running && s.game.ToMove() == s.botColor
}

// playBot asks engine for a move and plays it. The session is unlocked
// while the engine thinks; the suggestion is dropped if the position
// changed meanwhile and rejected if the rules do not allow it.
func (s *Session) playBot(ctx context.Context, engine engineapi.Suggester) (GameState, error) {
	s.mu.Lock()
	switch {
	case s.mode != ModeBot:
		s.mu.Unlock()
		return GameState{}, ErrBotUnavailable
	case s.botThinking:
		s.mu.Unlock()
		return GameState{}, ErrBotBusy
	case s.game.State() != model.Running:
		s.mu.Unlock()
		return GameState{}, model.ErrGameNotRunning
	case s.game.ToMove() != s.botColor:
		s.mu.Unlock()
		return GameState{}, ErrNotBotTurn
	}
	s.botThinking = true
	fen := s.game.FEN()
	s.mu.Unlock()

	suggestion, err := engine.Suggest(ctx, engineapi.NewRequest(fen, s.depth))

	s.mu.Lock()
	s.botThinking = false
	if err != nil {
		s.mu.Unlock()
		return GameState{}, err
	}
	if s.game.FEN() != fen {
		s.mu.Unlock()
		return GameState{}, ErrPositionChanged
	}
	state, deltas, err := s.tryMove(suggestion.BestMove)
	var seq uint64
	if err == nil || errors.Is(err, model.ErrDesync) {
		seq = s.nextSeq()
	}
	s.mu.Unlock()

	if errors.Is(err, ErrIllegalMove) {
		log.Warnw("engine suggestion rejected", "game", s.ID, "fen", fen, "move", suggestion.BestMove.String())
		return state, fmt.Errorf("%s: %w", suggestion.BestMove, ErrSuggestionRejected)
	}
	if seq != 0 {
		s.publish(seq, state, deltas)
	}
	return state, err
}

// Register attaches a websocket connection and sends it the current state.
func (s *Session) Register(playerID string, conn Conn) error {
	s.connections.mu.Lock()
	if _, exists := s.connections.peers[playerID]; exists {
		s.connections.mu.Unlock()
		return ErrAlreadyConnected
	}
	p := &peer{conn: conn}
	s.connections.peers[playerID] = p
	s.connections.mu.Unlock()

	msg, err := ws.NewMessage(ws.MessageTypeGameState, s.State())
	if err != nil {
		return err
	}
	return p.send(msg)
}

// Unregister detaches conn, unless playerID has since reconnected with
// another connection.
func (s *Session) Unregister(playerID string, conn Conn) {
	s.connections.mu.Lock()
	defer s.connections.mu.Unlock()
	if p, exists := s.connections.peers[playerID]; exists && p.conn == conn {
		delete(s.connections.peers, playerID)
	}
}

// SendError reports err to one player's connection only.
func (s *Session) SendError(playerID string, err error) {
	s.connections.mu.RLock()
	p, ok := s.connections.peers[playerID]
	s.connections.mu.RUnlock()
	if !ok {
		return
	}
	msg, merr := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
	if merr != nil {
		return
	}
	if err := p.send(msg); err != nil {
		log.Warnw("failed to send error", "game", s.ID, "player", playerID, "error", err)
	}
}

func (s *Session) broadcastError(err error) {
	msg, merr := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
	if merr != nil {
		return
	}
	s.broadcast(msg)
}

// nextSeq must be called with s.mu held, and the number it returns must
// be passed to publish.
func (s *Session) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// publish sends the board deltas followed by the new state, after every
// batch with a lower sequence number has gone out.
func (s *Session) publish(seq uint64, state GameState, deltas []ws.BoardDelta) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	for s.published+1 != seq {
		s.pubCond.Wait()
	}
	defer func() {
		s.published = seq
		s.pubCond.Broadcast()
	}()

	msgs := make([]ws.Message, 0, len(deltas)+1)
	for _, d := range deltas {
		msg, err := ws.NewMessage(ws.MessageTypeBoardDelta, d)
		if err != nil {
			log.Errorw("failed to encode delta", "game", s.ID, "error", err)
			continue
		}
		msgs = append(msgs, msg)
	}
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		log.Errorw("failed to encode state", "game", s.ID, "error", err)
		return
	}
	s.broadcast(append(msgs, msg)...)
}

func (s *Session) broadcast(msgs ...ws.Message) {
	// Snapshot the peers so no lock is held while writing
	s.connections.mu.RLock()
	active := make(map[string]*peer, len(s.connections.peers))
	for playerID, p := range s.connections.peers {
		active[playerID] = p
	}
	s.connections.mu.RUnlock()

	for playerID, p := range active {
		if err := p.send(msgs...); err != nil {
			log.Warnw("failed to send to player", "game", s.ID, "player", playerID, "error", err)
			s.Unregister(playerID, p.conn)
		}
	}
}

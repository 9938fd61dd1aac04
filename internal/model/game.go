package model

type State uint8

const (
	NotStarted State = iota
	Running
	Over
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Over:
		return "over"
	}
	return "notStarted"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Result uint8

const (
	NoResult Result = iota
	WhiteWin
	BlackWin
	Draw
	Interrupted
)

func (r Result) String() string {
	switch r {
	case WhiteWin:
		return "whiteWin"
	case BlackWin:
		return "blackWin"
	case Draw:
		return "draw"
	case Interrupted:
		return "interrupted"
	}
	return ""
}

func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func winner(c Color) Result {
	if c == White {
		return WhiteWin
	}
	return BlackWin
}

const (
	ReasonCheckmate            = "checkmate"
	ReasonInsufficientMaterial = "insufficient material"
	ReasonRepetition           = "threefold repetition"
	ReasonFiftyMoves           = "fifty-move rule"
	ReasonStalemate            = "stalemate"
	ReasonResignation          = "resignation"
	ReasonDesync               = "board observer out of sync"

	// FiftyMoveLimit is counted in half-moves.
	FiftyMoveLimit = 100
)

// BoardObserver mirrors the core board, typically on a client. It is told
// about every accepted move and never consulted for legality.
type BoardObserver interface {
	InitPosition(board Board)
	MovePiece(m Move) bool
	ReplacePiece(at Position, piece Piece)
	RemovePiece(at Position)
}

type Option func(*Game)

func WithObserver(o BoardObserver) Option {
	return func(g *Game) {
		g.observer = o
	}
}

func WithRepetitionTracker(t RepetitionTracker) Option {
	return func(g *Game) {
		g.repetition = t
	}
}

func WithGameOverHandler(fn func(result Result, reason string)) Option {
	return func(g *Game) {
		g.onGameOver = fn
	}
}

// Game owns one board and its context. It is not safe for concurrent use.
type Game struct {
	board      Board
	ctx        GameContext
	loaded     bool
	state      State
	result     Result
	reason     string
	history    []Ply
	repetition RepetitionTracker
	observer   BoardObserver
	onGameOver func(Result, string)
}

func NewGame(opts ...Option) *Game {
	g := &Game{
		ctx:        NewGameContext(),
		history:    make([]Ply, 0),
		repetition: &LastMoveRepetition{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGameFromFEN creates a game with a loaded position, ready to Start.
func NewGameFromFEN(fen string, opts ...Option) (*Game, error) {
	g := NewGame(opts...)
	if err := g.LoadFEN(fen); err != nil {
		return nil, err
	}
	return g, nil
}

// LoadFEN replaces the position. Board and context are untouched on error.
func (g *Game) LoadFEN(fen string) error {
	switch g.state {
	case Running:
		return ErrGameRunning
	case Over:
		return ErrGameOver
	}
	board, ctx, err := ParseFEN(fen)
	if err != nil {
		return err
	}
	if err := board.Validate(); err != nil {
		return err
	}
	g.board = board
	g.ctx = ctx
	g.loaded = true
	g.history = make([]Ply, 0)
	g.repetition.Reset(board, ctx)
	if g.observer != nil {
		g.observer.InitPosition(board)
	}
	return nil
}

// Start moves a loaded game to Running and immediately checks whether the
// loaded position is already finished.
func (g *Game) Start() error {
	if !g.loaded {
		return ErrNoPosition
	}
	switch g.state {
	case Running:
		return ErrGameRunning
	case Over:
		return ErrGameOver
	}
	g.state = Running
	g.repetition.Reset(g.board, g.ctx)
	g.checkForGameEnd(g.ctx.ToMove.Opposite())
	return nil
}

// TryMove plays m for the side to move. An illegal move returns false with a
// nil error and leaves the game untouched. A non-nil error means the move was
// applied but the observer could not mirror it.
func (g *Game) TryMove(m Move) (bool, error) {
	if g.state != Running || !m.From.InBounds() || !m.To.InBounds() {
		return false, nil
	}
	piece := g.board.At(m.From)
	if piece.IsEmpty() || piece.Color != g.ctx.ToMove {
		return false, nil
	}
	ok, special := IsLegal(g.board, m, g.ctx)
	if !ok {
		return false, nil
	}
	return true, g.makeMove(m, special)
}

func (g *Game) makeMove(m Move, special SpecialMove) error {
	board, ply := applyMove(g.board, m, special)

	g.updateContext(ply)
	g.board = board
	g.history = append(g.history, ply)
	g.repetition.Record(ply, g.ctx.FullMoveCounter, g.board, g.ctx)

	if err := g.notifyObserver(ply); err != nil {
		g.gameOver(Interrupted, ReasonDesync)
		return err
	}
	g.checkForGameEnd(ply.Piece.Color)
	return nil
}

func (g *Game) updateContext(ply Ply) {
	mover := ply.Piece.Color
	g.ctx.ToMove = mover.Opposite()
	if g.ctx.ToMove == White {
		g.ctx.FullMoveCounter++
	}

	if ply.Piece.Type == Pawn || !ply.Captured.IsEmpty() {
		g.ctx.HalfMoveClock = 0
	} else {
		g.ctx.HalfMoveClock++
	}

	if ply.Piece.Type == King {
		g.ctx.Castling.Unset(rightsFor(mover))
	}
	if right, ok := rookCorner(ply.From); ok {
		g.ctx.Castling.Unset(right)
	}
	if right, ok := rookCorner(ply.To); ok {
		g.ctx.Castling.Unset(right)
	}

	if ply.Piece.Type == Pawn && abs(ply.To.Y-ply.From.Y) == 2 {
		g.ctx.EnPassantTarget = Position{X: ply.To.X, Y: (ply.From.Y + ply.To.Y) / 2}
	} else {
		g.ctx.EnPassantTarget = NoPosition
	}
}

func (g *Game) notifyObserver(ply Ply) error {
	if g.observer == nil {
		return nil
	}
	if ply.EnPassantCapture {
		g.observer.RemovePiece(ply.CapturedAt)
	}
	if ply.CastleRookMove != nil {
		rook := Move{From: ply.CastleRookMove.From, To: ply.CastleRookMove.To}
		if !g.observer.MovePiece(rook) {
			return ErrDesync
		}
	}
	if !g.observer.MovePiece(ply.Move()) {
		return ErrDesync
	}
	if ply.Promotion != NoPieceType {
		g.observer.ReplacePiece(ply.To, Piece{Type: ply.Promotion, Color: ply.Piece.Color})
	}
	return nil
}

// checkForGameEnd runs after mover's move. Order matters: mate wins over
// every draw rule.
func (g *Game) checkForGameEnd(mover Color) {
	opponent := mover.Opposite()
	switch {
	case KingMated(g.board, g.ctx, opponent):
		g.gameOver(winner(mover), ReasonCheckmate)
	case InsufficientMaterial(g.board):
		g.gameOver(Draw, ReasonInsufficientMaterial)
	case g.repetition.Repeated():
		g.gameOver(Draw, ReasonRepetition)
	case g.ctx.HalfMoveClock >= FiftyMoveLimit:
		g.gameOver(Draw, ReasonFiftyMoves)
	case Stalemate(g.board, g.ctx, opponent):
		g.gameOver(Draw, ReasonStalemate)
	}
}

func (g *Game) gameOver(result Result, reason string) {
	if g.state == Over {
		return
	}
	g.state = Over
	g.result = result
	g.reason = reason
	if g.onGameOver != nil {
		g.onGameOver(result, reason)
	}
}

// ForceGameOver ends the game as Interrupted without looking at the board.
func (g *Game) ForceGameOver(reason string) {
	g.gameOver(Interrupted, reason)
}

// Resign ends a running game as a win for the other color.
func (g *Game) Resign(c Color) error {
	if g.state != Running {
		return ErrGameNotRunning
	}
	g.gameOver(winner(c.Opposite()), ReasonResignation)
	return nil
}

func (g *Game) Board() Board {
	return g.board
}

func (g *Game) Context() GameContext {
	return g.ctx
}

func (g *Game) FEN() string {
	return BuildFEN(g.board, g.ctx)
}

func (g *Game) State() State {
	return g.state
}

func (g *Game) Result() (Result, string) {
	return g.result, g.reason
}

func (g *Game) ToMove() Color {
	return g.ctx.ToMove
}

func (g *Game) InCheck() bool {
	return KingChecked(g.board, g.ctx, g.ctx.ToMove)
}

func (g *Game) History() []Ply {
	history := make([]Ply, len(g.history))
	copy(history, g.history)
	return history
}

// LastPly returns the most recent move, if any.
func (g *Game) LastPly() (Ply, bool) {
	if len(g.history) == 0 {
		return Ply{}, false
	}
	return g.history[len(g.history)-1], true
}

// LegalMovesFrom lists the legal destinations of the piece on from, empty
// when it is not that piece's turn or the game is not running.
func (g *Game) LegalMovesFrom(from Position) []Move {
	if g.state != Running || g.board.At(from).Color != g.ctx.ToMove {
		return []Move{}
	}
	return LegalMovesFrom(g.board, g.ctx, from)
}

// MaterialDifference is white material minus black material.
func (g *Game) MaterialDifference() int {
	return Material(g.board, White) - Material(g.board, Black)
}

type Status struct {
	FEN                string `json:"fen"`
	Board              Board  `json:"board"`
	ToMove             Color  `json:"toMove"`
	State              State  `json:"state"`
	Result             Result `json:"result"`
	Reason             string `json:"reason"`
	IsCheck            bool   `json:"isCheck"`
	MaterialDifference int    `json:"materialDifference"`
	LastMove           *Move  `json:"lastMove"`
	MoveHistory        []Ply  `json:"moveHistory"`
}

func (g *Game) Status() Status {
	status := Status{
		FEN:                g.FEN(),
		Board:              g.board,
		ToMove:             g.ctx.ToMove,
		State:              g.state,
		Result:             g.result,
		Reason:             g.reason,
		IsCheck:            g.InCheck(),
		MaterialDifference: g.MaterialDifference(),
		MoveHistory:        g.History(),
	}
	if last, ok := g.LastPly(); ok {
		m := last.Move()
		status.LastMove = &m
	}
	return status
}

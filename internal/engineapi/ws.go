package engineapi

import (
	"context"
	"fmt"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/rulechess-backend/internal/model"
)

const DefaultWSEndpoint = "wss://chess-api.com/v1"

// WSClient talks to a chess-api.com style websocket. The engine streams
// intermediate "move" and "info" messages and finishes with "bestmove".
type WSClient struct {
	endpoint string
	timeout  time.Duration
	dialer   *websocket.Dialer
}

func NewWSClient(endpoint string, timeout time.Duration) *WSClient {
	if endpoint == "" {
		endpoint = DefaultWSEndpoint
	}
	return &WSClient{
		endpoint: endpoint,
		timeout:  timeout,
		dialer: &websocket.Dialer{
			HandshakeTimeout: timeout,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
	}
}

type wsRequest struct {
	FEN             string `json:"fen"`
	Variants        int    `json:"variants"`
	Depth           int    `json:"depth"`
	MaxThinkingTime int    `json:"maxThinkingTime"`
	SearchMoves     string `json:"searchmoves,omitempty"`
}

type wsResponse struct {
	Type            string   `json:"type"`
	Text            string   `json:"text"`
	Move            string   `json:"move"`
	From            string   `json:"from"`
	To              string   `json:"to"`
	Eval            *float64 `json:"eval"`
	Depth           int      `json:"depth"`
	Mate            *int     `json:"mate"`
	ContinuationArr []string `json:"continuationArr"`
}

func (c *WSClient) Suggest(ctx context.Context, req Request) (Suggestion, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return Suggestion{}, fmt.Errorf("%w: dial %s: %w", ErrEngine, c.endpoint, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}

	out := wsRequest{
		FEN:             req.FEN,
		Variants:        req.Variants,
		Depth:           ClampDepth(req.Depth),
		MaxThinkingTime: req.MaxThinkingTime,
		SearchMoves:     req.SearchMoves,
	}
	if out.Variants <= 0 {
		out.Variants = defaultVariants
	}
	if out.MaxThinkingTime <= 0 {
		out.MaxThinkingTime = defaultMaxThinkingTime
	}
	if err := conn.WriteJSON(out); err != nil {
		return Suggestion{}, fmt.Errorf("%w: %w", ErrEngine, err)
	}

	for {
		var msg wsResponse
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			return Suggestion{}, fmt.Errorf("%w: %w", ErrEngine, err)
		}
		switch msg.Type {
		case "bestmove":
			return msg.suggestion()
		case "error":
			return Suggestion{}, engineError("rejected: %s", msg.Text)
		default:
			log.Debugf("engine %s: depth %d move %s", msg.Type, msg.Depth, msg.Move)
		}
	}
}

func (r wsResponse) suggestion() (Suggestion, error) {
	text := r.Move
	if text == "" {
		text = r.From + r.To
	}
	best, err := model.ParseMove(text)
	if err != nil {
		return Suggestion{}, fmt.Errorf("%w: %w", ErrEngine, err)
	}
	s := Suggestion{
		BestMove:     best,
		Evaluation:   r.Eval,
		Mate:         r.Mate,
		Depth:        r.Depth,
		Continuation: r.ContinuationArr,
	}
	if len(r.ContinuationArr) > 1 {
		if ponder, err := model.ParseMove(r.ContinuationArr[1]); err == nil {
			s.Ponder = &ponder
		}
	}
	return s, nil
}

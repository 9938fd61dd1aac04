package engineapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

const DefaultHTTPEndpoint = "https://stockfish.online/api/s/v2.php"

// HTTPClient queries a stockfish.online style endpoint:
// GET ?fen=...&depth=... answered with a single JSON document.
type HTTPClient struct {
	endpoint string
	timeout  time.Duration
}

func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	if endpoint == "" {
		endpoint = DefaultHTTPEndpoint
	}
	return &HTTPClient{endpoint: endpoint, timeout: timeout}
}

type httpResponse struct {
	Success      bool     `json:"success"`
	Error        string   `json:"error"`
	Evaluation   *float64 `json:"evaluation"`
	Mate         *int     `json:"mate"`
	BestMove     string   `json:"bestmove"`
	Continuation string   `json:"continuation"`
}

type httpResult struct {
	code int
	errs []error
}

func (c *HTTPClient) Suggest(ctx context.Context, req Request) (Suggestion, error) {
	depth := ClampDepth(req.Depth)
	query := url.Values{}
	query.Set("fen", req.FEN)
	query.Set("depth", strconv.Itoa(depth))

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); timeout == 0 || left < timeout {
			timeout = left
		}
	}
	if err := ctx.Err(); err != nil {
		return Suggestion{}, fmt.Errorf("%w: %w", ErrEngine, err)
	}

	agent := fiber.Get(c.endpoint).QueryString(query.Encode())
	if timeout > 0 {
		agent.Timeout(timeout)
	}

	var resp httpResponse
	done := make(chan httpResult, 1)
	go func() {
		code, _, errs := agent.Struct(&resp)
		done <- httpResult{code: code, errs: errs}
	}()

	var res httpResult
	select {
	case <-ctx.Done():
		return Suggestion{}, fmt.Errorf("%w: %w", ErrEngine, ctx.Err())
	case res = <-done:
	}

	if len(res.errs) > 0 {
		log.Warnw("engine request failed", "endpoint", c.endpoint, "errors", res.errs)
		return Suggestion{}, fmt.Errorf("%w: %w", ErrEngine, res.errs[0])
	}
	if res.code != fiber.StatusOK {
		return Suggestion{}, engineError("status %d", res.code)
	}
	if !resp.Success {
		return Suggestion{}, engineError("rejected: %s", resp.Error)
	}

	best, ponder, err := parseBestMove(resp.BestMove)
	if err != nil {
		return Suggestion{}, err
	}
	log.Debugf("engine suggested %s for %s", best, req.FEN)
	return Suggestion{
		BestMove:     best,
		Ponder:       ponder,
		Evaluation:   resp.Evaluation,
		Mate:         resp.Mate,
		Depth:        depth,
		Continuation: strings.Fields(resp.Continuation),
	}, nil
}

package controller

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/rulechess-backend/internal/engineapi"
	"github.com/benbeisheim/rulechess-backend/internal/middleware"
	"github.com/benbeisheim/rulechess-backend/internal/model"
	"github.com/benbeisheim/rulechess-backend/internal/render"
	"github.com/benbeisheim/rulechess-backend/internal/service"
)

type GameController struct {
	gameService  *service.GameService
	defaultDepth int
}

func NewGameController(gameService *service.GameService, defaultDepth int) *GameController {
	return &GameController{gameService: gameService, defaultDepth: defaultDepth}
}

type createGameRequest struct {
	FEN   string `json:"fen"`
	Mode  string `json:"mode"`
	Color string `json:"color"`
	Depth int    `json:"depth"`
}

type moveRequest struct {
	Move        string `json:"move"`
	Orientation string `json:"orientation"`
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	mode, err := service.ParseMode(req.Mode)
	if err != nil {
		return fail(c, err)
	}
	opts := service.CreateOptions{FEN: req.FEN, Mode: mode, Depth: req.Depth}
	if opts.Depth == 0 {
		opts.Depth = gc.defaultDepth
	}
	if req.Color != "" {
		color, err := model.ParseColor(req.Color)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		opts.Color = color
	}

	state, err := gc.gameService.CreateGame(middleware.PlayerID(c), opts)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Game created",
		"game_id": state.ID,
		"game":    state,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := middleware.PlayerID(c)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(gameState)
}

// LegalMoves lists destinations for the piece on ?from=, in the caller's
// orientation.
func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	orientation, err := model.ParseOrientation(c.Query("orientation"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	from, err := model.ParsePosition(c.Query("from"))
	if err != nil {
		return fail(c, err)
	}
	from = orientation.AlignPosition(from)

	moves, err := gc.gameService.LegalMoves(c.Params("gameId"), from)
	if err != nil {
		return fail(c, err)
	}
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, orientation.AlignMove(m).String())
	}
	return c.JSON(fiber.Map{
		"from":  orientation.AlignPosition(from).String(),
		"moves": out,
	})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	m, err := parseMove(req.Move, req.Orientation)
	if err != nil {
		return fail(c, err)
	}

	state, err := gc.gameService.HandleMove(c.Params("gameId"), middleware.PlayerID(c), m)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Resign(c *fiber.Ctx) error {
	state, err := gc.gameService.Resign(c.Params("gameId"), middleware.PlayerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}

// BotMove makes the engine move now, for retrying after a failed request.
func (gc *GameController) BotMove(c *fiber.Ctx) error {
	state, err := gc.gameService.RequestBotMove(c.UserContext(), c.Params("gameId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) BoardSVG(c *fiber.Ctx) error {
	orientation, err := model.ParseOrientation(c.Query("orientation"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	board, last, err := gc.gameService.Board(c.Params("gameId"))
	if err != nil {
		return fail(c, err)
	}

	opts := render.Options{Orientation: orientation}
	if last != nil {
		opts.Highlight = []model.Position{last.From, last.To}
	}
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	render.Board(c, board, opts)
	return nil
}

// parseMove reads move text as seen by a client with the given orientation.
func parseMove(text, orientation string) (model.Move, error) {
	m, err := model.ParseMove(text)
	if err != nil {
		return model.Move{}, err
	}
	o, err := model.ParseOrientation(orientation)
	if err != nil {
		return model.Move{}, fmt.Errorf("%w: %w", model.ErrInvalidMove, err)
	}
	return o.AlignMove(m), nil
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNotInGame):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrGameFull),
		errors.Is(err, service.ErrNotYourTurn),
		errors.Is(err, service.ErrBotBusy),
		errors.Is(err, service.ErrNotBotTurn),
		errors.Is(err, service.ErrPositionChanged),
		errors.Is(err, service.ErrAlreadyConnected),
		errors.Is(err, model.ErrGameNotRunning):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrIllegalMove),
		errors.Is(err, service.ErrSuggestionRejected):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, model.ErrInvalidFEN),
		errors.Is(err, model.ErrInvalidPosition),
		errors.Is(err, model.ErrInvalidMove),
		errors.Is(err, model.ErrInvalidSquare),
		errors.Is(err, service.ErrInvalidMode):
		return fiber.StatusBadRequest
	case errors.Is(err, engineapi.ErrEngine):
		return fiber.StatusBadGateway
	case errors.Is(err, service.ErrBotUnavailable):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		log.Errorw("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

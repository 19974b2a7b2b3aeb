package http

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"chessduel/internal/server/core"
	"chessduel/internal/server/processor"
	"chessduel/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler handles HTTP requests and routes them to the processor
type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service) *HTTPHandler {
	return &HTTPHandler{proc: proc, svc: svc}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, devMode bool) *fiber.App {
	h := NewHTTPHandler(proc, svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second, // long-poll waits up to 25s
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")

	// Identity issuance: 10 req/min per IP
	api.Post("/players", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: "10 player ids per minute allowed",
			})
		},
	}), h.CreatePlayer)

	// Game routes with standard rate limiting
	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	games := api.Group("/games")
	games.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	// Content-Type validation for POST requests
	games.Use(contentTypeValidator)

	// Request body parsing and validation
	games.Use(validationMiddleware)

	// Caller identity from cookie or bearer token
	games.Use(Identity(svc.ValidateToken))

	games.Post("/", h.CreateGame)
	games.Post("/:gameId/players", h.JoinGame)
	games.Get("/:gameId", h.GetGame)
	games.Delete("/:gameId", h.DeleteGame)
	games.Post("/:gameId/moves", h.MakeMove)
	games.Get("/:gameId/moves", h.LegalMoves)
	games.Get("/:gameId/board", h.GetBoard)

	return app
}

// contentTypeValidator ensures POST requests with a body carry application/json
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost && len(c.Body()) > 0 {
		contentType := c.Get("Content-Type")
		if !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrGameNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// errorStatus maps processor error codes to HTTP status
func errorStatus(code string) int {
	switch code {
	case core.ErrGameNotFound:
		return fiber.StatusNotFound
	case core.ErrUnauthorized:
		return fiber.StatusUnauthorized
	case core.ErrNotParticipant:
		return fiber.StatusForbidden
	case core.ErrSeatTaken, core.ErrGameOver:
		return fiber.StatusConflict
	case core.ErrResourceLimit:
		return fiber.StatusServiceUnavailable
	case core.ErrInternalError:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

func (h *HTTPHandler) reply(c *fiber.Ctx, resp processor.ProcessorResponse, okStatus int) error {
	if !resp.Success {
		return c.Status(errorStatus(resp.Error.Code)).JSON(resp.Error)
	}
	if resp.Data == nil {
		return c.SendStatus(okStatus)
	}
	return c.Status(okStatus).JSON(resp.Data)
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"time":      time.Now().Unix(),
		"storage":   h.svc.GetStorageHealth(),
		"snapshots": h.svc.GetSnapshotHealth(),
		"games":     h.svc.GameCount(),
	})
}

// CreatePlayer issues an identity and stores its token in the playerid cookie
func (h *HTTPHandler) CreatePlayer(c *fiber.Ctx) error {
	resp := h.proc.Execute(processor.NewCreatePlayerCommand())
	if !resp.Success {
		return c.Status(errorStatus(resp.Error.Code)).JSON(resp.Error)
	}

	player := resp.Data.(core.PlayerResponse)
	c.Cookie(&fiber.Cookie{
		Name:     PlayerCookie,
		Value:    player.Token,
		Path:     "/",
		Expires:  player.ExpiresAt,
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Status(fiber.StatusCreated).JSON(player)
}

// CreateGame creates a game, seating the caller when a color is given
func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, err := validatedBody[core.CreateGameRequest](c)
	if err != nil {
		return err
	}

	cmd := processor.NewCreateGameCommand(playerID(c), req)
	return h.reply(c, h.proc.Execute(cmd), fiber.StatusCreated)
}

// JoinGame takes a seat in an existing game
func (h *HTTPHandler) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	req, err := validatedBody[core.JoinGameRequest](c)
	if err != nil {
		return err
	}

	cmd := processor.NewJoinGameCommand(gameID, playerID(c), req)
	return h.reply(c, h.proc.Execute(cmd), fiber.StatusOK)
}

// GetGame retrieves current game state, optionally long-polling until the
// move count differs from the caller's
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}
	viewer := playerID(c)

	if c.Query("wait", "false") != "true" {
		return h.reply(c, h.proc.Execute(processor.NewGetGameCommand(gameID, viewer)), fiber.StatusOK)
	}

	moveCount, err := strconv.Atoi(c.Query("moveCount", "-1"))
	if err != nil {
		moveCount = -1
	}

	// Register before reading the move count so a commit in between still
	// wakes this waiter
	ctx, cancel := context.WithCancel(c.Context())
	defer cancel()
	notify := h.svc.RegisterWait(ctx, gameID, moveCount)

	g, err := h.svc.GetGame(gameID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "game not found",
			Code:  core.ErrGameNotFound,
		})
	}

	// Already stale: answer immediately
	if moveCount != g.MoveCount() {
		return h.reply(c, h.proc.Execute(processor.NewGetGameCommand(gameID, viewer)), fiber.StatusOK)
	}

	select {
	case <-notify:
		// Changed, timed out or deleted; the fresh read tells which
		return h.reply(c, h.proc.Execute(processor.NewGetGameCommand(gameID, viewer)), fiber.StatusOK)
	case <-ctx.Done():
		return nil
	}
}

// MakeMove submits a move. Rule rejections come back as 200 with
// moveResult.success=false.
func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	req, err := validatedBody[core.MoveRequest](c)
	if err != nil {
		return err
	}

	cmd := processor.NewMakeMoveCommand(gameID, playerID(c), req)
	return h.reply(c, h.proc.Execute(cmd), fiber.StatusOK)
}

// LegalMoves lists legal destinations of the piece on ?from=
func (h *HTTPHandler) LegalMoves(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	cmd := processor.NewLegalMovesCommand(gameID, c.Query("from"))
	return h.reply(c, h.proc.Execute(cmd), fiber.StatusOK)
}

// DeleteGame removes a game
func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	cmd := processor.NewDeleteGameCommand(gameID, playerID(c))
	return h.reply(c, h.proc.Execute(cmd), fiber.StatusNoContent)
}

// GetBoard returns FEN and ASCII representation of the board
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	return h.reply(c, h.proc.Execute(processor.NewGetBoardCommand(gameID)), fiber.StatusOK)
}

func invalidGameID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   "invalid game ID format",
		Code:    core.ErrInvalidRequest,
		Details: "game ID must be a valid UUID",
	})
}

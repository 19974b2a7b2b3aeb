package processor

import (
	"errors"
	"fmt"
	"time"

	"chessduel/internal/server/core"
	"chessduel/internal/server/game"
	"chessduel/internal/server/rules"
	"chessduel/internal/server/service"

	"go.uber.org/zap"
)

// Processor executes commands against the service. Every command that
// changes a game runs on that game's queue shard.
type Processor struct {
	svc   *service.Service
	queue *GameQueue
	log   *zap.Logger
}

// New creates a processor with a game queue of the given width
func New(svc *service.Service, workers int, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		svc:   svc,
		queue: NewGameQueue(workers, log),
		log:   log.Named("processor"),
	}
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreatePlayer:
		return p.handleCreatePlayer(cmd)
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdJoinGame:
		return p.handleJoinGame(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdLegalMoves:
		return p.handleLegalMoves(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// handleCreatePlayer issues a new anonymous identity
func (p *Processor) handleCreatePlayer(cmd Command) ProcessorResponse {
	id, err := p.svc.IssuePlayer()
	if err != nil {
		p.log.Error("issue player failed", zap.Error(err))
		return p.errorResponse("failed to issue player id", core.ErrInternalError)
	}
	return ProcessorResponse{
		Success: true,
		Data: core.PlayerResponse{
			PlayerID:  id.PlayerID,
			Token:     id.Token,
			ExpiresAt: id.ExpiresAt,
		},
	}
}

// handleCreateGame creates a game and optionally seats the caller
func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	var color rules.Color
	if args.Color != "" {
		if cmd.PlayerID == "" {
			return p.errorResponse("a player id is required to take a seat", core.ErrUnauthorized)
		}
		c, ok := rules.ParseColor(args.Color)
		if !ok {
			return p.errorResponse(fmt.Sprintf("invalid color %q", args.Color), core.ErrInvalidRequest)
		}
		color = c
	}

	gameID := p.svc.GenerateGameID()
	g, err := p.svc.CreateGame(gameID)
	if err != nil {
		return p.errorResponse(fmt.Sprintf("failed to create game: %v", err), core.ErrInternalError)
	}

	if color != rules.NoColor {
		var joinErr error
		if err := p.queue.Do(gameID, func() {
			g, joinErr = p.svc.JoinGame(gameID, cmd.PlayerID, color)
		}); err != nil {
			return p.queueError(err)
		}
		if joinErr != nil {
			return p.joinError(joinErr)
		}
	}

	return ProcessorResponse{
		Success: true,
		Data:    g.Response(cmd.PlayerID),
	}
}

// handleJoinGame seats the caller at the requested color
func (p *Processor) handleJoinGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.JoinGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	if cmd.PlayerID == "" {
		return p.errorResponse("a player id is required to take a seat", core.ErrUnauthorized)
	}
	color, ok := rules.ParseColor(args.Color)
	if !ok {
		return p.errorResponse(fmt.Sprintf("invalid color %q", args.Color), core.ErrInvalidRequest)
	}

	var g *game.Game
	var joinErr error
	if err := p.queue.Do(cmd.GameID, func() {
		g, joinErr = p.svc.JoinGame(cmd.GameID, cmd.PlayerID, color)
	}); err != nil {
		return p.queueError(err)
	}
	if joinErr != nil {
		return p.joinError(joinErr)
	}

	return ProcessorResponse{
		Success: true,
		Data:    g.Response(cmd.PlayerID),
	}
}

// handleGetGame returns the caller's view of the game
func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Data:    g.Response(cmd.PlayerID),
	}
}

// handleMakeMove runs a move through the rules engine. A rule rejection is
// a successful command whose moveResult carries the reason.
func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	move, err := args.ToMove()
	if err != nil {
		return ProcessorResponse{
			Success: false,
			Error: &core.ErrorResponse{
				Error:   "invalid move format",
				Code:    core.ErrInvalidMove,
				Details: err.Error(),
			},
		}
	}

	var resp ProcessorResponse
	if err := p.queue.Do(cmd.GameID, func() {
		resp = p.applyMove(cmd, move)
	}); err != nil {
		return p.queueError(err)
	}
	return resp
}

// applyMove runs on the game's shard
func (p *Processor) applyMove(cmd Command, move rules.Move) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}
	if state := g.State(); state.IsOver() {
		return p.errorResponse(fmt.Sprintf("game is over: %s", state), core.ErrGameOver)
	}

	move = kingStepAsCastle(g.Current(), move)

	_, moveErr := p.svc.ApplyMove(cmd.GameID, cmd.PlayerID, move)
	if errors.Is(moveErr, service.ErrGameNotFound) {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}
	if moveErr != nil {
		p.log.Debug("move rejected",
			zap.String("gameId", cmd.GameID),
			zap.String("playerId", cmd.PlayerID),
			zap.Stringer("move", move),
			zap.Error(moveErr))
	}

	return ProcessorResponse{
		Success: true,
		Data: core.MoveResponse{
			MoveResult: rules.Result(moveErr),
			GameStatus: g.Response(cmd.PlayerID),
		},
	}
}

// kingStepAsCastle turns a two-file king step from its home square into the
// matching castle, so board UIs can castle by dragging the king
func kingStepAsCastle(gs rules.GameState, m rules.Move) rules.Move {
	st, ok := m.(rules.Step)
	if !ok {
		return m
	}
	pc := gs.Board.At(st.From)
	if pc.Kind != rules.King || st.From.Rank != st.To.Rank || st.From.File != 4 {
		return m
	}
	home := 7
	if pc.Color == rules.Black {
		home = 0
	}
	if st.From.Rank != home {
		return m
	}
	switch st.To.File {
	case 6:
		return rules.Castle{Side: rules.KingSide}
	case 2:
		return rules.Castle{Side: rules.QueenSide}
	}
	return m
}

// handleLegalMoves lists legal destinations for the piece on a square
func (p *Processor) handleLegalMoves(cmd Command) ProcessorResponse {
	square, _ := cmd.Args.(string)
	from, err := rules.ParsePos(square)
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInvalidSquare)
	}

	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	resp := core.DestinationsResponse{
		From:         from.String(),
		Destinations: []rules.Pos{},
		Squares:      []string{},
	}
	if !g.State().IsOver() {
		for _, d := range g.Current().LegalDestinations(from) {
			resp.Destinations = append(resp.Destinations, d)
			resp.Squares = append(resp.Squares, d.String())
		}
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

// handleGetBoard returns board visualization
func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	gs := g.Current()
	return ProcessorResponse{
		Success: true,
		Data: core.BoardResponse{
			FEN:   gs.FEN(),
			Board: gs.Board.ASCII(),
		},
	}
}

// handleDeleteGame removes a game. Once a seat is taken only seated
// players may delete it.
func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	var resp ProcessorResponse
	if err := p.queue.Do(cmd.GameID, func() {
		g, err := p.svc.GetGame(cmd.GameID)
		if err != nil {
			resp = p.errorResponse("game not found", core.ErrGameNotFound)
			return
		}
		gs := g.Current()
		if gs.WhitePlayer != "" || gs.BlackPlayer != "" {
			if _, seated := gs.ColorOf(cmd.PlayerID); !seated {
				resp = p.errorResponse("only seated players may delete this game", core.ErrNotParticipant)
				return
			}
		}
		if err := p.svc.DeleteGame(cmd.GameID); err != nil {
			resp = p.errorResponse("game not found", core.ErrGameNotFound)
			return
		}
		resp = ProcessorResponse{Success: true}
	}); err != nil {
		return p.queueError(err)
	}
	return resp
}

func (p *Processor) joinError(err error) ProcessorResponse {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return p.errorResponse("game not found", core.ErrGameNotFound)
	case errors.Is(err, rules.ErrSeatTaken):
		return p.errorResponse(err.Error(), core.ErrSeatTaken)
	default:
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	}
}

func (p *Processor) queueError(err error) ProcessorResponse {
	if errors.Is(err, ErrQueueFull) {
		return p.errorResponse("server busy, retry", core.ErrResourceLimit)
	}
	return p.errorResponse(err.Error(), core.ErrInternalError)
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

// Close stops the game queue
func (p *Processor) Close() error {
	return p.queue.Shutdown(5 * time.Second)
}

package processor

import (
	"chessduel/internal/server/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdCreatePlayer CommandType = iota
	CmdCreateGame
	CmdJoinGame
	CmdGetGame
	CmdMakeMove
	CmdLegalMoves
	CmdGetBoard
	CmdDeleteGame
)

// Command is a unified structure for all processor operations
type Command struct {
	Type     CommandType
	PlayerID string // Caller identity, empty when anonymous
	GameID   string // For game-specific commands
	Args     any    // Command-specific arguments
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewCreatePlayerCommand() Command {
	return Command{Type: CmdCreatePlayer}
}

func NewCreateGameCommand(playerID string, req core.CreateGameRequest) Command {
	return Command{
		Type:     CmdCreateGame,
		PlayerID: playerID,
		Args:     req,
	}
}

func NewJoinGameCommand(gameID, playerID string, req core.JoinGameRequest) Command {
	return Command{
		Type:     CmdJoinGame,
		PlayerID: playerID,
		GameID:   gameID,
		Args:     req,
	}
}

func NewGetGameCommand(gameID, playerID string) Command {
	return Command{
		Type:     CmdGetGame,
		PlayerID: playerID,
		GameID:   gameID,
	}
}

func NewMakeMoveCommand(gameID, playerID string, req core.MoveRequest) Command {
	return Command{
		Type:     CmdMakeMove,
		PlayerID: playerID,
		GameID:   gameID,
		Args:     req,
	}
}

// NewLegalMovesCommand asks for the legal destinations from square (e.g. "e2")
func NewLegalMovesCommand(gameID, square string) Command {
	return Command{
		Type:   CmdLegalMoves,
		GameID: gameID,
		Args:   square,
	}
}

func NewGetBoardCommand(gameID string) Command {
	return Command{
		Type:   CmdGetBoard,
		GameID: gameID,
	}
}

func NewDeleteGameCommand(gameID, playerID string) Command {
	return Command{
		Type:     CmdDeleteGame,
		PlayerID: playerID,
		GameID:   gameID,
	}
}

package session

import (
	"io"

	"chessduel/internal/client/api"
	"chessduel/internal/server/core"
)

// Session is the REPL's state between commands
type Session struct {
	APIBaseURL  string
	Client      *api.Client
	Out         io.Writer
	Verbose     bool
	PlayerID    string
	CurrentGame string
	GameState   *core.GameResponse
}

func New(baseURL string, out io.Writer) *Session {
	return &Session{
		APIBaseURL: baseURL,
		Client:     api.New(baseURL, out),
		Out:        out,
	}
}

// SetGame makes g the current game
func (s *Session) SetGame(g *core.GameResponse) {
	s.CurrentGame = g.GameID
	s.GameState = g
}

// ClearGame forgets the current game
func (s *Session) ClearGame() {
	s.CurrentGame = ""
	s.GameState = nil
}

// MoveCount is the last seen move count, -1 when unknown
func (s *Session) MoveCount() int {
	if s.GameState == nil {
		return -1
	}
	return s.GameState.MoveCount
}

// Color is the seat held in the current game, "" when spectating
func (s *Session) Color() string {
	if s.GameState == nil {
		return ""
	}
	return s.GameState.MyColor
}

package commands

import (
	"fmt"
	"strings"

	"chessduel/internal/client/api"
	"chessduel/internal/client/display"
	"chessduel/internal/client/session"
	"chessduel/internal/server/core"
)

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "player",
		ShortName:   "i",
		Description: "Get a new player identity",
		Usage:       "player",
		Handler:     playerHandler,
	})

	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Create a game, optionally taking a seat",
		Usage:       "new [W|B]",
		Handler:     newGameHandler,
	})

	r.Register(&Command{
		Name:        "join",
		ShortName:   "j",
		Description: "Take a seat in a game, or watch it without a color",
		Usage:       "join <gameId> [W|B]",
		Handler:     joinGameHandler,
	})

	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Make a move",
		Usage:       "move <e2e4|e7e8q|O-O|O-O-O>",
		Handler:     moveHandler,
	})

	r.Register(&Command{
		Name:        "hint",
		ShortName:   "t",
		Description: "Show legal destinations of a piece",
		Usage:       "hint <square>",
		Handler:     hintHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "h",
		Description: "Show board and game state",
		Usage:       "show",
		Handler:     showBoardHandler,
	})

	r.Register(&Command{
		Name:        "state",
		ShortName:   "s",
		Description: "Show raw game JSON",
		Usage:       "state",
		Handler:     gameStateHandler,
	})

	r.Register(&Command{
		Name:        "poll",
		ShortName:   "p",
		Description: "Wait for the next change to the game",
		Usage:       "poll",
		Handler:     pollHandler,
	})

	r.Register(&Command{
		Name:        "delete",
		ShortName:   "d",
		Description: "Delete a game",
		Usage:       "delete [gameId]",
		Handler:     deleteGameHandler,
	})
}

func playerHandler(s *session.Session, args []string) error {
	resp, err := s.Client.CreatePlayer()
	if err != nil {
		return err
	}
	s.PlayerID = resp.PlayerID
	fmt.Fprintf(s.Out, "%sPlayer: %s%s\n", display.Green, resp.PlayerID, display.Reset)
	fmt.Fprintf(s.Out, "Token valid until %s\n", resp.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

// ensurePlayer issues an identity on first use of a seat
func ensurePlayer(s *session.Session) error {
	if s.PlayerID != "" {
		return nil
	}
	return playerHandler(s, nil)
}

func parseColor(arg string) (string, error) {
	switch strings.ToUpper(arg) {
	case "W", "WHITE":
		return "W", nil
	case "B", "BLACK":
		return "B", nil
	}
	return "", fmt.Errorf("color must be W or B, got %q", arg)
}

func requireGame(s *session.Session) error {
	if s.CurrentGame == "" {
		return fmt.Errorf("no current game (use 'new' or 'join')")
	}
	return nil
}

func newGameHandler(s *session.Session, args []string) error {
	color := ""
	if len(args) > 0 {
		c, err := parseColor(args[0])
		if err != nil {
			return err
		}
		color = c
		if err := ensurePlayer(s); err != nil {
			return err
		}
	}

	resp, err := s.Client.CreateGame(color)
	if err != nil {
		return err
	}
	s.SetGame(resp)

	fmt.Fprintf(s.Out, "%sGame created: %s%s\n", display.Green, resp.GameID, display.Reset)
	printStatus(s, resp)
	return nil
}

func joinGameHandler(s *session.Session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: join <gameId> [W|B]")
	}
	gameID := args[0]

	var resp *core.GameResponse
	var err error
	if len(args) > 1 {
		color, cerr := parseColor(args[1])
		if cerr != nil {
			return cerr
		}
		if err := ensurePlayer(s); err != nil {
			return err
		}
		resp, err = s.Client.JoinGame(gameID, color)
	} else {
		resp, err = s.Client.GetGame(gameID)
	}
	if err != nil {
		return err
	}
	s.SetGame(resp)

	fmt.Fprintf(s.Out, "%sCurrent game set to: %s%s\n", display.Cyan, resp.GameID, display.Reset)
	printStatus(s, resp)
	return nil
}

func moveHandler(s *session.Session, args []string) error {
	if err := requireGame(s); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: move <e2e4|e7e8q|O-O|O-O-O>")
	}

	resp, err := s.Client.MakeMove(s.CurrentGame, args[0])
	if err != nil {
		return err
	}
	s.SetGame(&resp.GameStatus)

	if !resp.MoveResult.Success {
		fmt.Fprintf(s.Out, "%sRejected: %s%s\n", display.Red, resp.MoveResult.Message, display.Reset)
		return nil
	}

	display.RenderGrid(s.Out, resp.GameStatus.Board, lastMoveSquares(&resp.GameStatus))
	printStatus(s, &resp.GameStatus)
	return nil
}

func hintHandler(s *session.Session, args []string) error {
	if err := requireGame(s); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: hint <square>")
	}

	resp, err := s.Client.LegalMoves(s.CurrentGame, strings.ToLower(args[0]))
	if err != nil {
		return err
	}
	if len(resp.Squares) == 0 {
		fmt.Fprintf(s.Out, "%sNo legal moves from %s%s\n", display.Yellow, resp.From, display.Reset)
		return nil
	}

	if s.GameState != nil {
		display.RenderGrid(s.Out, s.GameState.Board, resp.Squares)
	}
	fmt.Fprintf(s.Out, "%s%s:%s %s\n", display.Cyan, resp.From, display.Reset, strings.Join(resp.Squares, " "))
	return nil
}

func showBoardHandler(s *session.Session, args []string) error {
	if err := requireGame(s); err != nil {
		return err
	}

	board, err := s.Client.GetBoard(s.CurrentGame)
	if err != nil {
		return err
	}
	game, err := s.Client.GetGame(s.CurrentGame)
	if err != nil {
		return err
	}
	s.SetGame(game)

	fmt.Fprintln(s.Out)
	display.RenderBoard(s.Out, board.Board)
	fmt.Fprintf(s.Out, "\n%sFEN:%s %s\n", display.Cyan, display.Reset, board.FEN)
	printStatus(s, game)
	if len(game.Moves) > 0 {
		fmt.Fprintf(s.Out, "%sMoves:%s %s\n", display.Cyan, display.Reset, formatMoves(game.Moves))
	}
	return nil
}

func gameStateHandler(s *session.Session, args []string) error {
	if err := requireGame(s); err != nil {
		return err
	}
	resp, err := s.Client.GetGame(s.CurrentGame)
	if err != nil {
		return err
	}
	s.SetGame(resp)
	display.PrettyPrintJSON(s.Out, resp)
	return nil
}

func pollHandler(s *session.Session, args []string) error {
	if err := requireGame(s); err != nil {
		return err
	}

	before := s.MoveCount()
	fmt.Fprintf(s.Out, "%sWaiting for changes (move %d)...%s\n", display.Cyan, before, display.Reset)

	resp, err := s.Client.GetGameWithPoll(s.CurrentGame, before)
	if api.IsNotFound(err) {
		fmt.Fprintf(s.Out, "%sGame %s was deleted%s\n", display.Yellow, s.CurrentGame, display.Reset)
		s.ClearGame()
		return nil
	}
	if err != nil {
		return err
	}
	s.SetGame(resp)

	if resp.MoveCount == before {
		fmt.Fprintf(s.Out, "%sNo new moves%s\n", display.Yellow, display.Reset)
		printStatus(s, resp)
		return nil
	}
	display.RenderGrid(s.Out, resp.Board, lastMoveSquares(resp))
	printStatus(s, resp)
	return nil
}

func deleteGameHandler(s *session.Session, args []string) error {
	gameID := s.CurrentGame
	if len(args) > 0 {
		gameID = args[0]
	}
	if gameID == "" {
		return fmt.Errorf("no game specified")
	}

	if err := s.Client.DeleteGame(gameID); err != nil {
		return err
	}
	if gameID == s.CurrentGame {
		s.ClearGame()
	}
	fmt.Fprintf(s.Out, "%sGame deleted: %s%s\n", display.Green, gameID, display.Reset)
	return nil
}

// printStatus prints a one-line summary of g
func printStatus(s *session.Session, g *core.GameResponse) {
	var status string
	switch {
	case g.GameOver && g.Winner != nil:
		status = display.ColorForTurn(*g.Winner) + " wins"
	case g.GameOver:
		status = "Stalemate"
	case !g.ReadyToStart:
		status = fmt.Sprintf("Waiting for players (open: %s)", strings.Join(g.OpenSeats, ", "))
	default:
		status = display.ColorForTurn(g.WhoseTurn) + " to move"
	}

	seat := "spectating"
	if g.MyColor != "" {
		seat = "playing " + display.ColorForTurn(g.MyColor)
	}
	fmt.Fprintf(s.Out, "%s | %s | move %d\n", status, seat, g.MoveCount)
}

// lastMoveSquares returns the from/to squares of a coordinate last move
func lastMoveSquares(g *core.GameResponse) []string {
	if g.LastMove == nil || len(g.LastMove.Move) < 4 || strings.HasPrefix(g.LastMove.Move, "O") {
		return nil
	}
	m := g.LastMove.Move
	return []string{m[0:2], m[2:4]}
}

// formatMoves numbers a move list: "1. e2e4 e7e5 2. g1f3"
func formatMoves(moves []string) string {
	var sb strings.Builder
	for i, m := range moves {
		if i%2 == 0 {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%d. ", i/2+1)
		} else {
			sb.WriteByte(' ')
		}
		sb.WriteString(m)
	}
	return sb.String()
}

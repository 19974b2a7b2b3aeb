package game

import (
	"fmt"
	"sync"
	"time"

	"chessduel/internal/server/core"
	"chessduel/internal/server/rules"
)

// Snapshot is one committed move in the history
type Snapshot struct {
	FEN   string      `json:"fen"`
	Move  string      `json:"move"`
	Mover rules.Color `json:"mover"`
	At    time.Time   `json:"at"`
}

// Record is the persisted form of a game. Restoring replays Moves from
// InitialFEN, so a corrupt record cannot yield an illegal position.
type Record struct {
	GameID      string    `json:"gameId"`
	InitialFEN  string    `json:"initialFen"`
	WhitePlayer string    `json:"whitePlayer,omitempty"`
	BlackPlayer string    `json:"blackPlayer,omitempty"`
	Moves       []string  `json:"moves"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Game is a hosted session around a rules.GameState. Mutations are
// serialized by the processor's game queue; the lock guards readers.
type Game struct {
	mu         sync.RWMutex
	current    rules.GameState
	initialFEN string
	snapshots  []Snapshot
	state      core.State
	createdAt  time.Time
}

// New creates a game in the standard starting position
func New(gameID string) *Game {
	gs := rules.New(gameID)
	return &Game{
		current:    gs,
		initialFEN: gs.FEN(),
		state:      core.DeriveState(gs),
		createdAt:  time.Now().UTC(),
	}
}

// Restore rebuilds a game from its record
func Restore(rec Record) (*Game, error) {
	gs, err := rules.ParseFEN(rec.GameID, rec.InitialFEN)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", rec.GameID, err)
	}
	gs.WhitePlayer = rec.WhitePlayer
	gs.BlackPlayer = rec.BlackPlayer

	g := &Game{
		current:    gs,
		initialFEN: rec.InitialFEN,
		createdAt:  rec.CreatedAt,
	}
	for i, text := range rec.Moves {
		m, err := rules.ParseMove(text)
		if err != nil {
			return nil, fmt.Errorf("restore %s move %d: %w", rec.GameID, i+1, err)
		}
		mover := g.current.Turn
		next, err := rules.Execute(g.current, g.current.PlayerAt(mover), m)
		if err != nil {
			return nil, fmt.Errorf("restore %s move %d %s: %w", rec.GameID, i+1, text, err)
		}
		g.commit(next, m, mover, g.createdAt)
	}
	g.state = core.DeriveState(g.current)
	return g, nil
}

// Record returns the persisted form
func (g *Game) Record() Record {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return Record{
		GameID:      g.current.GameID,
		InitialFEN:  g.initialFEN,
		WhitePlayer: g.current.WhitePlayer,
		BlackPlayer: g.current.BlackPlayer,
		Moves:       g.movesLocked(),
		CreatedAt:   g.createdAt,
	}
}

// Join seats playerID at color
func (g *Game) Join(playerID string, color rules.Color) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	next, err := g.current.AddPlayer(playerID, color)
	if err != nil {
		return err
	}
	g.current = next
	g.state = core.DeriveState(next)
	return nil
}

// Apply executes a move for playerID. Rule violations are returned as the
// engine's sentinel errors and leave the game untouched.
func (g *Game) Apply(playerID string, m rules.Move) (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	mover := g.current.Turn
	next, err := rules.Execute(g.current, playerID, m)
	if err != nil {
		return Snapshot{}, err
	}
	snap := g.commit(next, m, mover, time.Now().UTC())
	g.state = core.DeriveState(next)
	return snap, nil
}

func (g *Game) commit(next rules.GameState, m rules.Move, mover rules.Color, at time.Time) Snapshot {
	snap := Snapshot{
		FEN:   next.FEN(),
		Move:  m.String(),
		Mover: mover,
		At:    at,
	}
	g.current = next
	g.snapshots = append(g.snapshots, snap)
	return snap
}

// Current returns a copy of the engine state
func (g *Game) Current() rules.GameState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

func (g *Game) ID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current.GameID
}

func (g *Game) State() core.State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// CurrentFEN returns the current position in FEN notation
func (g *Game) CurrentFEN() string {
	return g.Current().FEN()
}

func (g *Game) InitialFEN() string {
	return g.initialFEN
}

func (g *Game) CreatedAt() time.Time {
	return g.createdAt
}

// MoveCount is the number of committed moves; long-poll clients compare it
func (g *Game) MoveCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.snapshots)
}

func (g *Game) Moves() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.movesLocked()
}

func (g *Game) movesLocked() []string {
	moves := make([]string, 0, len(g.snapshots))
	for _, s := range g.snapshots {
		moves = append(moves, s.Move)
	}
	return moves
}

// LastMove returns the most recent snapshot, if any
func (g *Game) LastMove() (Snapshot, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.snapshots) == 0 {
		return Snapshot{}, false
	}
	return g.snapshots[len(g.snapshots)-1], true
}

// Response builds the API view of the game for viewerID
func (g *Game) Response(viewerID string) core.GameResponse {
	g.mu.RLock()
	defer g.mu.RUnlock()

	resp := core.GameResponse{
		ViewerSnapshot: g.current.Snapshot(viewerID),
		MoveCount:      len(g.snapshots),
		Moves:          g.movesLocked(),
		FEN:            g.current.FEN(),
		State:          g.state.String(),
	}
	if n := len(g.snapshots); n > 0 {
		last := g.snapshots[n-1]
		resp.LastMove = &core.MoveInfo{
			Move:        last.Move,
			PlayerColor: last.Mover.String(),
		}
	}
	return resp
}

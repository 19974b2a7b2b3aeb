package rules

import "fmt"

// SideRights holds the two castling flags of one color
type SideRights struct {
	KingSide  bool `json:"kingSide"`
	QueenSide bool `json:"queenSide"`
}

// CastlingRights flags only ever go from true to false
type CastlingRights struct {
	White SideRights
	Black SideRights
}

func (cr CastlingRights) Of(c Color) SideRights {
	if c == White {
		return cr.White
	}
	return cr.Black
}

func (cr *CastlingRights) side(c Color) *SideRights {
	if c == White {
		return &cr.White
	}
	return &cr.Black
}

// clear drops a single flag
func (cr *CastlingRights) clear(c Color, s CastleSide) {
	sr := cr.side(c)
	if s == KingSide {
		sr.KingSide = false
	} else {
		sr.QueenSide = false
	}
}

func (cr CastlingRights) has(c Color, s CastleSide) bool {
	sr := cr.Of(c)
	if s == KingSide {
		return sr.KingSide
	}
	return sr.QueenSide
}

// EnPassant is valid for exactly the one move after a pawn double step
type EnPassant struct {
	Active bool
	// Target is the square a capturing pawn lands on
	Target Pos
	// Captured is the square of the pawn that would be removed
	Captured Pos
}

// GameState is a complete, self-contained game position plus seating.
// It is immutable by convention: every transition returns a new value.
type GameState struct {
	GameID      string
	Board       Board
	Turn        Color
	Castling    CastlingRights
	EnPassant   EnPassant
	WhitePlayer string
	BlackPlayer string
	// Ply counts committed moves
	Ply int
}

// New returns the standard starting position with no seated players
func New(gameID string) GameState {
	return GameState{
		GameID: gameID,
		Board:  StartingBoard(),
		Turn:   White,
		Castling: CastlingRights{
			White: SideRights{KingSide: true, QueenSide: true},
			Black: SideRights{KingSide: true, QueenSide: true},
		},
	}
}

// PlayerAt returns the player seated at color c, empty if open
func (s GameState) PlayerAt(c Color) string {
	if c == White {
		return s.WhitePlayer
	}
	if c == Black {
		return s.BlackPlayer
	}
	return ""
}

// ColorOf returns the seat held by playerID. A player holding both seats
// is reported as the side to move.
func (s GameState) ColorOf(playerID string) (Color, bool) {
	if playerID == "" {
		return NoColor, false
	}
	switch {
	case s.PlayerAt(s.Turn) == playerID:
		return s.Turn, true
	case s.PlayerAt(s.Turn.Opponent()) == playerID:
		return s.Turn.Opponent(), true
	}
	return NoColor, false
}

// AddPlayer seats playerID at color c
func (s GameState) AddPlayer(playerID string, c Color) (GameState, error) {
	if !c.Valid() {
		return s, fmt.Errorf("%w %s, must be one of %s or %s", ErrInvalidColor, c, White, Black)
	}
	if playerID == "" {
		return s, ErrNoPlayer
	}
	if s.PlayerAt(c) != "" {
		return s, fmt.Errorf("%s %w", c.Name(), ErrSeatTaken)
	}
	if c == White {
		s.WhitePlayer = playerID
	} else {
		s.BlackPlayer = playerID
	}
	return s, nil
}

// OpenSeats lists colors with no assigned player, white first
func (s GameState) OpenSeats() []Color {
	seats := []Color{}
	if s.WhitePlayer == "" {
		seats = append(seats, White)
	}
	if s.BlackPlayer == "" {
		seats = append(seats, Black)
	}
	return seats
}

// ReadyToStart is true once both seats are filled
func (s GameState) ReadyToStart() bool {
	return s.WhitePlayer != "" && s.BlackPlayer != ""
}

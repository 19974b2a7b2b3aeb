package core

import (
	"errors"
	"time"

	"chessduel/internal/server/rules"
)

// Request types

type CreateGameRequest struct {
	Color string `json:"color,omitempty" validate:"omitempty,oneof=W B"` // Seat the caller on creation
}

type JoinGameRequest struct {
	Color string `json:"color" validate:"required,oneof=W B"`
}

// Square is a board coordinate as sent by browser clients
type Square struct {
	Rank *int `json:"rank" validate:"required,min=0,max=7"`
	File *int `json:"file" validate:"required,min=0,max=7"`
}

// MoveRequest carries exactly one of: castling side, a src/dst pair, or a
// coordinate move string ("e2e4", "e7e8q", "O-O")
type MoveRequest struct {
	Castling      string  `json:"castling,omitempty" validate:"omitempty,oneof=K Q"`
	SrcPos        *Square `json:"srcPos,omitempty" validate:"omitempty"`
	DstPos        *Square `json:"dstPos,omitempty" validate:"omitempty"`
	PawnPromotion string  `json:"pawnPromotion,omitempty" validate:"omitempty,oneof=R N B Q"`
	Move          string  `json:"move,omitempty" validate:"omitempty,min=3,max=5"`
}

var ErrAmbiguousMove = errors.New("exactly one of castling, srcPos/dstPos or move is required")

// ToMove converts the request into an engine move
func (r MoveRequest) ToMove() (rules.Move, error) {
	forms := 0
	if r.Castling != "" {
		forms++
	}
	if r.SrcPos != nil || r.DstPos != nil {
		forms++
	}
	if r.Move != "" {
		forms++
	}
	if forms != 1 {
		return nil, ErrAmbiguousMove
	}

	switch {
	case r.Castling != "":
		side, ok := rules.ParseCastleSide(r.Castling)
		if !ok {
			return nil, rules.ErrInvalidCastleSide
		}
		return rules.Castle{Side: side}, nil

	case r.Move != "":
		return rules.ParseMove(r.Move)
	}

	if r.SrcPos == nil || r.DstPos == nil || !r.SrcPos.valid() || !r.DstPos.valid() {
		return nil, errors.New("srcPos and dstPos are both required")
	}
	st := rules.Step{From: r.SrcPos.Pos(), To: r.DstPos.Pos()}
	if r.PawnPromotion != "" {
		k, ok := rules.ParseKind(r.PawnPromotion)
		if !ok || !k.IsPromotion() {
			return nil, rules.ErrInvalidPromotion
		}
		st.Promotion = k
	}
	return st, nil
}

func (s Square) valid() bool {
	return s.Rank != nil && s.File != nil
}

// Pos converts to an engine coordinate; callers check valid first
func (s Square) Pos() rules.Pos {
	return rules.Pos{Rank: *s.Rank, File: *s.File}
}

// Response types

type PlayerResponse struct {
	PlayerID  string    `json:"playerId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// GameResponse is the viewer snapshot plus session metadata
type GameResponse struct {
	rules.ViewerSnapshot
	MoveCount int       `json:"moveCount"`
	Moves     []string  `json:"moves"`
	FEN       string    `json:"fen"`
	State     string    `json:"state"`
	LastMove  *MoveInfo `json:"lastMove,omitempty"`
}

type MoveInfo struct {
	Move        string `json:"move"`
	PlayerColor string `json:"playerColor"` // "W" or "B"
}

// MoveResponse keeps the original wire shape: rule rejections travel in
// moveResult with the unchanged game status
type MoveResponse struct {
	MoveResult rules.MoveResult `json:"moveResult"`
	GameStatus GameResponse     `json:"gameStatus"`
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // ASCII representation
}

type DestinationsResponse struct {
	From         string      `json:"from"`
	Destinations []rules.Pos `json:"destinations"`
	Squares      []string    `json:"squares"`
}

package rules

import (
	"fmt"
	"strings"
)

// CastleSide selects the wing for a castling move
type CastleSide byte

const (
	KingSide  CastleSide = 'K'
	QueenSide CastleSide = 'Q'
)

func (s CastleSide) String() string {
	return string(s)
}

// ParseCastleSide accepts "K" or "Q"
func ParseCastleSide(s string) (CastleSide, bool) {
	switch strings.ToUpper(s) {
	case "K":
		return KingSide, true
	case "Q":
		return QueenSide, true
	}
	return 0, false
}

// Move is either a Castle or a Step
type Move interface {
	fmt.Stringer
	isMove()
}

// Castle moves king and rook together on the given wing
type Castle struct {
	Side CastleSide
}

// Step moves the piece at From to To. Promotion is only consulted when a
// pawn reaches the far rank.
type Step struct {
	From      Pos
	To        Pos
	Promotion Kind
}

func (Castle) isMove() {}
func (Step) isMove()   {}

func (c Castle) String() string {
	if c.Side == QueenSide {
		return "O-O-O"
	}
	return "O-O"
}

// String renders coordinate notation, e.g. "e7e8q"
func (s Step) String() string {
	out := s.From.String() + s.To.String()
	if s.Promotion != NoKind {
		out += strings.ToLower(s.Promotion.String())
	}
	return out
}

// ParseMove reads coordinate notation ("e2e4", "e7e8q") or castling
// notation ("O-O", "O-O-O", also with zeros)
func ParseMove(text string) (Move, error) {
	t := strings.TrimSpace(text)
	switch strings.ToUpper(strings.ReplaceAll(t, "0", "O")) {
	case "O-O":
		return Castle{Side: KingSide}, nil
	case "O-O-O":
		return Castle{Side: QueenSide}, nil
	}

	if len(t) != 4 && len(t) != 5 {
		return nil, fmt.Errorf("invalid move %q: expected 4-5 characters", text)
	}
	from, err := ParsePos(t[0:2])
	if err != nil {
		return nil, fmt.Errorf("invalid move %q: %w", text, err)
	}
	to, err := ParsePos(t[2:4])
	if err != nil {
		return nil, fmt.Errorf("invalid move %q: %w", text, err)
	}
	step := Step{From: from, To: to}
	if len(t) == 5 {
		k, ok := ParseKind(t[4:])
		if !ok || !k.IsPromotion() {
			return nil, fmt.Errorf("invalid move %q: bad promotion piece", text)
		}
		step.Promotion = k
	}
	return step, nil
}

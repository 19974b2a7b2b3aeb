package rules

import (
	"fmt"
	"strconv"
	"strings"
)

const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN builds an unseated GameState from a FEN record. The halfmove
// clock is accepted but not tracked. Castling flags whose king or rook is
// not on its home square are dropped.
func ParseFEN(gameID, fen string) (GameState, error) {
	parts := strings.Fields(fen)
	if len(parts) != 6 {
		return GameState{}, fmt.Errorf("invalid FEN: expected 6 parts, got %d", len(parts))
	}

	s := GameState{GameID: gameID}

	// Parse board
	ranks := strings.Split(parts[0], "/")
	if len(ranks) != Size {
		return GameState{}, fmt.Errorf("invalid FEN: expected 8 ranks")
	}

	for r := 0; r < Size; r++ {
		file := 0
		for _, ch := range ranks[r] {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file >= Size {
				return GameState{}, fmt.Errorf("invalid FEN: too many pieces in rank %d", Size-r)
			}
			k, ok := ParseKind(string(ch))
			if !ok {
				return GameState{}, fmt.Errorf("invalid FEN: unknown piece %q", ch)
			}
			c := White
			if ch >= 'a' && ch <= 'z' {
				c = Black
			}
			s.Board[r][file] = Piece{Color: c, Kind: k}
			file++
		}
		if file != Size {
			return GameState{}, fmt.Errorf("invalid FEN: rank %d has %d files", Size-r, file)
		}
	}

	for _, c := range [2]Color{White, Black} {
		if _, ok := s.Board.KingPos(c); !ok {
			return GameState{}, fmt.Errorf("invalid FEN: missing %s king", strings.ToLower(c.Name()))
		}
	}

	switch parts[1] {
	case "w":
		s.Turn = White
	case "b":
		s.Turn = Black
	default:
		return GameState{}, fmt.Errorf("invalid FEN: turn must be 'w' or 'b'")
	}

	if parts[2] != "-" {
		for _, ch := range parts[2] {
			switch ch {
			case 'K':
				s.Castling.White.KingSide = true
			case 'Q':
				s.Castling.White.QueenSide = true
			case 'k':
				s.Castling.Black.KingSide = true
			case 'q':
				s.Castling.Black.QueenSide = true
			default:
				return GameState{}, fmt.Errorf("invalid FEN: castling field %q", parts[2])
			}
		}
	}
	s.Castling = sanitizeCastling(&s.Board, s.Castling)

	if parts[3] != "-" {
		target, err := ParsePos(parts[3])
		if err != nil {
			return GameState{}, fmt.Errorf("invalid FEN: en passant square: %w", err)
		}
		// The passed pawn stands one rank beyond the target, seen from the mover
		captured := target.offset(-pawnDir(s.Turn), 0)
		if s.Board.At(captured) == (Piece{Color: s.Turn.Opponent(), Kind: Pawn}) {
			s.EnPassant = EnPassant{Active: true, Target: target, Captured: captured}
		}
	}

	if _, err := strconv.Atoi(parts[4]); err != nil {
		return GameState{}, fmt.Errorf("invalid FEN: halfmove counter")
	}
	fullmove, err := strconv.Atoi(parts[5])
	if err != nil || fullmove < 1 {
		return GameState{}, fmt.Errorf("invalid FEN: fullmove counter")
	}
	s.Ply = (fullmove - 1) * 2
	if s.Turn == Black {
		s.Ply++
	}

	return s, nil
}

func sanitizeCastling(b *Board, cr CastlingRights) CastlingRights {
	for _, c := range [2]Color{White, Black} {
		home := homeRank(c)
		if b.At(Pos{Rank: home, File: kingFile}) != (Piece{Color: c, Kind: King}) {
			cr.clear(c, KingSide)
			cr.clear(c, QueenSide)
			continue
		}
		for side, layout := range castleLayouts {
			if b.At(Pos{Rank: home, File: layout.rookFrom}) != (Piece{Color: c, Kind: Rook}) {
				cr.clear(c, side)
			}
		}
	}
	return cr
}

// FEN encodes the position. The halfmove clock is always 0.
func (s GameState) FEN() string {
	var sb strings.Builder
	for r := 0; r < Size; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		blanks := 0
		for f := 0; f < Size; f++ {
			pc := s.Board[r][f]
			if pc.IsEmpty() {
				blanks++
				continue
			}
			if blanks > 0 {
				sb.WriteByte(byte('0' + blanks))
				blanks = 0
			}
			sb.WriteByte(pc.FENRune())
		}
		if blanks > 0 {
			sb.WriteByte(byte('0' + blanks))
		}
	}

	sb.WriteByte(' ')
	if s.Turn == Black {
		sb.WriteByte('b')
	} else {
		sb.WriteByte('w')
	}

	sb.WriteByte(' ')
	castling := ""
	if s.Castling.White.KingSide {
		castling += "K"
	}
	if s.Castling.White.QueenSide {
		castling += "Q"
	}
	if s.Castling.Black.KingSide {
		castling += "k"
	}
	if s.Castling.Black.QueenSide {
		castling += "q"
	}
	if castling == "" {
		castling = "-"
	}
	sb.WriteString(castling)

	sb.WriteByte(' ')
	if s.EnPassant.Active {
		sb.WriteString(s.EnPassant.Target.String())
	} else {
		sb.WriteByte('-')
	}

	sb.WriteString(fmt.Sprintf(" 0 %d", s.Ply/2+1))
	return sb.String()
}

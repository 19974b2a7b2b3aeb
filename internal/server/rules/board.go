package rules

import (
	"fmt"
	"strings"
)

const Size = 8

// Pos is a board coordinate. Rank 0 is black's home rank, rank 7 is white's.
type Pos struct {
	Rank int `json:"rank"`
	File int `json:"file"`
}

func (p Pos) OnBoard() bool {
	return p.Rank >= 0 && p.Rank < Size && p.File >= 0 && p.File < Size
}

func (p Pos) offset(dr, df int) Pos {
	return Pos{Rank: p.Rank + dr, File: p.File + df}
}

// String returns the algebraic square name, e.g. "e2" for {6, 4}
func (p Pos) String() string {
	if !p.OnBoard() {
		return fmt.Sprintf("(%d,%d)", p.Rank, p.File)
	}
	return string([]byte{byte('a' + p.File), byte('8' - p.Rank)})
}

// ParsePos parses an algebraic square name
func ParsePos(s string) (Pos, error) {
	if len(s) != 2 {
		return Pos{}, fmt.Errorf("invalid square %q", s)
	}
	f, r := s[0]|0x20, s[1]
	if f < 'a' || f > 'h' || r < '1' || r > '8' {
		return Pos{}, fmt.Errorf("invalid square %q", s)
	}
	return Pos{Rank: int('8' - r), File: int(f - 'a')}, nil
}

// Board is the fixed 8x8 grid. It is a value type: assigning copies it.
type Board [Size][Size]Piece

// At returns the piece at p, or Empty when p is off the board
func (b *Board) At(p Pos) Piece {
	if !p.OnBoard() {
		return Empty
	}
	return b[p.Rank][p.File]
}

func (b *Board) set(p Pos, pc Piece) {
	b[p.Rank][p.File] = pc
}

// IsEmpty is false for off-board coordinates
func (b *Board) IsEmpty(p Pos) bool {
	return p.OnBoard() && b[p.Rank][p.File].IsEmpty()
}

// IsColor is false for empty and off-board coordinates
func (b *Board) IsColor(p Pos, c Color) bool {
	if !p.OnBoard() {
		return false
	}
	pc := b[p.Rank][p.File]
	return !pc.IsEmpty() && pc.Color == c
}

// IsEmptyOrColor reports whether p is on the board and either empty or held by c
func (b *Board) IsEmptyOrColor(p Pos, c Color) bool {
	return b.IsEmpty(p) || b.IsColor(p, c)
}

// KingPos locates the king of color c
func (b *Board) KingPos(c Color) (Pos, bool) {
	king := Piece{Color: c, Kind: King}
	for r := 0; r < Size; r++ {
		for f := 0; f < Size; f++ {
			if b[r][f] == king {
				return Pos{Rank: r, File: f}, true
			}
		}
	}
	return Pos{}, false
}

// Codes returns the wire grid of two-character cell codes
func (b *Board) Codes() [][]string {
	rows := make([][]string, Size)
	for r := 0; r < Size; r++ {
		rows[r] = make([]string, Size)
		for f := 0; f < Size; f++ {
			rows[r][f] = b[r][f].Code()
		}
	}
	return rows
}

// ASCII renders the board with FEN letters, rank 8 on top
func (b *Board) ASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := 0; r < Size; r++ {
		sb.WriteString(fmt.Sprintf("%d ", Size-r))
		for f := 0; f < Size; f++ {
			pc := b[r][f]
			if pc.IsEmpty() {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", pc.FENRune()))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", Size-r))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}

var backRank = [Size]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// StartingBoard returns the standard initial setup
func StartingBoard() Board {
	var b Board
	for f := 0; f < Size; f++ {
		b[0][f] = Piece{Color: Black, Kind: backRank[f]}
		b[1][f] = Piece{Color: Black, Kind: Pawn}
		b[6][f] = Piece{Color: White, Kind: Pawn}
		b[7][f] = Piece{Color: White, Kind: backRank[f]}
	}
	return b
}

// homeRank is the back rank of color c
func homeRank(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

// pawnDir is the rank delta of a forward pawn step
func pawnDir(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

// pawnStartRank is the rank a pawn of color c may double-step from
func pawnStartRank(c Color) int {
	if c == White {
		return 6
	}
	return 1
}

// promotionRank is the far rank for pawns of color c
func promotionRank(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

package rules

// Color is the wire letter of a side: 'W' or 'B'
type Color byte

const (
	NoColor Color = 0
	White   Color = 'W'
	Black   Color = 'B'
)

func (c Color) String() string {
	switch c {
	case White:
		return "W"
	case Black:
		return "B"
	default:
		return "-"
	}
}

// Name returns the human readable color name
func (c Color) Name() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "None"
	}
}

func (c Color) Valid() bool {
	return c == White || c == Black
}

// Opponent returns the other side
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// ParseColor accepts "W", "B", "w", "b", "white" or "black"
func ParseColor(s string) (Color, bool) {
	switch s {
	case "W", "w", "white", "White":
		return White, true
	case "B", "b", "black", "Black":
		return Black, true
	}
	return NoColor, false
}

// Kind is the wire letter of a piece type
type Kind byte

const (
	NoKind Kind = 0
	Pawn   Kind = 'P'
	Rook   Kind = 'R'
	Knight Kind = 'N'
	Bishop Kind = 'B'
	Queen  Kind = 'Q'
	King   Kind = 'K'
)

func (k Kind) String() string {
	if k == NoKind {
		return ""
	}
	return string(k)
}

// IsPromotion reports whether a pawn may become this kind
func (k Kind) IsPromotion() bool {
	return k == Rook || k == Knight || k == Bishop || k == Queen
}

// ParseKind accepts upper or lower case piece letters
func ParseKind(s string) (Kind, bool) {
	if len(s) != 1 {
		return NoKind, false
	}
	switch k := Kind(s[0] &^ 0x20); k {
	case Pawn, Rook, Knight, Bishop, Queen, King:
		return k, true
	}
	return NoKind, false
}

// Piece is the content of one board cell. The zero value is an empty cell.
type Piece struct {
	Color Color
	Kind  Kind
}

// Empty is the unoccupied cell
var Empty = Piece{}

func (p Piece) IsEmpty() bool {
	return p.Kind == NoKind
}

// Code returns the two-character wire code, e.g. "WK", or two blanks
func (p Piece) Code() string {
	if p.IsEmpty() {
		return "  "
	}
	return string([]byte{byte(p.Color), byte(p.Kind)})
}

// FENRune returns the FEN letter: upper case for white, lower case for black
func (p Piece) FENRune() byte {
	if p.IsEmpty() {
		return 0
	}
	if p.Color == Black {
		return byte(p.Kind) | 0x20
	}
	return byte(p.Kind)
}

// ParseCode reverses Code
func ParseCode(code string) (Piece, bool) {
	if code == "  " || code == "" {
		return Empty, true
	}
	if len(code) != 2 {
		return Empty, false
	}
	c := Color(code[0])
	k, ok := ParseKind(code[1:])
	if !c.Valid() || !ok {
		return Empty, false
	}
	return Piece{Color: c, Kind: k}, true
}

package rules

// maxDestinations bounds the pseudo-legal destinations of a single piece
// (a centralized queen reaches 27 squares)
const maxDestinations = 27

var (
	knightOffsets = [8][2]int{{1, 2}, {1, -2}, {-1, 2}, {-1, -2}, {2, 1}, {2, -1}, {-2, 1}, {-2, -1}}
	kingOffsets   = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	diagonalRays  = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	straightRays  = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
)

// Destinations returns the pseudo-legal destinations of the piece at from,
// ignoring whether the mover's king is left in check. Castling is not
// included. An empty or off-board source yields nothing.
func Destinations(b *Board, from Pos, ep EnPassant) []Pos {
	var buf [maxDestinations]Pos
	out := appendDestinations(buf[:0], b, from, ep)
	return append([]Pos(nil), out...)
}

// appendDestinations appends to dst so hot paths can pass a stack buffer
func appendDestinations(dst []Pos, b *Board, from Pos, ep EnPassant) []Pos {
	pc := b.At(from)
	if pc.IsEmpty() {
		return dst
	}
	enemy := pc.Color.Opponent()

	switch pc.Kind {
	case Pawn:
		dst = appendPawnMoves(dst, b, from, pc.Color, ep)
	case Knight:
		for _, o := range knightOffsets {
			if to := from.offset(o[0], o[1]); b.IsEmptyOrColor(to, enemy) {
				dst = append(dst, to)
			}
		}
	case King:
		for _, o := range kingOffsets {
			if to := from.offset(o[0], o[1]); b.IsEmptyOrColor(to, enemy) {
				dst = append(dst, to)
			}
		}
	case Bishop:
		dst = appendRays(dst, b, from, enemy, diagonalRays[:])
	case Rook:
		dst = appendRays(dst, b, from, enemy, straightRays[:])
	case Queen:
		dst = appendRays(dst, b, from, enemy, diagonalRays[:])
		dst = appendRays(dst, b, from, enemy, straightRays[:])
	}
	return dst
}

func appendPawnMoves(dst []Pos, b *Board, from Pos, c Color, ep EnPassant) []Pos {
	dir := pawnDir(c)
	enemy := c.Opponent()

	if one := from.offset(dir, 0); b.IsEmpty(one) {
		dst = append(dst, one)
		if two := from.offset(2*dir, 0); from.Rank == pawnStartRank(c) && b.IsEmpty(two) {
			dst = append(dst, two)
		}
	}

	for _, df := range [2]int{-1, 1} {
		to := from.offset(dir, df)
		if b.IsColor(to, enemy) {
			dst = append(dst, to)
		} else if ep.Active && to == ep.Target && b.IsColor(ep.Captured, enemy) {
			dst = append(dst, to)
		}
	}
	return dst
}

// appendRays walks each direction until the edge, stopping on the first
// occupied square and including it only when it holds an enemy piece
func appendRays(dst []Pos, b *Board, from Pos, enemy Color, rays [][2]int) []Pos {
	for _, r := range rays {
		to := from.offset(r[0], r[1])
		for b.IsEmpty(to) {
			dst = append(dst, to)
			to = to.offset(r[0], r[1])
		}
		if b.IsColor(to, enemy) {
			dst = append(dst, to)
		}
	}
	return dst
}

// isEnPassantCapture reports whether a pawn step onto the window's target
// takes the passed pawn
func isEnPassantCapture(pc Piece, to Pos, ep EnPassant) bool {
	return pc.Kind == Pawn && ep.Active && to == ep.Target
}

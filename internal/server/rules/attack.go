package rules

// IsAttacked reports whether any piece of color by could capture on sq.
// Pawns attack their forward diagonals whether or not the square is
// occupied; their pushes never attack. Castling path checks rely on the
// empty-square case.
func IsAttacked(b *Board, sq Pos, by Color) bool {
	if !sq.OnBoard() {
		return false
	}
	var buf [maxDestinations]Pos
	for r := 0; r < Size; r++ {
		for f := 0; f < Size; f++ {
			pc := b[r][f]
			if pc.IsEmpty() || pc.Color != by {
				continue
			}
			from := Pos{Rank: r, File: f}
			if pc.Kind == Pawn {
				if sq.Rank == r+pawnDir(by) && (sq.File == f-1 || sq.File == f+1) {
					return true
				}
				continue
			}
			for _, to := range appendDestinations(buf[:0], b, from, EnPassant{}) {
				if to == sq {
					return true
				}
			}
		}
	}
	return false
}

// InCheck reports whether the king of color c is attacked. A board with no
// king of that color is never in check.
func InCheck(b *Board, c Color) bool {
	king, ok := b.KingPos(c)
	if !ok {
		return false
	}
	return IsAttacked(b, king, c.Opponent())
}

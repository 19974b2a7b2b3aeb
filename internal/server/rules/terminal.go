package rules

// forEachCandidate feeds every pseudo-legal step of color c (with
// en-passant removal applied) and every currently legal castle to fn,
// together with the resulting board. Iteration stops when fn returns false.
func forEachCandidate(s *GameState, c Color, fn func(m Move, after *Board) bool) {
	var buf [maxDestinations]Pos
	for r := 0; r < Size; r++ {
		for f := 0; f < Size; f++ {
			pc := s.Board[r][f]
			if pc.IsEmpty() || pc.Color != c {
				continue
			}
			from := Pos{Rank: r, File: f}
			for _, to := range appendDestinations(buf[:0], &s.Board, from, s.EnPassant) {
				scratch := s.Board
				scratch.set(to, pc)
				scratch.set(from, Empty)
				if isEnPassantCapture(pc, to, s.EnPassant) {
					scratch.set(s.EnPassant.Captured, Empty)
				}
				if !fn(Step{From: from, To: to}, &scratch) {
					return
				}
			}
		}
	}

	for _, side := range [2]CastleSide{KingSide, QueenSide} {
		if canCastle(&s.Board, s.Castling, c, side) != nil {
			continue
		}
		scratch := s.Board
		applyCastle(&scratch, c, side)
		if !fn(Castle{Side: side}, &scratch) {
			return
		}
	}
}

// everyMoveLeadsToCheck is true when no candidate move of color c leaves
// its king safe
func everyMoveLeadsToCheck(s *GameState, c Color) bool {
	escaped := false
	forEachCandidate(s, c, func(_ Move, after *Board) bool {
		if !InCheck(after, c) {
			escaped = true
			return false
		}
		return true
	})
	return !escaped
}

// InCheck reports whether color c's king is currently attacked
func (s GameState) InCheck(c Color) bool {
	return InCheck(&s.Board, c)
}

// Checkmate reports whether color c is in check with no escaping move
func (s GameState) Checkmate(c Color) bool {
	return s.InCheck(c) && everyMoveLeadsToCheck(&s, c)
}

// Stalemate reports whether the side to move is not in check but has no
// legal move
func (s GameState) Stalemate() bool {
	return !s.InCheck(s.Turn) && everyMoveLeadsToCheck(&s, s.Turn)
}

// IsGameOver is true on checkmate of either side or stalemate of the side
// to move. No other draw rule is applied.
func (s GameState) IsGameOver() bool {
	return s.Checkmate(White) || s.Checkmate(Black) || s.Stalemate()
}

// Winner returns the side that delivered mate, or NoColor for a draw.
// Only meaningful when IsGameOver is true.
func (s GameState) Winner() Color {
	switch {
	case s.Checkmate(White):
		return Black
	case s.Checkmate(Black):
		return White
	}
	return NoColor
}

// LegalMoves lists every legal move of the side to move. Promotions are
// expanded to all four promotion pieces.
func (s GameState) LegalMoves() []Move {
	var moves []Move
	forEachCandidate(&s, s.Turn, func(m Move, after *Board) bool {
		if InCheck(after, s.Turn) {
			return true
		}
		if st, ok := m.(Step); ok && s.Board.At(st.From).Kind == Pawn && st.To.Rank == promotionRank(s.Turn) {
			for _, k := range [4]Kind{Queen, Rook, Bishop, Knight} {
				st.Promotion = k
				moves = append(moves, st)
			}
			return true
		}
		moves = append(moves, m)
		return true
	})
	return moves
}

// LegalDestinations lists the squares the piece at from may legally reach.
// A king's castling destinations are included.
func (s GameState) LegalDestinations(from Pos) []Pos {
	pc := s.Board.At(from)
	if pc.IsEmpty() || pc.Color != s.Turn {
		return nil
	}
	dests := []Pos{}
	seen := make(map[Pos]bool)
	home := homeRank(s.Turn)
	for _, m := range s.LegalMoves() {
		var to Pos
		switch mv := m.(type) {
		case Step:
			if mv.From != from {
				continue
			}
			to = mv.To
		case Castle:
			if from != (Pos{Rank: home, File: kingFile}) {
				continue
			}
			to = Pos{Rank: home, File: castleLayouts[mv.Side].kingTo}
		}
		if !seen[to] {
			seen[to] = true
			dests = append(dests, to)
		}
	}
	return dests
}

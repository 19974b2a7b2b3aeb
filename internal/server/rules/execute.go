package rules

// castleLayout describes one wing's castling geometry on the home rank
type castleLayout struct {
	kingTo   int
	rookFrom int
	rookTo   int
	// between are the files that must be empty
	between []int
	// path are the king's start, transit and destination files
	path [3]int
}

const kingFile = 4

var castleLayouts = map[CastleSide]castleLayout{
	KingSide:  {kingTo: 6, rookFrom: 7, rookTo: 5, between: []int{5, 6}, path: [3]int{4, 5, 6}},
	QueenSide: {kingTo: 2, rookFrom: 0, rookTo: 3, between: []int{1, 2, 3}, path: [3]int{4, 3, 2}},
}

// Execute validates move m by playerID against s and returns the committed
// successor state. On any error the input state is returned untouched.
func Execute(s GameState, playerID string, m Move) (GameState, error) {
	color, ok := s.ColorOf(playerID)
	if !ok {
		return s, ErrNotParticipant
	}
	if color != s.Turn {
		return s, ErrNotYourTurn
	}

	next := s
	next.EnPassant = EnPassant{}

	var from, to Pos
	switch mv := m.(type) {
	case Castle:
		if err := canCastle(&s.Board, s.Castling, s.Turn, mv.Side); err != nil {
			return s, err
		}
		applyCastle(&next.Board, s.Turn, mv.Side)
		next.Castling.clear(s.Turn, mv.Side)
		home := homeRank(s.Turn)
		from = Pos{Rank: home, File: kingFile}
		to = Pos{Rank: home, File: castleLayouts[mv.Side].kingTo}

	case Step:
		if err := applyStep(&next, s, mv); err != nil {
			return s, err
		}
		if InCheck(&next.Board, s.Turn) {
			if InCheck(&s.Board, s.Turn) {
				return s, ErrInCheck
			}
			return s, ErrMoveIntoCheck
		}
		from, to = mv.From, mv.To

	default:
		return s, ErrNilMove
	}

	updateCastlingRights(&next.Castling, from, to)
	next.Turn = s.Turn.Opponent()
	next.Ply = s.Ply + 1
	return next, nil
}

// applyStep performs a normal move of the side to move in cur onto next,
// which starts as a copy of cur with the en-passant window cleared
func applyStep(next *GameState, cur GameState, st Step) error {
	pc := cur.Board.At(st.From)
	if pc.IsEmpty() || pc.Color != cur.Turn {
		return ErrNotOwned
	}

	var buf [maxDestinations]Pos
	reachable := false
	for _, d := range appendDestinations(buf[:0], &cur.Board, st.From, cur.EnPassant) {
		if d == st.To {
			reachable = true
			break
		}
	}
	if !reachable {
		return ErrIllegalDestination
	}

	b := &next.Board
	b.set(st.To, pc)
	b.set(st.From, Empty)

	if isEnPassantCapture(pc, st.To, cur.EnPassant) {
		b.set(cur.EnPassant.Captured, Empty)
	}

	if pc.Kind == Pawn && abs(st.To.Rank-st.From.Rank) == 2 {
		next.EnPassant = EnPassant{
			Active:   true,
			Target:   Pos{Rank: (st.From.Rank + st.To.Rank) / 2, File: st.From.File},
			Captured: st.To,
		}
	}

	if pc.Kind == Pawn && st.To.Rank == promotionRank(pc.Color) {
		if !st.Promotion.IsPromotion() {
			return ErrInvalidPromotion
		}
		b.set(st.To, Piece{Color: pc.Color, Kind: st.Promotion})
	}
	return nil
}

// canCastle checks rights, emptiness between king and rook, and that no
// square on the king's path is attacked
func canCastle(b *Board, cr CastlingRights, c Color, side CastleSide) error {
	layout, ok := castleLayouts[side]
	if !ok {
		return ErrInvalidCastleSide
	}
	if !cr.has(c, side) {
		return ErrCastlingRights
	}
	home := homeRank(c)
	for _, f := range layout.between {
		if !b.IsEmpty(Pos{Rank: home, File: f}) {
			return ErrCastlingBlocked
		}
	}
	enemy := c.Opponent()
	for _, f := range layout.path {
		if IsAttacked(b, Pos{Rank: home, File: f}, enemy) {
			return ErrCastlingThroughCheck
		}
	}
	return nil
}

// applyCastle relocates king and rook; legality is checked by canCastle
func applyCastle(b *Board, c Color, side CastleSide) {
	layout := castleLayouts[side]
	home := homeRank(c)
	b.set(Pos{Rank: home, File: kingFile}, Empty)
	b.set(Pos{Rank: home, File: layout.rookFrom}, Empty)
	b.set(Pos{Rank: home, File: layout.kingTo}, Piece{Color: c, Kind: King})
	b.set(Pos{Rank: home, File: layout.rookTo}, Piece{Color: c, Kind: Rook})
}

// updateCastlingRights clears flags for moves leaving a king or corner rook
// home square, and for captures landing on a corner rook home square
func updateCastlingRights(cr *CastlingRights, from, to Pos) {
	for _, c := range [2]Color{White, Black} {
		home := homeRank(c)
		if from == (Pos{Rank: home, File: kingFile}) {
			cr.clear(c, KingSide)
			cr.clear(c, QueenSide)
		}
		for side, layout := range castleLayouts {
			corner := Pos{Rank: home, File: layout.rookFrom}
			if from == corner || to == corner {
				cr.clear(c, side)
			}
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

package rules

// EnPassantInfo is the wire form of the en-passant window
type EnPassantInfo struct {
	Available  bool `json:"available"`
	DstPos     *Pos `json:"dstPos"`
	CapturePos *Pos `json:"capturePos"`
}

// ViewerSnapshot is the serializable view of a game for one viewer
type ViewerSnapshot struct {
	GameID        string                `json:"gameId"`
	ReadyToStart  bool                  `json:"readyToStart"`
	GameOver      bool                  `json:"gameOver"`
	Winner        *string               `json:"winner"`
	WhoseTurn     string                `json:"whoseTurn"`
	Board         [][]string            `json:"board"`
	EnPassantInfo EnPassantInfo         `json:"enPassantInfo"`
	CastlingInfo  map[string]SideRights `json:"castlingInfo"`
	OpenSeats     []string              `json:"openSeats"`
	MyColor       string                `json:"myColor,omitempty"`
}

// Snapshot builds the viewer snapshot. viewerID may be empty; myColor is
// only set when the viewer holds a seat.
func (s GameState) Snapshot(viewerID string) ViewerSnapshot {
	snap := ViewerSnapshot{
		GameID:       s.GameID,
		ReadyToStart: s.ReadyToStart(),
		GameOver:     s.IsGameOver(),
		WhoseTurn:    s.Turn.String(),
		Board:        s.Board.Codes(),
		CastlingInfo: map[string]SideRights{
			White.String(): s.Castling.White,
			Black.String(): s.Castling.Black,
		},
		OpenSeats: []string{},
	}

	if snap.GameOver {
		if w := s.Winner(); w != NoColor {
			name := w.String()
			snap.Winner = &name
		}
	}

	if s.EnPassant.Active {
		dst, capture := s.EnPassant.Target, s.EnPassant.Captured
		snap.EnPassantInfo = EnPassantInfo{Available: true, DstPos: &dst, CapturePos: &capture}
	}

	for _, c := range s.OpenSeats() {
		snap.OpenSeats = append(snap.OpenSeats, c.String())
	}

	if viewerID != "" {
		switch viewerID {
		case s.WhitePlayer:
			snap.MyColor = White.String()
		case s.BlackPlayer:
			snap.MyColor = Black.String()
		}
	}
	return snap
}

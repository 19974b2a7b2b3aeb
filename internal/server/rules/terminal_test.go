package rules

import "testing"

func TestGameOver(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		gameOver  bool
		winner    Color
		checkmate Color
		stalemate bool
	}{
		{name: "initial", fen: StartingFEN},
		{
			name:      "back rank mate",
			fen:       "3R2k1/5ppp/8/8/8/8/8/6K1 b - - 0 1",
			gameOver:  true,
			winner:    White,
			checkmate: Black,
		},
		{
			name:      "fool's mate",
			fen:       "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
			gameOver:  true,
			winner:    Black,
			checkmate: White,
		},
		{
			name:      "stalemate",
			fen:       "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
			gameOver:  true,
			winner:    NoColor,
			stalemate: true,
		},
		{
			name: "check with escape",
			fen:  "4k3/8/8/8/8/8/8/4R1K1 b - - 0 1",
		},
		{
			name: "check answered by capture",
			fen:  "3R2k1/5ppp/8/8/8/8/7K/3r4 b - - 0 1",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			s := mustFEN(t, tt.fen)
			if got := s.IsGameOver(); got != tt.gameOver {
				t.Fatalf("IsGameOver = %v, want %v", got, tt.gameOver)
			}
			if got := s.Stalemate(); got != tt.stalemate {
				t.Fatalf("Stalemate = %v, want %v", got, tt.stalemate)
			}
			for _, c := range [2]Color{White, Black} {
				if got := s.Checkmate(c); got != (c == tt.checkmate) {
					t.Fatalf("Checkmate(%s) = %v", c.Name(), got)
				}
			}
			if tt.gameOver {
				if got := s.Winner(); got != tt.winner {
					t.Fatalf("Winner = %s, want %s", got.Name(), tt.winner.Name())
				}
				if n := len(s.LegalMoves()); n != 0 {
					t.Fatalf("finished game has %d legal moves", n)
				}
			}
		})
	}
}

func TestMateReachedByPlay(t *testing.T) {
	s := play(t, seated(), "f2f3", "e7e5", "g2g4", "d8h4")
	if !s.IsGameOver() || s.Winner() != Black {
		t.Fatalf("fool's mate not detected: over=%v winner=%s", s.IsGameOver(), s.Winner().Name())
	}
}

func TestLegalMovesInitial(t *testing.T) {
	s := seated()
	if n := len(s.LegalMoves()); n != 20 {
		t.Fatalf("initial legal moves = %d, want 20", n)
	}
}

func TestLegalDestinations(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		from string
		want []string
	}{
		{"knight", StartingFEN, "g1", []string{"f3", "h3"}},
		{"opponent piece", StartingFEN, "e7", nil},
		{"king with castling", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1", []string{"c1", "d1", "d2", "e2", "f1", "f2", "g1"}},
		{"pinned bishop", "4k3/8/8/8/4r3/8/4B3/4K3 w - - 0 1", "e2", []string{}},
		{"check restricts pieces", "4k3/8/8/8/4r3/8/R7/4K3 w - - 0 1", "a2", []string{"e2"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			s := mustFEN(t, tt.fen)
			got := s.LegalDestinations(mustPos(t, tt.from))
			if tt.want == nil {
				if got != nil {
					t.Fatalf("destinations = %v, want nil", squares(got))
				}
				return
			}
			if !equalStrings(squares(got), tt.want) {
				t.Fatalf("destinations = %v, want %v", squares(got), tt.want)
			}
		})
	}
}

package game

import (
	"errors"
	"testing"

	"chessduel/internal/server/core"
	"chessduel/internal/server/rules"
)

func mustMove(t *testing.T, text string) rules.Move {
	t.Helper()
	m, err := rules.ParseMove(text)
	if err != nil {
		t.Fatalf("parse %q: %v", text, err)
	}
	return m
}

func seatedGame(t *testing.T) *Game {
	t.Helper()
	g := New("g1")
	if err := g.Join("alice", rules.White); err != nil {
		t.Fatalf("join white: %v", err)
	}
	if err := g.Join("bob", rules.Black); err != nil {
		t.Fatalf("join black: %v", err)
	}
	return g
}

func TestStateProgression(t *testing.T) {
	g := New("g1")
	if g.State() != core.StateWaiting {
		t.Fatalf("new game state = %s", g.State())
	}
	if err := g.Join("alice", rules.White); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := g.Join("carol", rules.White); err == nil || !errors.Is(err, rules.ErrSeatTaken) {
		t.Fatalf("second white join error = %v", err)
	}
	if err := g.Join("bob", rules.Black); err != nil {
		t.Fatalf("join: %v", err)
	}
	if g.State() != core.StateOngoing {
		t.Fatalf("seated game state = %s", g.State())
	}

	for i, text := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		player := "alice"
		if i%2 == 1 {
			player = "bob"
		}
		if _, err := g.Apply(player, mustMove(t, text)); err != nil {
			t.Fatalf("move %s: %v", text, err)
		}
	}
	if g.State() != core.StateBlackWins || !g.State().IsOver() {
		t.Fatalf("after fool's mate state = %s", g.State())
	}
}

func TestApplyRejectionLeavesGame(t *testing.T) {
	g := seatedGame(t)
	before := g.Current()
	if _, err := g.Apply("bob", mustMove(t, "e7e5")); !errors.Is(err, rules.ErrNotYourTurn) {
		t.Fatalf("error = %v", err)
	}
	if g.Current() != before || g.MoveCount() != 0 {
		t.Fatalf("rejected move changed the game")
	}
}

func TestHistoryAndResponse(t *testing.T) {
	g := seatedGame(t)
	snap, err := g.Apply("alice", mustMove(t, "e2e4"))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if snap.Move != "e2e4" || snap.Mover != rules.White {
		t.Fatalf("snapshot = %+v", snap)
	}
	if _, err := g.Apply("bob", mustMove(t, "e7e5")); err != nil {
		t.Fatalf("apply: %v", err)
	}

	resp := g.Response("bob")
	if resp.MoveCount != 2 || len(resp.Moves) != 2 || resp.Moves[1] != "e7e5" {
		t.Fatalf("history = %d %v", resp.MoveCount, resp.Moves)
	}
	if resp.MyColor != "B" || resp.WhoseTurn != "W" || resp.State != "ongoing" {
		t.Fatalf("response = %+v", resp)
	}
	if resp.LastMove == nil || resp.LastMove.Move != "e7e5" || resp.LastMove.PlayerColor != "B" {
		t.Fatalf("lastMove = %+v", resp.LastMove)
	}
	if resp.FEN != g.CurrentFEN() {
		t.Fatalf("fen mismatch")
	}
}

func TestRecordRestore(t *testing.T) {
	g := seatedGame(t)
	for i, text := range []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6", "O-O"} {
		player := "alice"
		if i%2 == 1 {
			player = "bob"
		}
		if _, err := g.Apply(player, mustMove(t, text)); err != nil {
			t.Fatalf("move %s: %v", text, err)
		}
	}

	rec := g.Record()
	restored, err := Restore(rec)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Current() != g.Current() {
		t.Fatalf("restored state differs:\n%s\n%s", restored.CurrentFEN(), g.CurrentFEN())
	}
	if restored.MoveCount() != 7 || restored.State() != core.StateOngoing {
		t.Fatalf("restored count=%d state=%s", restored.MoveCount(), restored.State())
	}

	rec.Moves = append(rec.Moves, "e1e2")
	if _, err := Restore(rec); err == nil {
		t.Fatalf("restore accepted an illegal move")
	}
}

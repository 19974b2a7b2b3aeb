package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"chessduel/internal/server/core"
	"chessduel/internal/server/rules"
	"chessduel/internal/server/storage"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func mustMove(t *testing.T, text string) rules.Move {
	t.Helper()
	m, err := rules.ParseMove(text)
	if err != nil {
		t.Fatalf("parse %q: %v", text, err)
	}
	return m
}

func TestIssueAndValidatePlayer(t *testing.T) {
	svc := New(Config{TokenSecret: testSecret})

	id, err := svc.IssuePlayer()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if id.PlayerID == "" || id.Token == "" || !id.ExpiresAt.After(time.Now()) {
		t.Fatalf("identity = %+v", id)
	}

	playerID, _, err := svc.ValidateToken(id.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if playerID != id.PlayerID {
		t.Fatalf("validated id = %q, want %q", playerID, id.PlayerID)
	}

	if _, _, err := svc.ValidateToken(id.Token + "x"); err == nil {
		t.Fatalf("tampered token accepted")
	}

	other := New(Config{TokenSecret: []byte("another-secret-another-secret-00")})
	if _, _, err := other.ValidateToken(id.Token); err == nil {
		t.Fatalf("token accepted under a different secret")
	}

	if _, err := New(Config{}).IssuePlayer(); !errors.Is(err, ErrNoSecret) {
		t.Fatalf("issue without secret error = %v", err)
	}
}

func TestGameLifecycle(t *testing.T) {
	svc := New(Config{TokenSecret: testSecret})
	id := svc.GenerateGameID()
	if _, err := svc.CreateGame(id); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateGame(id); err == nil {
		t.Fatalf("duplicate id accepted")
	}

	if _, err := svc.JoinGame(id, "alice", rules.White); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := svc.JoinGame(id, "bob", rules.White); !errors.Is(err, rules.ErrSeatTaken) {
		t.Fatalf("taken seat error = %v", err)
	}
	if _, err := svc.JoinGame(id, "bob", rules.Black); err != nil {
		t.Fatalf("join: %v", err)
	}

	g, err := svc.ApplyMove(id, "alice", mustMove(t, "e2e4"))
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if g.MoveCount() != 1 {
		t.Fatalf("move count = %d", g.MoveCount())
	}
	if _, err := svc.ApplyMove(id, "alice", mustMove(t, "d2d4")); !errors.Is(err, rules.ErrNotYourTurn) {
		t.Fatalf("out of turn error = %v", err)
	}

	if err := svc.DeleteGame(id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetGame(id); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("get deleted error = %v", err)
	}
	if err := svc.DeleteGame(id); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("second delete error = %v", err)
	}
}

func TestRestoreFromSnapshots(t *testing.T) {
	dir := t.TempDir()
	snaps, err := storage.OpenSnapshotStore(dir, nil)
	if err != nil {
		t.Fatalf("open snapshots: %v", err)
	}
	svc := New(Config{TokenSecret: testSecret, Snapshots: snaps})

	id := svc.GenerateGameID()
	svc.CreateGame(id)
	svc.JoinGame(id, "alice", rules.White)
	svc.JoinGame(id, "bob", rules.Black)
	for i, text := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		player := "alice"
		if i%2 == 1 {
			player = "bob"
		}
		if _, err := svc.ApplyMove(id, player, mustMove(t, text)); err != nil {
			t.Fatalf("move %s: %v", text, err)
		}
	}
	want, _ := svc.GetGame(id)
	wantFEN := want.CurrentFEN()

	if err := svc.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	snaps, err = storage.OpenSnapshotStore(dir, nil)
	if err != nil {
		t.Fatalf("reopen snapshots: %v", err)
	}
	restarted := New(Config{TokenSecret: testSecret, Snapshots: snaps})
	defer restarted.Shutdown(time.Second)

	n, err := restarted.RestoreGames()
	if err != nil || n != 1 {
		t.Fatalf("restored %d games, err %v", n, err)
	}
	g, err := restarted.GetGame(id)
	if err != nil {
		t.Fatalf("get restored: %v", err)
	}
	if g.CurrentFEN() != wantFEN || g.State() != core.StateBlackWins || g.MoveCount() != 4 {
		t.Fatalf("restored fen=%s state=%s moves=%d", g.CurrentFEN(), g.State(), g.MoveCount())
	}
	if restarted.GetSnapshotHealth() != "ok" || restarted.GetStorageHealth() != "disabled" {
		t.Fatalf("health = %s/%s", restarted.GetSnapshotHealth(), restarted.GetStorageHealth())
	}
}

func TestWaitRegistry(t *testing.T) {
	w := NewWaitRegistry()
	defer w.Shutdown(time.Second)
	ctx := context.Background()

	same := w.RegisterWait(ctx, "g", 3)
	stale := w.RegisterWait(ctx, "g", 2)

	w.NotifyGame("g", 3)
	select {
	case <-stale:
	case <-time.After(time.Second):
		t.Fatalf("waiter with an old move count was not woken")
	}
	select {
	case <-same:
		t.Fatalf("waiter with the current move count was woken")
	default:
	}

	w.NotifyGame("g", 4)
	select {
	case <-same:
	case <-time.After(time.Second):
		t.Fatalf("waiter not woken after a move")
	}
	if n := w.Waiting("g"); n != 0 {
		t.Fatalf("%d waiters left registered", n)
	}
}

func TestWaitRegistryReleases(t *testing.T) {
	w := NewWaitRegistry()
	w.timeout = 50 * time.Millisecond

	timedOut := w.RegisterWait(context.Background(), "g", 0)
	select {
	case <-timedOut:
	case <-time.After(time.Second):
		t.Fatalf("wait did not time out")
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.timeout = time.Minute
	cancelled := w.RegisterWait(ctx, "g", 0)
	cancel()
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatalf("wait not released on cancel")
	}

	deleted := w.RegisterWait(context.Background(), "h", 0)
	w.RemoveGame("h")
	select {
	case <-deleted:
	case <-time.After(time.Second):
		t.Fatalf("wait not released on game removal")
	}

	pending := w.RegisterWait(context.Background(), "k", 0)
	if err := w.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	select {
	case <-pending:
	default:
		t.Fatalf("wait not released on shutdown")
	}
}

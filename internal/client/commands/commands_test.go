package commands

import (
	"bytes"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"chessduel/internal/client/display"
	"chessduel/internal/client/session"
	serverhttp "chessduel/internal/server/http"
	"chessduel/internal/server/processor"
	"chessduel/internal/server/service"
)

func init() {
	display.Disable()
}

// startServer runs the API on a loopback port and returns its base URL
func startServer(t *testing.T) string {
	t.Helper()
	svc := service.New(service.Config{TokenSecret: []byte("0123456789abcdef0123456789abcdef")})
	proc := processor.New(svc, 2, nil)
	app := serverhttp.NewFiberApp(proc, svc, true)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go app.Listener(ln)

	t.Cleanup(func() {
		app.ShutdownWithTimeout(time.Second)
		proc.Close()
		svc.Shutdown(time.Second)
	})
	return "http://" + ln.Addr().String()
}

type client struct {
	t   *testing.T
	s   *session.Session
	reg *Registry
	out *bytes.Buffer
}

func newClient(t *testing.T, url string) *client {
	out := &bytes.Buffer{}
	s := session.New(url, out)
	return &client{t: t, s: s, reg: NewRegistry(s), out: out}
}

// run executes a line and returns what it printed
func (c *client) run(line string) string {
	c.t.Helper()
	c.out.Reset()
	if err := c.reg.Execute(line); err != nil {
		c.t.Fatalf("%s: %v", line, err)
	}
	return c.out.String()
}

func TestGameSession(t *testing.T) {
	url := startServer(t)
	white := newClient(t, url)
	black := newClient(t, url)

	out := white.run("new W")
	if white.s.PlayerID == "" || white.s.CurrentGame == "" {
		t.Fatalf("new W did not set up the session:\n%s", out)
	}
	if white.s.Color() != "W" || !strings.Contains(out, "Waiting for players (open: B)") {
		t.Fatalf("after new W:\n%s", out)
	}
	gameID := white.s.CurrentGame

	black.run("join " + gameID + " B")
	if black.s.Color() != "B" || !black.s.GameState.ReadyToStart {
		t.Fatalf("black not seated: %+v", black.s.GameState)
	}

	out = white.run("move e2e4")
	if !strings.Contains(out, "Black to move") {
		t.Fatalf("move output:\n%s", out)
	}
	if white.s.MoveCount() != 1 {
		t.Fatalf("move count = %d", white.s.MoveCount())
	}

	out = white.run("move d2d4")
	if !strings.Contains(out, "Rejected: It is not your turn.") {
		t.Fatalf("out of turn output:\n%s", out)
	}

	out = black.run("poll")
	if black.s.MoveCount() != 1 || !strings.Contains(out, "Black to move") {
		t.Fatalf("poll output:\n%s", out)
	}

	out = black.run("hint g8")
	if !strings.Contains(out, "f6") || !strings.Contains(out, "h6") {
		t.Fatalf("hint output:\n%s", out)
	}

	out = black.run("show")
	if !strings.Contains(out, "FEN: rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq") {
		t.Fatalf("show output:\n%s", out)
	}
	if !strings.Contains(out, "Moves: 1. e2e4") {
		t.Fatalf("show lacks move list:\n%s", out)
	}

	out = white.run("delete")
	if white.s.CurrentGame != "" || !strings.Contains(out, "Game deleted") {
		t.Fatalf("delete output:\n%s", out)
	}
	black.run("poll")
	if black.s.CurrentGame != "" {
		t.Fatalf("poll on a deleted game kept it current")
	}
}

func TestCommandErrors(t *testing.T) {
	url := startServer(t)
	c := newClient(t, url)

	tests := []struct {
		line string
		want string
	}{
		{"move e2e4", "no current game"},
		{"new X", "color must be W or B"},
		{"join", "usage: join"},
		{"bogus", "Unknown command: bogus"},
		{"join 00000000-0000-0000-0000-000000000000", "game not found"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if out := c.run(tt.line); !strings.Contains(out, tt.want) {
				t.Fatalf("output lacks %q:\n%s", tt.want, out)
			}
		})
	}

	if err := c.reg.Execute("exit"); !errors.Is(err, ErrExit) {
		t.Fatalf("exit returned %v", err)
	}
}

func TestFormatMoves(t *testing.T) {
	got := formatMoves([]string{"e2e4", "e7e5", "g1f3"})
	if got != "1. e2e4 e7e5 2. g1f3" {
		t.Fatalf("formatMoves = %q", got)
	}
}

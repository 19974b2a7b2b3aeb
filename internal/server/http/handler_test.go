package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"chessduel/internal/server/core"
	"chessduel/internal/server/processor"
	"chessduel/internal/server/service"

	"github.com/gofiber/fiber/v2"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type testServer struct {
	t   *testing.T
	app *fiber.App
	svc *service.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	svc := service.New(service.Config{TokenSecret: testSecret})
	proc := processor.New(svc, 2, nil)
	t.Cleanup(func() {
		proc.Close()
		svc.Shutdown(time.Second)
	})
	return &testServer{t: t, app: NewFiberApp(proc, svc, true), svc: svc}
}

// do sends a request and decodes the JSON reply into out when out is non-nil
func (s *testServer) do(method, path, token, body string, out any) int {
	s.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, 5000)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			s.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (s *testServer) player() core.PlayerResponse {
	s.t.Helper()
	var p core.PlayerResponse
	if code := s.do("POST", "/api/v1/players", "", "", &p); code != fiber.StatusCreated {
		s.t.Fatalf("create player status = %d", code)
	}
	return p
}

// seatedGame returns a game with white and black seated
func (s *testServer) seatedGame() (gameID string, white, black core.PlayerResponse) {
	s.t.Helper()
	white, black = s.player(), s.player()

	var g core.GameResponse
	if code := s.do("POST", "/api/v1/games", white.Token, `{"color":"W"}`, &g); code != fiber.StatusCreated {
		s.t.Fatalf("create game status = %d", code)
	}
	if code := s.do("POST", "/api/v1/games/"+g.GameID+"/players", black.Token, `{"color":"B"}`, &g); code != fiber.StatusOK {
		s.t.Fatalf("join status = %d", code)
	}
	return g.GameID, white, black
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	var body map[string]any
	if code := s.do("GET", "/health", "", "", &body); code != fiber.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["status"] != "healthy" || body["storage"] != "disabled" {
		t.Fatalf("health = %v", body)
	}
}

func TestCreatePlayerSetsCookie(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest("POST", "/api/v1/players", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var found bool
	for _, ck := range resp.Cookies() {
		if ck.Name == PlayerCookie && ck.Value != "" && ck.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Fatalf("no %s cookie in %v", PlayerCookie, resp.Header.Values("Set-Cookie"))
	}
}

func TestCookieIdentity(t *testing.T) {
	s := newTestServer(t)
	p := s.player()

	req, _ := http.NewRequest("POST", "/api/v1/games", strings.NewReader(`{"color":"B"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: PlayerCookie, Value: p.Token})
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var g core.GameResponse
	json.NewDecoder(resp.Body).Decode(&g)
	if resp.StatusCode != fiber.StatusCreated || g.MyColor != "B" {
		t.Fatalf("status %d, myColor %q", resp.StatusCode, g.MyColor)
	}
}

func TestCreateGameRequests(t *testing.T) {
	s := newTestServer(t)
	p := s.player()

	tests := []struct {
		name   string
		token  string
		body   string
		status int
		code   string
	}{
		{"empty body", "", "", fiber.StatusCreated, ""},
		{"empty object", "", `{}`, fiber.StatusCreated, ""},
		{"seat caller", p.Token, `{"color":"W"}`, fiber.StatusCreated, ""},
		{"seat anonymous", "", `{"color":"W"}`, fiber.StatusUnauthorized, core.ErrUnauthorized},
		{"invalid token is anonymous", "garbage", `{"color":"W"}`, fiber.StatusUnauthorized, core.ErrUnauthorized},
		{"bad color", p.Token, `{"color":"X"}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"malformed json", p.Token, `{"color":`, fiber.StatusBadRequest, core.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			code := s.do("POST", "/api/v1/games", tt.token, tt.body, &body)
			if code != tt.status {
				t.Fatalf("status = %d, want %d (%v)", code, tt.status, body)
			}
			if tt.code != "" && body["code"] != tt.code {
				t.Fatalf("code = %v, want %s", body["code"], tt.code)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest("POST", "/api/v1/games", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnsupportedMediaType {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestJoinErrors(t *testing.T) {
	s := newTestServer(t)
	gameID, _, _ := s.seatedGame()
	other := s.player()

	var e core.ErrorResponse
	if code := s.do("POST", "/api/v1/games/"+gameID+"/players", other.Token, `{"color":"W"}`, &e); code != fiber.StatusConflict || e.Code != core.ErrSeatTaken {
		t.Fatalf("taken seat: %d %+v", code, e)
	}
	if e.Error != "White is already assigned." {
		t.Fatalf("message = %q", e.Error)
	}
	if code := s.do("POST", "/api/v1/games/not-a-uuid/players", other.Token, `{"color":"W"}`, nil); code != fiber.StatusBadRequest {
		t.Fatalf("bad id status = %d", code)
	}
	missing := "00000000-0000-0000-0000-000000000000"
	if code := s.do("POST", "/api/v1/games/"+missing+"/players", other.Token, `{"color":"W"}`, nil); code != fiber.StatusNotFound {
		t.Fatalf("unknown game status = %d", code)
	}
	if code := s.do("POST", "/api/v1/games/"+gameID+"/players", other.Token, `{}`, nil); code != fiber.StatusBadRequest {
		t.Fatalf("missing color status = %d", code)
	}
}

func TestPlayMoves(t *testing.T) {
	s := newTestServer(t)
	gameID, white, black := s.seatedGame()
	path := "/api/v1/games/" + gameID + "/moves"

	var mr core.MoveResponse
	if code := s.do("POST", path, white.Token, `{"move":"e2e4"}`, &mr); code != fiber.StatusOK || !mr.MoveResult.Success {
		t.Fatalf("e2e4: %d %+v", code, mr.MoveResult)
	}

	// Rule rejection keeps the original wire contract
	mr = core.MoveResponse{}
	if code := s.do("POST", path, white.Token, `{"move":"d2d4"}`, &mr); code != fiber.StatusOK {
		t.Fatalf("out of turn status = %d", code)
	}
	if mr.MoveResult.Success || mr.MoveResult.Message != "It is not your turn." || mr.GameStatus.MoveCount != 1 {
		t.Fatalf("out of turn = %+v", mr)
	}

	mr = core.MoveResponse{}
	body := `{"srcPos":{"rank":1,"file":4},"dstPos":{"rank":3,"file":4}}`
	if code := s.do("POST", path, black.Token, body, &mr); code != fiber.StatusOK || !mr.MoveResult.Success {
		t.Fatalf("e7e5 by squares: %d %+v", code, mr.MoveResult)
	}
	if mr.GameStatus.WhoseTurn != "W" || mr.GameStatus.MyColor != "B" {
		t.Fatalf("status after e7e5 = %+v", mr.GameStatus)
	}

	var e core.ErrorResponse
	if code := s.do("POST", path, white.Token, `{"castling":"X"}`, &e); code != fiber.StatusBadRequest || e.Code != core.ErrInvalidMove {
		t.Fatalf("bad castling: %d %+v", code, e)
	}
	if code := s.do("POST", path, white.Token, `{"srcPos":{"rank":9,"file":0},"dstPos":{"rank":0,"file":0}}`, &e); code != fiber.StatusBadRequest {
		t.Fatalf("off-board square status = %d", code)
	}

	var board core.BoardResponse
	s.do("GET", "/api/v1/games/"+gameID+"/board", "", "", &board)
	if !strings.HasPrefix(board.FEN, "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w") {
		t.Fatalf("fen = %s", board.FEN)
	}

	var dr core.DestinationsResponse
	if code := s.do("GET", path+"?from=d1", "", "", &dr); code != fiber.StatusOK || len(dr.Squares) != 4 {
		t.Fatalf("d1 destinations: %d %+v", code, dr)
	}
	if code := s.do("GET", path+"?from=i9", "", "", &e); code != fiber.StatusBadRequest || e.Code != core.ErrInvalidSquare {
		t.Fatalf("bad square: %d %+v", code, e)
	}
}

func TestLongPoll(t *testing.T) {
	s := newTestServer(t)
	gameID, white, _ := s.seatedGame()

	type result struct {
		code int
		g    core.GameResponse
	}
	done := make(chan result, 1)
	go func() {
		req, _ := http.NewRequest("GET", "/api/v1/games/"+gameID+"?wait=true&moveCount=0", nil)
		resp, err := s.app.Test(req, 5000)
		if err != nil {
			done <- result{}
			return
		}
		defer resp.Body.Close()
		var g core.GameResponse
		json.NewDecoder(resp.Body).Decode(&g)
		done <- result{resp.StatusCode, g}
	}()

	time.Sleep(50 * time.Millisecond)
	s.do("POST", "/api/v1/games/"+gameID+"/moves", white.Token, `{"move":"e2e4"}`, nil)

	select {
	case r := <-done:
		if r.code != fiber.StatusOK || r.g.MoveCount != 1 || r.g.LastMove == nil || r.g.LastMove.Move != "e2e4" {
			t.Fatalf("long poll = %d %+v", r.code, r.g)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("long poll not released by move")
	}

	// A stale move count answers immediately
	var g core.GameResponse
	if code := s.do("GET", "/api/v1/games/"+gameID+"?wait=true&moveCount=0", "", "", &g); code != fiber.StatusOK || g.MoveCount != 1 {
		t.Fatalf("stale poll = %d %+v", code, g)
	}

	// The stale poll's registration is released on return
	deadline := time.Now().Add(time.Second)
	for s.svc.Waiting(gameID) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("%d waiters left after stale poll", s.svc.Waiting(gameID))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDeleteGame(t *testing.T) {
	s := newTestServer(t)
	gameID, white, _ := s.seatedGame()
	outsider := s.player()

	if code := s.do("DELETE", "/api/v1/games/"+gameID, outsider.Token, "", nil); code != fiber.StatusForbidden {
		t.Fatalf("outsider delete status = %d", code)
	}
	if code := s.do("DELETE", "/api/v1/games/"+gameID, white.Token, "", nil); code != fiber.StatusNoContent {
		t.Fatalf("delete status = %d", code)
	}
	if code := s.do("GET", "/api/v1/games/"+gameID, "", "", nil); code != fiber.StatusNotFound {
		t.Fatalf("get deleted status = %d", code)
	}
}

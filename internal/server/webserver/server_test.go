package webserver

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestRegister(t *testing.T) {
	app := fiber.New()
	app.Get("/api/v1/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	if err := Register(app); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		path        string
		status      int
		contentType string
		contains    string
	}{
		{"/", fiber.StatusOK, "text/html", "<title>chessduel</title>"},
		{"/app.js", fiber.StatusOK, "application/javascript", "/api/v1"},
		{"/styles.css", fiber.StatusOK, "text/css", "#board"},
		{"/some/client/route", fiber.StatusOK, "text/html", "<title>chessduel</title>"},
		{"/api/v1/ping", fiber.StatusOK, "text/plain", "pong"},
		{"/api/v1/unknown", fiber.StatusNotFound, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httpGet(tt.path))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.contentType != "" && !strings.HasPrefix(resp.Header.Get("Content-Type"), tt.contentType) {
				t.Fatalf("content type = %q", resp.Header.Get("Content-Type"))
			}
			body, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(body), tt.contains) {
				t.Fatalf("body lacks %q", tt.contains)
			}
		})
	}
}

func httpGet(path string) *http.Request {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	return req
}

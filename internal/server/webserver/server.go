package webserver

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/gofiber/fiber/v2"
)

//go:embed web
var webFS embed.FS

// Register mounts the embedded web UI on app. It must be called after the
// API routes so they take precedence over the catch-all.
func Register(app *fiber.App) error {
	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		return fmt.Errorf("failed to create web sub-filesystem: %w", err)
	}

	app.Get("*", func(c *fiber.Ctx) error {
		path := c.Path()
		if strings.HasPrefix(path, "/api/") {
			return fiber.ErrNotFound
		}

		if path == "/" {
			path = "/index.html"
		}
		fsPath := strings.TrimPrefix(path, "/")

		data, err := fs.ReadFile(webContent, fsPath)
		if err != nil {
			// Unknown paths fall back to the page so /?game=<id> links work
			data, err = fs.ReadFile(webContent, "index.html")
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("index.html not found")
			}
			c.Set("Content-Type", "text/html; charset=utf-8")
			return c.Send(data)
		}

		contentType := "application/octet-stream"
		switch {
		case strings.HasSuffix(fsPath, ".html"):
			contentType = "text/html; charset=utf-8"
		case strings.HasSuffix(fsPath, ".js"):
			contentType = "application/javascript; charset=utf-8"
		case strings.HasSuffix(fsPath, ".css"):
			contentType = "text/css; charset=utf-8"
		}
		c.Set("Content-Type", contentType)

		return c.Send(data)
	})

	return nil
}

package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PlayerCookie holds the identity token issued by POST /api/v1/players
const PlayerCookie = "playerid"

// TokenValidator validates identity tokens
type TokenValidator func(token string) (playerID string, claims map[string]any, err error)

// Identity resolves the caller from the bearer token, falling back to the
// playerid cookie. Missing or invalid tokens leave the caller anonymous;
// handlers decide what anonymous callers may do.
func Identity(validateToken TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c.Get("Authorization"))
		if token == "" {
			token = c.Cookies(PlayerCookie)
		}
		if token == "" {
			return c.Next()
		}

		if id, _, err := validateToken(token); err == nil {
			c.Locals("playerID", id)
		}
		return c.Next()
	}
}

// playerID returns the caller resolved by Identity, or "" when anonymous
func playerID(c *fiber.Ctx) string {
	id, _ := c.Locals("playerID").(string)
	return id
}

// extractBearerToken extracts the token from an Authorization header
func extractBearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}

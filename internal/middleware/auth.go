package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

// ExternalIDKey is the Locals key carrying the authenticated external user id.
const ExternalIDKey = "external_id"

// AuthMiddleware extracts the external auth identity from the bearer token.
// Token validation belongs to the out-of-scope auth layer; here the token
// subject is taken as the external user id. Public paths bypass auth.
func AuthMiddleware() fiber.Handler {
	publicPrefixes := []string{"/health", "/swagger"}

	return func(c fiber.Ctx) error {
		path := c.Path()

		// Skip auth for public paths
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing Authorization header",
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid Authorization header format, expected 'Bearer <token>'",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "empty bearer token",
			})
		}

		c.Locals(ExternalIDKey, token)

		return c.Next()
	}
}

// ExternalID returns the authenticated external user id for a request.
func ExternalID(c fiber.Ctx) string {
	id, _ := c.Locals(ExternalIDKey).(string)
	return id
}

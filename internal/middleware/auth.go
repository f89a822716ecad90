package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/picreel/internal/logger"
)

// APIKeyHeader carries the admin key. "Bearer " prefixes are accepted.
const APIKeyHeader = "X-API-Key"

// AdminOnly rejects requests that do not present adminKey. An empty adminKey
// closes the route entirely.
func AdminOnly(adminKey string) fiber.Handler {
	log := logger.For("auth")

	return func(c *fiber.Ctx) error {
		apiKey := strings.TrimPrefix(c.Get(APIKeyHeader), "Bearer ")
		if apiKey == "" {
			log.Warn().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("Admin access attempt without API key")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "API key is required",
			})
		}

		if adminKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(adminKey)) != 1 {
			log.Warn().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("Unauthorized admin access attempt")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}

		return c.Next()
	}
}

package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"support-chat/auth"
	"support-chat/errors"
)

// requireAdmin guards the admin-only endpoints. The token travels as a
// standard Bearer header; claims land in locals for the handlers.
func requireAdmin(tokens auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return fail(c, errors.ErrInvalidPassword)
		}
		claims, err := tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil || claims.Role != "admin" {
			return fail(c, errors.ErrInvalidPassword)
		}
		c.Locals("role", claims.Role)
		return c.Next()
	}
}

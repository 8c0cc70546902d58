package services

import (
	"github.com/gofiber/fiber/v2"
)

// currentUserID reads the identity set by the auth middleware.
func currentUserID(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_id").(string); ok {
		return v
	}
	return ""
}

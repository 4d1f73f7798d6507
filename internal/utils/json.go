package utils

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorJSON writes the error body every API route uses
func ErrorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message, "code": code})
}

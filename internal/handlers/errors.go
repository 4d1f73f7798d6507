package handlers

import (
	"net/http"

	"event-album/internal/services"
	"event-album/internal/utils"

	"github.com/gofiber/fiber/v2"
)

func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindInvalidRequest, services.KindDecode:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a classified error as {"error": ..., "code": ...}
func writeError(c *fiber.Ctx, err error) error {
	kind := services.KindOf(err)
	return utils.ErrorJSON(c, statusFor(kind), string(kind), services.Message(err))
}

func badRequest(c *fiber.Ctx, message string) error {
	return utils.ErrorJSON(c, http.StatusBadRequest, string(services.KindInvalidRequest), message)
}

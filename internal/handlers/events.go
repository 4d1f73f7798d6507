package handlers

import (
	"net/http"

	"event-album/internal/models"
	"event-album/internal/services"

	"github.com/gofiber/fiber/v2"
)

func ListEventsHandler(events *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := events.List(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(list)
	}
}

func CreateEventHandler(events *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.CreateEventRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request")
		}

		event, err := events.Create(c.UserContext(), req)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(http.StatusCreated).JSON(event)
	}
}

func GetEventHandler(events *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event, err := events.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(event)
	}
}

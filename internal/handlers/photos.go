package handlers

import (
	"net/http"

	"event-album/internal/models"
	"event-album/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UploadPhotoHandler accepts {event_id, photo_data} from the capture page
func UploadPhotoHandler(photos *services.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.UploadPhotoRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request")
		}

		photo, err := photos.Upload(c.UserContext(), req)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(http.StatusCreated).JSON(photo)
	}
}

// ListPhotosHandler returns an event's album, newest first
func ListPhotosHandler(album *services.AlbumService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		photos, err := album.List(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(photos)
	}
}

package handlers

import (
	"strconv"
	"strings"

	"event-album/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ExportAlbumHandler sends the whole album as one buffered ZIP attachment
func ExportAlbumHandler(album *services.AlbumService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		archive, err := album.Export(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}

		c.Attachment(archive.Name)
		c.Set(fiber.HeaderContentType, "application/zip")
		c.Set("X-Archive-Entries", strconv.Itoa(archive.Entries))
		return c.Send(archive.Data)
	}
}

// QRCodeHandler renders the guest capture link of an event as a PNG download.
// publicBaseURL wins over the request origin when set.
func QRCodeHandler(events *services.EventService, publicBaseURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event, err := events.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}

		origin := strings.TrimSpace(publicBaseURL)
		if origin == "" {
			origin = c.BaseURL()
		}

		png, err := services.RenderQR(origin, event.ID)
		if err != nil {
			return writeError(c, err)
		}

		c.Attachment(services.QRFileName(event.ID))
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(png)
	}
}

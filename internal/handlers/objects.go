package handlers

import (
	"errors"
	"net/http"

	"event-album/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// ServeObjectHandler serves stored photos with the headers they were written with
func ServeObjectHandler(objects storage.ObjectStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		obj, err := objects.Get(c.UserContext(), c.Params("*"))
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				return c.SendStatus(http.StatusNotFound)
			}
			return c.SendStatus(http.StatusInternalServerError)
		}

		c.Set(fiber.HeaderContentType, obj.ContentType)
		if obj.CacheControl != "" {
			c.Set(fiber.HeaderCacheControl, obj.CacheControl)
		}
		return c.Send(obj.Data)
	}
}

package handlers

import (
	"net/http"

	"event-album/internal/models"
	"event-album/internal/services"
	"event-album/internal/web"

	"github.com/gofiber/fiber/v2"
)

type pageData struct {
	Title   string
	Message string
	Event   *models.Event
	Events  []models.Event
	Photos  []models.Photo
}

func render(c *fiber.Ctx, status int, name string, data pageData) error {
	c.Status(status)
	c.Type("html", "utf-8")
	return web.Render(c.Response().BodyWriter(), name, data)
}

// renderError shows the error page with the status of a classified error
func renderError(c *fiber.Ctx, err error) error {
	status := statusFor(services.KindOf(err))
	title := "Erro"
	if status == http.StatusNotFound {
		title = "Evento não encontrado"
	}
	return render(c, status, "error.html", pageData{Title: title, Message: services.Message(err)})
}

func HomePage(c *fiber.Ctx) error {
	return render(c, http.StatusOK, "home.html", pageData{Title: "Event Album"})
}

// CapturePage is the guest page reached through the event QR code
func CapturePage(events *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event, err := events.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return renderError(c, err)
		}
		return render(c, http.StatusOK, "capture.html", pageData{Title: event.Name, Event: event})
	}
}

func LoginPage(c *fiber.Ctx) error {
	return render(c, http.StatusOK, "login.html", pageData{Title: "Login"})
}

func DashboardPage(events *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := events.List(c.UserContext())
		if err != nil {
			return renderError(c, err)
		}
		return render(c, http.StatusOK, "dashboard.html", pageData{Title: "Eventos", Events: list})
	}
}

func AlbumPage(events *services.EventService, album *services.AlbumService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event, err := events.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return renderError(c, err)
		}
		photos, err := album.List(c.UserContext(), event.ID)
		if err != nil {
			return renderError(c, err)
		}
		return render(c, http.StatusOK, "album.html", pageData{Title: event.Name, Event: event, Photos: photos})
	}
}

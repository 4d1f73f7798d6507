package handlers

import (
	"net/http"
	"strings"
	"time"

	"event-album/internal/models"
	"event-album/internal/services"

	"github.com/gofiber/fiber/v2"
)

const SessionCookie = "admin_session"

// LoginHandler checks the administrator credentials and issues a session token
func LoginHandler(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request")
		}

		res, err := auth.Login(req)
		if err != nil {
			return writeError(c, err)
		}

		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    res.Token,
			Path:     "/",
			Expires:  res.ExpiresAt,
			HTTPOnly: true,
			Secure:   c.Protocol() == "https",
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.JSON(res)
	}
}

func LogoutHandler(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})
	return c.SendStatus(http.StatusNoContent)
}

// sessionToken reads the token from the Authorization header or the session cookie
func sessionToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok && token != "" {
		return token
	}
	return c.Cookies(SessionCookie)
}

// AuthMiddleware guards administrator API routes
func AuthMiddleware(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c)
		if token == "" {
			return writeError(c, services.ErrUnauthorized)
		}

		claims, err := auth.Validate(token)
		if err != nil {
			return writeError(c, err)
		}

		if email, ok := claims["email"].(string); ok {
			c.Locals("admin_email", email)
		}
		return c.Next()
	}
}

// AdminPageMiddleware sends anonymous visitors of admin pages to the login page
func AdminPageMiddleware(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c)
		if token == "" {
			return c.Redirect("/admin/login")
		}
		if _, err := auth.Validate(token); err != nil {
			return c.Redirect("/admin/login")
		}
		return c.Next()
	}
}

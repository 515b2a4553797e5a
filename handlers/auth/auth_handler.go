package handlers

import (
	"time"

	"p2h.app/handlers/httperr"
	"p2h.app/middlewares"
	"p2h.app/pkg/apiresponse"
	"p2h.app/services"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	service      services.IAuthService
	secureCookie bool
}

// NewAuthHandler builds the login handler. secureCookie marks the session
// cookie HTTPS-only.
func NewAuthHandler(service services.IAuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{service: service, secureCookie: secureCookie}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return httperr.BadBody(c)
	}

	result, err := h.service.Login(c.UserContext(), input)
	if err != nil {
		return httperr.Respond(c, "Login", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middlewares.SessionCookie,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return apiresponse.Item(c, fiber.StatusOK, result)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middlewares.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return apiresponse.Item(c, fiber.StatusOK, fiber.Map{"logged_out": true})
}

// Me echoes the verified claims of the caller.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor, ok := middlewares.CurrentActor(c)
	if !ok {
		return httperr.Unauthenticated(c)
	}
	return apiresponse.Item(c, fiber.StatusOK, fiber.Map{
		"user_id":    actor.UserID,
		"role":       actor.Role,
		"name":       actor.Name,
		"subject_id": actor.SubjectID,
	})
}

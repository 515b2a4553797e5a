package routes

import (
	auth_handlers "p2h.app/handlers/auth"
	"p2h.app/middlewares"

	"github.com/gofiber/fiber/v2"
)

func registerAuthRoutes(api fiber.Router, deps Dependencies, svc *serviceSet) {
	authHandler := auth_handlers.NewAuthHandler(svc.auth, deps.SecureCookie)
	requireAuth := middlewares.AuthMiddleware(deps.Issuer)

	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/logout", requireAuth, authHandler.Logout)
	api.Get("/me", requireAuth, authHandler.Me)
}

package routes

import (
	admin_handlers "p2h.app/handlers/admin"
	"p2h.app/middlewares"
	"p2h.app/models"

	"github.com/gofiber/fiber/v2"
)

// registerAdminRoutes mounts /api/admin for administrators.
func registerAdminRoutes(api fiber.Router, deps Dependencies, svc *serviceSet) {
	formHandler := admin_handlers.NewAdminFormHandler(svc.summary, svc.review)

	adminGroup := api.Group("/admin",
		middlewares.AuthMiddleware(deps.Issuer),
		middlewares.RequireRole(models.RoleAdmin),
	)
	adminGroup.Get("/forms", formHandler.ListForms)
	adminGroup.Get("/forms/stats", formHandler.Stats)
	adminGroup.Patch("/forms/:id/status", formHandler.OverrideStatus)
	adminGroup.Get("/forms/:id/history", formHandler.History)
	adminGroup.Get("/vehicles", formHandler.Fleet)
	adminGroup.Get("/vehicles/:id/today", formHandler.VehicleToday)
}

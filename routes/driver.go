package routes

import (
	driver_handlers "p2h.app/handlers/driver"
	"p2h.app/middlewares"
	"p2h.app/models"

	"github.com/gofiber/fiber/v2"
)

// registerDriverRoutes mounts /api/driver, open to drivers only.
func registerDriverRoutes(api fiber.Router, deps Dependencies, svc *serviceSet) {
	formHandler := driver_handlers.NewDriverFormHandler(svc.forms, svc.checklist, svc.summary)

	driverGroup := api.Group("/driver",
		middlewares.AuthMiddleware(deps.Issuer),
		middlewares.RequireRole(models.RoleDriver),
	)
	driverGroup.Post("/forms", formHandler.CreateForm)
	driverGroup.Get("/forms", formHandler.ListForms)
	driverGroup.Post("/forms/:id/evaluations", formHandler.SubmitEvaluations)
}

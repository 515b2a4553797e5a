package routes

import (
	shared_handlers "p2h.app/handlers/shared"
	"p2h.app/middlewares"

	"github.com/gofiber/fiber/v2"
)

// registerSharedRoutes mounts lookups used by every role.
func registerSharedRoutes(api fiber.Router, deps Dependencies, svc *serviceSet) {
	referenceHandler := shared_handlers.NewReferenceHandler(svc.reference, svc.summary)
	requireAuth := middlewares.AuthMiddleware(deps.Issuer)

	api.Get("/forms/:id/detail", requireAuth, referenceHandler.FormDetail)
	api.Get("/inspection-items", requireAuth, referenceHandler.InspectionItems)
	api.Get("/supervisors", requireAuth, referenceHandler.Supervisors)
	api.Get("/vehicles", requireAuth, referenceHandler.Vehicles)
}

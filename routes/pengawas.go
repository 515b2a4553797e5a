package routes

import (
	pengawas_handlers "p2h.app/handlers/pengawas"
	"p2h.app/middlewares"
	"p2h.app/models"

	"github.com/gofiber/fiber/v2"
)

func registerPengawasRoutes(api fiber.Router, deps Dependencies, svc *serviceSet) {
	formHandler := pengawas_handlers.NewPengawasFormHandler(svc.summary, svc.review)

	pengawasGroup := api.Group("/pengawas",
		middlewares.AuthMiddleware(deps.Issuer),
		middlewares.RequireRole(models.RolePengawas),
	)
	pengawasGroup.Get("/forms", formHandler.ListForms)
	pengawasGroup.Patch("/forms/:id", formHandler.Review)
}

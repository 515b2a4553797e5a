package handlers

import (
	"p2h.app/handlers/httperr"
	"p2h.app/middlewares"
	"p2h.app/pkg/apiresponse"
	"p2h.app/services"

	"github.com/gofiber/fiber/v2"
)

// ReferenceHandler serves endpoints open to every logged-in role.
type ReferenceHandler struct {
	reference services.IReferenceService
	summary   services.ISummaryService
}

func NewReferenceHandler(reference services.IReferenceService, summary services.ISummaryService) *ReferenceHandler {
	return &ReferenceHandler{reference: reference, summary: summary}
}

// FormDetail returns a form with its evaluations. Forms outside the caller's
// scope answer 404.
func (h *ReferenceHandler) FormDetail(c *fiber.Ctx) error {
	actor, ok := middlewares.CurrentActor(c)
	if !ok {
		return httperr.Unauthenticated(c)
	}
	formID, ok, err := httperr.ParseID(c, "id")
	if !ok {
		return err
	}
	view, err := h.summary.Detail(c.UserContext(), actor, formID)
	if err != nil {
		return httperr.Respond(c, "FormDetail", err)
	}
	return apiresponse.Item(c, fiber.StatusOK, view)
}

func (h *ReferenceHandler) InspectionItems(c *fiber.Ctx) error {
	items, err := h.reference.InspectionItems(c.UserContext())
	if err != nil {
		return httperr.RespondList(c, "InspectionItems", err)
	}
	return apiresponse.List(c, items, nil)
}

// Supervisors backs the supervisor autocomplete (?search=&limit=).
func (h *ReferenceHandler) Supervisors(c *fiber.Ctx) error {
	found, err := h.reference.SearchSupervisors(c.UserContext(), c.Query("search"), c.QueryInt("limit", 0))
	if err != nil {
		return httperr.RespondList(c, "Supervisors", err)
	}
	return apiresponse.List(c, found, nil)
}

func (h *ReferenceHandler) Vehicles(c *fiber.Ctx) error {
	vehicles, err := h.reference.Vehicles(c.UserContext())
	if err != nil {
		return httperr.RespondList(c, "Vehicles", err)
	}
	return apiresponse.List(c, vehicles, nil)
}

package handlers

import (
	"p2h.app/handlers/httperr"
	"p2h.app/middlewares"
	"p2h.app/models"
	"p2h.app/pkg/apiresponse"
	"p2h.app/pkg/queryparams"
	"p2h.app/repositories"
	"p2h.app/services"

	"github.com/gofiber/fiber/v2"
)

// AdminFormHandler is the administrator's view over every form and vehicle.
type AdminFormHandler struct {
	summary services.ISummaryService
	review  services.IReviewService
}

func NewAdminFormHandler(summary services.ISummaryService, review services.IReviewService) *AdminFormHandler {
	return &AdminFormHandler{summary: summary, review: review}
}

// ListForms lists all forms, optionally narrowed by driver_nik, status and date.
func (h *AdminFormHandler) ListForms(c *fiber.Ctx) error {
	params := queryparams.DefaultListParams(queryparams.DefaultSortBy)
	if err := c.QueryParser(&params); err != nil {
		return apiresponse.ListError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	params.Validate()
	if params.Status != "" && !models.IsValidFormStatus(params.Status) {
		return apiresponse.ListError(c, fiber.StatusBadRequest, "status must be pending, approved or rejected")
	}

	filter := repositories.FormFilter{DriverNIK: params.DriverNIK, Status: params.Status, InspectionDate: params.Date}
	result, err := h.summary.ListForms(c.UserContext(), filter, params)
	if err != nil {
		return httperr.RespondList(c, "ListAdminForms", err)
	}
	return apiresponse.List(c, result.Data, result.Meta)
}

func (h *AdminFormHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.summary.Stats(c.UserContext(), repositories.FormFilter{})
	if err != nil {
		return httperr.Respond(c, "AdminStats", err)
	}
	return apiresponse.Item(c, fiber.StatusOK, stats)
}

// Fleet lists every vehicle with its inspection status for today.
func (h *AdminFormHandler) Fleet(c *fiber.Ctx) error {
	fleet, err := h.summary.Fleet(c.UserContext())
	if err != nil {
		return httperr.RespondList(c, "Fleet", err)
	}
	return apiresponse.List(c, fleet, fiber.Map{"date": h.summary.Today()})
}

func (h *AdminFormHandler) VehicleToday(c *fiber.Ctx) error {
	vehicleID, ok, err := httperr.ParseID(c, "id")
	if !ok {
		return err
	}
	view, err := h.summary.VehicleToday(c.UserContext(), vehicleID)
	if err != nil {
		return httperr.Respond(c, "VehicleToday", err)
	}
	return apiresponse.Item(c, fiber.StatusOK, view)
}

// OverrideStatus sets any status on any form.
func (h *AdminFormHandler) OverrideStatus(c *fiber.Ctx) error {
	actor, ok := middlewares.CurrentActor(c)
	if !ok {
		return httperr.Unauthenticated(c)
	}
	formID, ok, err := httperr.ParseID(c, "id")
	if !ok {
		return err
	}
	var input services.OverrideInput
	if err := c.BodyParser(&input); err != nil {
		return httperr.BadBody(c)
	}

	form, err := h.review.Override(c.UserContext(), actor, formID, input)
	if err != nil {
		return httperr.Respond(c, "OverrideStatus", err)
	}
	return apiresponse.Item(c, fiber.StatusOK, form)
}

func (h *AdminFormHandler) History(c *fiber.Ctx) error {
	formID, ok, err := httperr.ParseID(c, "id")
	if !ok {
		return err
	}
	entries, err := h.review.History(c.UserContext(), formID)
	if err != nil {
		return httperr.RespondList(c, "ReviewHistory", err)
	}
	return apiresponse.List(c, entries, nil)
}

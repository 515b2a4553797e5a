package handlers

import (
	"p2h.app/handlers/httperr"
	"p2h.app/middlewares"
	"p2h.app/models"
	"p2h.app/pkg/apiresponse"
	"p2h.app/pkg/queryparams"
	"p2h.app/services"

	"github.com/gofiber/fiber/v2"
)

// DriverFormHandler serves the driver's own inspections.
type DriverFormHandler struct {
	forms     services.IP2HFormService
	checklist services.IChecklistService
	summary   services.ISummaryService
}

func NewDriverFormHandler(forms services.IP2HFormService, checklist services.IChecklistService, summary services.ISummaryService) *DriverFormHandler {
	return &DriverFormHandler{forms: forms, checklist: checklist, summary: summary}
}

// CreateForm files a new inspection header.
func (h *DriverFormHandler) CreateForm(c *fiber.Ctx) error {
	actor, ok := middlewares.CurrentActor(c)
	if !ok {
		return httperr.Unauthenticated(c)
	}
	var input services.CreateFormInput
	if err := c.BodyParser(&input); err != nil {
		return httperr.BadBody(c)
	}

	form, err := h.forms.CreateForm(c.UserContext(), actor, input)
	if err != nil {
		return httperr.Respond(c, "CreateForm", err)
	}
	return apiresponse.Item(c, fiber.StatusCreated, fiber.Map{"id": form.ID, "status": form.Status})
}

// SubmitEvaluations stores the checklist of a form in one batch.
func (h *DriverFormHandler) SubmitEvaluations(c *fiber.Ctx) error {
	actor, ok := middlewares.CurrentActor(c)
	if !ok {
		return httperr.Unauthenticated(c)
	}
	formID, ok, err := httperr.ParseID(c, "id")
	if !ok {
		return err
	}
	var input services.CaptureInput
	if err := c.BodyParser(&input); err != nil {
		return httperr.BadBody(c)
	}

	hasIssues, err := h.checklist.Capture(c.UserContext(), actor, formID, input)
	if err != nil {
		return httperr.Respond(c, "SubmitEvaluations", err)
	}
	return apiresponse.Item(c, fiber.StatusOK, fiber.Map{"form_id": formID, "has_issues": hasIssues})
}

func (h *DriverFormHandler) ListForms(c *fiber.Ctx) error {
	actor, ok := middlewares.CurrentActor(c)
	if !ok {
		return httperr.Unauthenticated(c)
	}
	params := queryparams.DefaultListParams(queryparams.DefaultSortBy)
	if err := c.QueryParser(&params); err != nil {
		return apiresponse.ListError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	params.Validate()
	if params.Status != "" && !models.IsValidFormStatus(params.Status) {
		return apiresponse.ListError(c, fiber.StatusBadRequest, "status must be pending, approved or rejected")
	}

	result, err := h.summary.ListDriverForms(c.UserContext(), actor, params)
	if err != nil {
		return httperr.RespondList(c, "ListDriverForms", err)
	}
	return apiresponse.List(c, result.Data, result.Meta)
}

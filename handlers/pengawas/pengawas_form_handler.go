package handlers

import (
	"p2h.app/configs/configslog"
	"p2h.app/handlers/httperr"
	"p2h.app/middlewares"
	"p2h.app/models"
	"p2h.app/pkg/apiresponse"
	"p2h.app/pkg/queryparams"
	"p2h.app/repositories"
	"p2h.app/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PengawasFormHandler struct {
	summary services.ISummaryService
	review  services.IReviewService
}

func NewPengawasFormHandler(summary services.ISummaryService, review services.IReviewService) *PengawasFormHandler {
	return &PengawasFormHandler{summary: summary, review: review}
}

type listMeta struct {
	queryparams.PaginationMeta
	Stats *models.FormStats `json:"stats,omitempty"`
}

// ListForms lists the forms assigned to the calling supervisor with per
// status counts for the same scope.
func (h *PengawasFormHandler) ListForms(c *fiber.Ctx) error {
	actor, ok := middlewares.CurrentActor(c)
	if !ok || actor.SubjectID == nil {
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

	filter := repositories.FormFilter{SupervisorID: actor.SubjectID, Status: params.Status, InspectionDate: params.Date}
	result, err := h.summary.ListForms(c.UserContext(), filter, params)
	if err != nil {
		return httperr.RespondList(c, "ListPengawasForms", err)
	}
	meta := listMeta{PaginationMeta: result.Meta}
	stats, err := h.summary.Stats(c.UserContext(), filter)
	if err != nil {
		configslog.Log.Warn("Pengawas stats unavailable, listing without them", zap.Error(err))
	} else {
		meta.Stats = stats
	}
	return apiresponse.List(c, result.Data, meta)
}

// Review approves or rejects a pending form.
func (h *PengawasFormHandler) Review(c *fiber.Ctx) error {
	actor, ok := middlewares.CurrentActor(c)
	if !ok {
		return httperr.Unauthenticated(c)
	}
	formID, ok, err := httperr.ParseID(c, "id")
	if !ok {
		return err
	}
	var input services.ReviewInput
	if err := c.BodyParser(&input); err != nil {
		return httperr.BadBody(c)
	}

	form, err := h.review.Review(c.UserContext(), actor, formID, input)
	if err != nil {
		return httperr.Respond(c, "ReviewForm", err)
	}
	return apiresponse.Item(c, fiber.StatusOK, form)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"p2h.app/configs/configslog"
	"p2h.app/models"
	"p2h.app/pkg/metrics"
	"p2h.app/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EvaluationInput is one checklist answer. InspectionItemID is accepted as an
// alias of ItemID.
type EvaluationInput struct {
	ItemID           string `json:"item_id"`
	InspectionItemID string `json:"inspection_item_id"`
	Condition        string `json:"condition"`
	Notes            string `json:"notes"`
}

type CaptureInput struct {
	Evaluations []EvaluationInput `json:"evaluations"`
}

type IChecklistService interface {
	Capture(ctx context.Context, actor Actor, formID uuid.UUID, input CaptureInput) (bool, error)
}

type ChecklistService struct {
	db      *gorm.DB
	forms   repositories.IP2HFormRepository
	details repositories.IP2HFormDetailRepository
	items   repositories.IInspectionItemRepository
}

func NewChecklistService(db *gorm.DB) IChecklistService {
	return &ChecklistService{
		db:      db,
		forms:   repositories.NewP2HFormRepository(db),
		details: repositories.NewP2HFormDetailRepository(db),
		items:   repositories.NewInspectionItemRepository(db),
	}
}

// Capture stores the full checklist of a pending form in one transaction and
// reports whether any item was marked rusak.
func (s *ChecklistService) Capture(ctx context.Context, actor Actor, formID uuid.UUID, input CaptureInput) (bool, error) {
	form, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, ErrFormNotFound
		}
		return false, upstream("find form", err)
	}
	if !canCapture(actor, form) {
		return false, ErrFormNotFound
	}
	if !form.IsPending() {
		return false, ErrFormNotPending
	}
	captured, err := s.details.ExistsForForm(ctx, form.ID)
	if err != nil {
		return false, upstream("check existing evaluations", err)
	}
	if captured {
		return false, ErrChecklistAlreadySubmitted
	}

	activeItems, err := s.items.FindActive(ctx)
	if err != nil {
		return false, upstream("load checklist", err)
	}
	details, hasIssues, err := buildEvaluations(form.ID, activeItems, input.Evaluations)
	if err != nil {
		return false, err
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.WithTx(ctx, tx)
		// Re-check under the transaction so two concurrent submissions cannot both pass.
		locked, err := s.forms.FindByIDForUpdate(txCtx, form.ID)
		if err != nil {
			return err
		}
		if !locked.IsPending() {
			return ErrFormNotPending
		}
		exists, err := s.details.ExistsForForm(txCtx, form.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrChecklistAlreadySubmitted
		}
		return s.details.CreateBatch(txCtx, details)
	})
	if txErr != nil {
		switch {
		case errors.Is(txErr, repositories.ErrDuplicate):
			return false, ErrChecklistAlreadySubmitted
		case errors.Is(txErr, repositories.ErrNotFound):
			return false, ErrFormNotFound
		}
		return false, passThrough("insert evaluations", txErr)
	}

	metrics.ChecklistsCapturedTotal.WithLabelValues(strconv.FormatBool(hasIssues)).Inc()
	configslog.Log.Info("P2H checklist captured",
		zap.Stringer("form_id", form.ID),
		zap.Int("items", len(details)),
		zap.Bool("has_issues", hasIssues),
	)
	return hasIssues, nil
}

// canCapture lets a driver touch only their own forms. Forms recorded without
// a driver link stay open to any driver.
func canCapture(actor Actor, form *models.P2HForm) bool {
	if actor.IsAdmin() {
		return true
	}
	if !actor.IsDriver() {
		return false
	}
	if form.DriverID == nil {
		return true
	}
	return actor.SubjectID != nil && *actor.SubjectID == *form.DriverID
}

// buildEvaluations checks the batch against the active checklist: every item
// exactly once, nothing unknown, valid conditions, notes on every rusak.
func buildEvaluations(formID uuid.UUID, active []models.InspectionItem, inputs []EvaluationInput) ([]models.P2HFormDetail, bool, error) {
	invalid := &ValidationError{}
	if len(active) == 0 {
		invalid.add("", "no active inspection items are configured")
		return nil, false, invalid
	}

	activeIDs := make(map[uuid.UUID]struct{}, len(active))
	for _, item := range active {
		activeIDs[item.ID] = struct{}{}
	}

	seen := make(map[uuid.UUID]struct{}, len(inputs))
	details := make([]models.P2HFormDetail, 0, len(inputs))
	hasIssues := false

	for i, in := range inputs {
		field := fmt.Sprintf("evaluations[%d]", i)
		rawID := strings.TrimSpace(in.ItemID)
		if rawID == "" {
			rawID = strings.TrimSpace(in.InspectionItemID)
		}
		itemID, err := uuid.Parse(rawID)
		if err != nil {
			invalid.add(field+".item_id", fmt.Sprintf("%s has no valid item_id", field))
			continue
		}
		if _, ok := activeIDs[itemID]; !ok {
			invalid.add(field+".item_id", fmt.Sprintf("item %s is not part of the active checklist", itemID))
			continue
		}
		if _, dup := seen[itemID]; dup {
			invalid.add(field+".item_id", fmt.Sprintf("item %s is evaluated more than once", itemID))
			continue
		}
		seen[itemID] = struct{}{}

		condition, ok := models.NormalizeCondition(strings.ToLower(strings.TrimSpace(in.Condition)))
		if !ok {
			invalid.add(field+".condition", fmt.Sprintf("item %s has condition %q, expected baik or rusak", itemID, in.Condition))
			continue
		}
		notes := strings.TrimSpace(in.Notes)
		if condition == models.ConditionRusak {
			if notes == "" {
				invalid.add(field+".notes", fmt.Sprintf("item %s is rusak and needs notes", itemID))
				continue
			}
			hasIssues = true
		}
		details = append(details, models.P2HFormDetail{
			FormID:           formID,
			InspectionItemID: itemID,
			Condition:        condition,
			Notes:            notes,
		})
	}

	for _, item := range active {
		if _, ok := seen[item.ID]; !ok {
			invalid.add("", fmt.Sprintf("item %s (%s) is not evaluated", item.ID, item.Description))
		}
	}

	if err := invalid.orNil(); err != nil {
		return nil, false, err
	}
	return details, hasIssues, nil
}

var _ IChecklistService = (*ChecklistService)(nil)

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"p2h.app/configs/configslog"
	"p2h.app/models"
	"p2h.app/pkg/metrics"
	"p2h.app/pkg/notifier"
	"p2h.app/repositories"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const notifyTimeout = 5 * time.Second

// ReviewInput is a supervisor decision. SupervisorID is optional; when sent
// it must match the caller.
type ReviewInput struct {
	Status       string `json:"status"`
	SupervisorID string `json:"supervisor_id"`
	Reason       string `json:"reason"`
}

type OverrideInput struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type IReviewService interface {
	Review(ctx context.Context, actor Actor, formID uuid.UUID, input ReviewInput) (*models.P2HForm, error)
	Override(ctx context.Context, actor Actor, formID uuid.UUID, input OverrideInput) (*models.P2HForm, error)
	History(ctx context.Context, formID uuid.UUID) ([]models.P2HReviewLog, error)
}

type ReviewService struct {
	db       *gorm.DB
	forms    repositories.IP2HFormRepository
	details  repositories.IP2HFormDetailRepository
	logs     repositories.IP2HReviewLogRepository
	notifier notifier.Notifier
	now      Clock
}

func NewReviewService(db *gorm.DB, n notifier.Notifier) IReviewService {
	if n == nil {
		n = notifier.Noop()
	}
	return &ReviewService{
		db:       db,
		forms:    repositories.NewP2HFormRepository(db),
		details:  repositories.NewP2HFormDetailRepository(db),
		logs:     repositories.NewP2HReviewLogRepository(db),
		notifier: n,
		now:      systemClock,
	}
}

// Review moves a pending form assigned to the calling supervisor to approved
// or rejected. Forms of other supervisors are reported as missing.
func (s *ReviewService) Review(ctx context.Context, actor Actor, formID uuid.UUID, input ReviewInput) (*models.P2HForm, error) {
	status := strings.ToLower(strings.TrimSpace(input.Status))
	event, err := EventForStatus(status)
	if err != nil {
		return nil, err
	}
	if !actor.IsPengawas() || actor.SubjectID == nil {
		return nil, s.refuse("not_found", ErrFormNotFound)
	}
	supervisorID := *actor.SubjectID
	if raw := strings.TrimSpace(input.SupervisorID); raw != "" {
		claimed, err := uuid.Parse(raw)
		if err != nil || claimed != supervisorID {
			return nil, s.refuse("not_found", ErrFormNotFound)
		}
	}

	reason := strings.TrimSpace(input.Reason)
	if status == models.FormStatusApproved {
		reason = ""
	}

	var decided *models.P2HForm
	var from string
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.WithTx(ctx, tx)
		form, err := s.forms.FindByIDForUpdate(txCtx, formID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrFormNotFound
			}
			return err
		}
		// Ownership is checked before state so other supervisors learn nothing.
		if form.SupervisorID != supervisorID {
			return ErrFormNotFound
		}
		from = form.Status

		decision := &ReviewDecision{
			Form:      form,
			ActorID:   supervisorID,
			ActorRole: models.RolePengawas,
			Reason:    reason,
			At:        s.now(),
		}
		if err := NewReviewStateMachine(form.Status).Event(txCtx, event, decision); err != nil {
			var invalidEvent fsm.InvalidEventError
			if errors.As(err, &invalidEvent) {
				return ErrFormNotPending
			}
			var canceled fsm.CanceledError
			if errors.As(err, &canceled) && canceled.Err != nil {
				return canceled.Err
			}
			return err
		}
		if err := s.requireChecklist(txCtx, form.ID); err != nil {
			return err
		}

		if err := s.commitDecision(txCtx, actor, decision, from, true); err != nil {
			return err
		}
		decided = form
		return nil
	})
	if txErr != nil {
		switch {
		case errors.Is(txErr, ErrFormNotFound):
			return nil, s.refuse("not_found", txErr)
		case errors.Is(txErr, ErrFormNotPending):
			return nil, s.refuse("invalid_state", txErr)
		case errors.Is(txErr, ErrChecklistNotSubmitted):
			return nil, s.refuse("checklist_missing", txErr)
		case errors.Is(txErr, ErrReviewRaceLost):
			return nil, s.refuse("race_lost", txErr)
		}
		return nil, passThrough("review form", txErr)
	}

	s.afterDecision(ctx, decided, from, models.RolePengawas)
	return decided, nil
}

// Override lets an administrator set any status on any form.
func (s *ReviewService) Override(ctx context.Context, actor Actor, formID uuid.UUID, input OverrideInput) (*models.P2HForm, error) {
	status := strings.ToLower(strings.TrimSpace(input.Status))
	if !models.IsValidFormStatus(status) {
		invalid := &ValidationError{}
		invalid.add("status", "status must be pending, approved or rejected")
		return nil, invalid
	}
	if !actor.IsAdmin() {
		return nil, ErrFormNotFound
	}
	reason := strings.TrimSpace(input.Reason)
	if len(reason) > MaxReasonLength {
		invalid := &ValidationError{}
		invalid.add("reason", "reason is too long")
		return nil, invalid
	}

	var decided *models.P2HForm
	var from string
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.WithTx(ctx, tx)
		form, err := s.forms.FindByIDForUpdate(txCtx, formID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrFormNotFound
			}
			return err
		}
		from = form.Status
		decision := &ReviewDecision{
			Form:      form,
			ActorID:   actor.UserID,
			ActorRole: models.RoleAdmin,
			Reason:    reason,
			At:        s.now(),
		}
		if status == models.FormStatusApproved {
			if err := s.requireChecklist(txCtx, form.ID); err != nil {
				return err
			}
		}
		decision.apply(status)
		if err := s.commitDecision(txCtx, actor, decision, from, false); err != nil {
			return err
		}
		decided = form
		return nil
	})
	if txErr != nil {
		return nil, passThrough("override form status", txErr)
	}

	configslog.Log.Info("P2H form status overridden",
		zap.Stringer("form_id", decided.ID),
		zap.String("from", from),
		zap.String("to", decided.Status),
		zap.Stringer("admin_user_id", actor.UserID),
	)
	s.afterDecision(ctx, decided, from, models.RoleAdmin)
	return decided, nil
}

func (s *ReviewService) History(ctx context.Context, formID uuid.UUID) ([]models.P2HReviewLog, error) {
	if _, err := s.forms.FindByID(ctx, formID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, upstream("find form", err)
	}
	entries, err := s.logs.FindByFormID(ctx, formID)
	if err != nil {
		return nil, upstream("load review history", err)
	}
	return entries, nil
}

// requireChecklist refuses a decision on a form whose checklist was never
// captured. Approving such a form would clear the vehicle without an inspection.
func (s *ReviewService) requireChecklist(ctx context.Context, formID uuid.UUID) error {
	captured, err := s.details.ExistsForForm(ctx, formID)
	if err != nil {
		return err
	}
	if !captured {
		return ErrChecklistNotSubmitted
	}
	return nil
}

// commitDecision writes the status change and its log row. With onlyIfPending
// the update is conditional and losing the race aborts the transaction.
func (s *ReviewService) commitDecision(ctx context.Context, actor Actor, d *ReviewDecision, from string, onlyIfPending bool) error {
	var affected int64
	var err error
	if onlyIfPending {
		affected, err = s.forms.UpdateStatusIfPending(ctx, d.Form.ID, d.Updates)
	} else {
		affected, err = s.forms.UpdateStatus(ctx, d.Form.ID, d.Updates)
	}
	if err != nil {
		return err
	}
	if affected == 0 {
		if onlyIfPending {
			return ErrReviewRaceLost
		}
		return ErrFormNotFound
	}

	actorUserID := actor.UserID
	entry := models.P2HReviewLog{
		FormID:      d.Form.ID,
		FromStatus:  from,
		ToStatus:    d.Form.Status,
		ActorUserID: &actorUserID,
		ActorRole:   d.ActorRole,
	}
	if d.Reason != "" {
		r := d.Reason
		entry.Reason = &r
	}
	return s.logs.Create(ctx, &entry)
}

// afterDecision runs once the transaction committed. Notification failures
// are logged and never reach the caller.
func (s *ReviewService) afterDecision(ctx context.Context, form *models.P2HForm, from, actorRole string) {
	metrics.ReviewDecisionsTotal.WithLabelValues(form.Status, actorRole).Inc()
	configslog.Log.Info("P2H form reviewed",
		zap.Stringer("form_id", form.ID),
		zap.String("from", from),
		zap.String("to", form.Status),
		zap.String("actor_role", actorRole),
	)

	event := notifier.ReviewEvent{
		FormID:         form.ID,
		VehicleID:      form.VehicleID,
		InspectionDate: form.InspectionDate,
		Status:         form.Status,
		ActorRole:      actorRole,
		Reason:         form.RejectionReason,
		DecidedAt:      s.now().UTC(),
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.notifier.PublishReview(notifyCtx, event); err != nil {
		metrics.NotifyFailuresTotal.Inc()
		configslog.Log.Warn("Review event could not be published", zap.Stringer("form_id", form.ID), zap.Error(err))
	}
}

func (s *ReviewService) refuse(reason string, err error) error {
	metrics.ReviewRejectedTotal.WithLabelValues(reason).Inc()
	return err
}

var _ IReviewService = (*ReviewService)(nil)

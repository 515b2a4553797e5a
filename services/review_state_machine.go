package services

import (
	"context"
	"fmt"
	"time"

	"p2h.app/models"
	"p2h.app/pkg/fsmutil"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
)

const (
	EventApprove = "approve"
	EventReject  = "reject"
)

// MaxReasonLength bounds the free-text rejection reason.
const MaxReasonLength = 1000

// ReviewDecision travels through the state machine callbacks. Entering a
// terminal state fills Updates with the columns to write.
type ReviewDecision struct {
	Form      *models.P2HForm
	ActorID   uuid.UUID
	ActorRole string
	Reason    string
	At        time.Time
	Updates   map[string]interface{}
}

// ReviewStateMachine encodes pending -> approved | rejected. Terminal states
// accept no events.
type ReviewStateMachine struct {
	*fsm.FSM
}

func NewReviewStateMachine(initial string) *ReviewStateMachine {
	m := &ReviewStateMachine{}

	events := fsm.Events{
		{Name: EventApprove, Src: []string{models.FormStatusPending}, Dst: models.FormStatusApproved},
		{Name: EventReject, Src: []string{models.FormStatusPending}, Dst: models.FormStatusRejected},
	}

	callbacks := fsm.Callbacks{
		"before_" + EventReject:              fsmutil.WrapEvent(m.GuardReason),
		"enter_" + models.FormStatusApproved: fsmutil.WrapEvent(m.ActionEnterDecided),
		"enter_" + models.FormStatusRejected: fsmutil.WrapEvent(m.ActionEnterDecided),
	}

	m.FSM = fsm.NewFSM(initial, events, callbacks)
	return m
}

// EventForStatus maps a requested target status onto a machine event.
func EventForStatus(status string) (string, error) {
	switch status {
	case models.FormStatusApproved:
		return EventApprove, nil
	case models.FormStatusRejected:
		return EventReject, nil
	}
	invalid := &ValidationError{}
	invalid.add("status", fmt.Sprintf("status %q is not a review decision, expected approved or rejected", status))
	return "", invalid
}

func decisionArg(e *fsm.Event) (*ReviewDecision, error) {
	if len(e.Args) == 0 {
		return nil, fmt.Errorf("event %s carries no decision", e.Event)
	}
	d, ok := e.Args[0].(*ReviewDecision)
	if !ok || d == nil || d.Form == nil {
		return nil, fmt.Errorf("event %s carries no decision", e.Event)
	}
	return d, nil
}

// GuardReason refuses oversized rejection reasons before anything changes.
func (m *ReviewStateMachine) GuardReason(ctx context.Context, e *fsm.Event) error {
	d, err := decisionArg(e)
	if err != nil {
		return err
	}
	if len(d.Reason) > MaxReasonLength {
		invalid := &ValidationError{}
		invalid.add("reason", fmt.Sprintf("reason must not exceed %d characters", MaxReasonLength))
		return invalid
	}
	return nil
}

// ActionEnterDecided stamps the decision onto the form for the new state.
func (m *ReviewStateMachine) ActionEnterDecided(ctx context.Context, e *fsm.Event) error {
	d, err := decisionArg(e)
	if err != nil {
		return err
	}
	d.apply(e.Dst)
	return nil
}

// apply sets status columns for target and mirrors them on the form. Used by
// the machine and by the admin override, which may move to any status.
func (d *ReviewDecision) apply(target string) {
	at := d.At.UTC()
	updates := map[string]interface{}{"status": target}
	var reason *string
	if d.Reason != "" {
		r := d.Reason
		reason = &r
	}

	clearApproval := func() {
		updates["approved_at"] = nil
		updates["approved_by"] = nil
		d.Form.ApprovedAt = nil
		d.Form.ApprovedBy = nil
	}
	clearRejection := func() {
		updates["rejected_at"] = nil
		updates["rejection_reason"] = nil
		d.Form.RejectedAt = nil
		d.Form.RejectionReason = nil
	}

	switch target {
	case models.FormStatusApproved:
		approver := d.ActorID
		clearRejection()
		updates["approved_at"] = &at
		updates["approved_by"] = &approver
		d.Form.ApprovedAt = &at
		d.Form.ApprovedBy = &approver
	case models.FormStatusRejected:
		clearApproval()
		updates["rejected_at"] = &at
		updates["rejection_reason"] = reason
		d.Form.RejectedAt = &at
		d.Form.RejectionReason = reason
	case models.FormStatusPending:
		clearApproval()
		clearRejection()
	}
	d.Form.Status = target
	d.Updates = updates
}

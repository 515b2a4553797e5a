package services

import (
	"context"
	"testing"
	"time"

	"p2h.app/models"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewStateMachine_Transitions(t *testing.T) {
	tests := []struct {
		from    string
		event   string
		want    string
		allowed bool
	}{
		{from: models.FormStatusPending, event: EventApprove, want: models.FormStatusApproved, allowed: true},
		{from: models.FormStatusPending, event: EventReject, want: models.FormStatusRejected, allowed: true},
		{from: models.FormStatusApproved, event: EventReject},
		{from: models.FormStatusApproved, event: EventApprove},
		{from: models.FormStatusRejected, event: EventApprove},
		{from: models.FormStatusRejected, event: EventReject},
	}
	for _, tt := range tests {
		t.Run(tt.from+"_"+tt.event, func(t *testing.T) {
			form := &models.P2HForm{Status: tt.from}
			decision := &ReviewDecision{Form: form, ActorID: uuid.New(), At: time.Now()}
			m := NewReviewStateMachine(tt.from)

			err := m.Event(context.Background(), tt.event, decision)
			if !tt.allowed {
				var invalid fsm.InvalidEventError
				assert.ErrorAs(t, err, &invalid)
				assert.Equal(t, tt.from, m.Current())
				assert.Nil(t, decision.Updates)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Current())
			assert.Equal(t, tt.want, form.Status)
			assert.Equal(t, tt.want, decision.Updates["status"])
		})
	}
}

func TestReviewStateMachine_GuardCancelsOversizedReason(t *testing.T) {
	form := &models.P2HForm{Status: models.FormStatusPending}
	reason := make([]byte, MaxReasonLength+1)
	for i := range reason {
		reason[i] = 'x'
	}
	decision := &ReviewDecision{Form: form, Reason: string(reason), At: time.Now()}
	m := NewReviewStateMachine(models.FormStatusPending)

	err := m.Event(context.Background(), EventReject, decision)
	var canceled fsm.CanceledError
	require.ErrorAs(t, err, &canceled)
	assert.ErrorIs(t, canceled.Err, ErrInvalidInput)
	assert.Equal(t, models.FormStatusPending, m.Current())
	assert.Equal(t, models.FormStatusPending, form.Status)
}

func TestReviewDecision_ApplyClearsTheOppositeOutcome(t *testing.T) {
	at := time.Date(2024, 5, 1, 7, 0, 0, 0, time.FixedZone("WIB", 7*60*60))
	approver := uuid.New()
	oldReason := "lampu mati"
	form := &models.P2HForm{Status: models.FormStatusRejected, RejectedAt: &at, RejectionReason: &oldReason}

	d := &ReviewDecision{Form: form, ActorID: approver, At: at}
	d.apply(models.FormStatusApproved)

	assert.Equal(t, models.FormStatusApproved, form.Status)
	require.NotNil(t, form.ApprovedBy)
	assert.Equal(t, approver, *form.ApprovedBy)
	assert.Equal(t, time.UTC, form.ApprovedAt.Location())
	assert.Nil(t, form.RejectedAt)
	assert.Nil(t, form.RejectionReason)
	assert.Contains(t, d.Updates, "rejection_reason")
	assert.Nil(t, d.Updates["rejection_reason"])
}

func TestEventForStatus(t *testing.T) {
	event, err := EventForStatus(models.FormStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, EventApprove, event)

	event, err = EventForStatus(models.FormStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, EventReject, event)

	_, err = EventForStatus(models.FormStatusPending)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"p2h.app/models"
	"p2h.app/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decisionTime = time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC)

func newTestReviewService(f *fixture, n *recordingNotifier) *ReviewService {
	svc := NewReviewService(f.db, n).(*ReviewService)
	svc.now = fixedClock(decisionTime)
	return svc
}

func TestReview_ApproveByAssignedSupervisor(t *testing.T) {
	f := newFixture(t)
	n := &recordingNotifier{}
	svc := newTestReviewService(f, n)
	form := f.inspectedForm(t, "2024-05-01", models.FormStatusPending)

	decided, err := svc.Review(f.ctx, f.pengawasActor(), form.ID, ReviewInput{Status: "Approved", Reason: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, models.FormStatusApproved, decided.Status)

	stored := f.reload(t, form.ID)
	assert.Equal(t, models.FormStatusApproved, stored.Status)
	require.NotNil(t, stored.ApprovedBy)
	assert.Equal(t, f.supervisor.ID, *stored.ApprovedBy)
	require.NotNil(t, stored.ApprovedAt)
	assert.True(t, decisionTime.Equal(*stored.ApprovedAt))
	assert.Nil(t, stored.RejectedAt)
	assert.Nil(t, stored.RejectionReason)

	history, err := svc.History(f.ctx, form.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.FormStatusPending, history[0].FromStatus)
	assert.Equal(t, models.FormStatusApproved, history[0].ToStatus)
	assert.Equal(t, models.RolePengawas, history[0].ActorRole)
	assert.Nil(t, history[0].Reason)

	events := n.published()
	require.Len(t, events, 1)
	assert.Equal(t, form.ID, events[0].FormID)
	assert.Equal(t, f.vehicle.ID, events[0].VehicleID)
	assert.Equal(t, models.FormStatusApproved, events[0].Status)
}

func TestReview_RejectStoresReason(t *testing.T) {
	f := newFixture(t)
	svc := newTestReviewService(f, &recordingNotifier{})
	form := f.inspectedForm(t, "2024-05-01", models.FormStatusPending)

	_, err := svc.Review(f.ctx, f.pengawasActor(), form.ID, ReviewInput{Status: models.FormStatusRejected, Reason: " rem blong "})
	require.NoError(t, err)

	stored := f.reload(t, form.ID)
	assert.Equal(t, models.FormStatusRejected, stored.Status)
	require.NotNil(t, stored.RejectionReason)
	assert.Equal(t, "rem blong", *stored.RejectionReason)
	require.NotNil(t, stored.RejectedAt)
	assert.Nil(t, stored.ApprovedBy)
}

func TestReview_OtherSupervisorSeesNotFound(t *testing.T) {
	f := newFixture(t)
	n := &recordingNotifier{}
	svc := newTestReviewService(f, n)
	form := f.inspectedForm(t, "2024-05-01", models.FormStatusPending)

	_, err := svc.Review(f.ctx, f.otherPengawasActor(), form.ID, ReviewInput{Status: models.FormStatusApproved})
	assert.ErrorIs(t, err, ErrFormNotFound)
	assert.Equal(t, models.FormStatusPending, f.reload(t, form.ID).Status)
	assert.Empty(t, n.published())

	_, err = svc.Review(f.ctx, f.pengawasActor(), form.ID, ReviewInput{Status: models.FormStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.FormStatusApproved, f.reload(t, form.ID).Status)
}

func TestReview_ClaimedSupervisorMustMatchCaller(t *testing.T) {
	f := newFixture(t)
	svc := newTestReviewService(f, &recordingNotifier{})
	form := f.inspectedForm(t, "2024-05-01", models.FormStatusPending)

	for _, claimed := range []string{f.otherSupervisor.ID.String(), "budi"} {
		_, err := svc.Review(f.ctx, f.pengawasActor(), form.ID, ReviewInput{Status: models.FormStatusApproved, SupervisorID: claimed})
		assert.ErrorIs(t, err, ErrFormNotFound, "claimed %s", claimed)
	}

	_, err := svc.Review(f.ctx, f.pengawasActor(), form.ID, ReviewInput{Status: models.FormStatusApproved, SupervisorID: f.supervisor.ID.String()})
	assert.NoError(t, err)
}

func TestReview_TerminalFormsAreFinal(t *testing.T) {
	f := newFixture(t)
	svc := newTestReviewService(f, &recordingNotifier{})

	for _, status := range []string{models.FormStatusApproved, models.FormStatusRejected} {
		form := f.form(t, "2024-05-01", status)
		for _, target := range []string{models.FormStatusApproved, models.FormStatusRejected} {
			_, err := svc.Review(f.ctx, f.pengawasActor(), form.ID, ReviewInput{Status: target, Reason: "x"})
			assert.ErrorIs(t, err, ErrFormNotPending, "%s -> %s", status, target)
		}
		assert.Equal(t, status, f.reload(t, form.ID).Status)
	}
}

func TestReview_RequiresCapturedChecklist(t *testing.T) {
	f := newFixture(t)
	n := &recordingNotifier{}
	svc := newTestReviewService(f, n)
	form := f.form(t, "2024-05-01", models.FormStatusPending)

	for _, target := range []string{models.FormStatusApproved, models.FormStatusRejected} {
		_, err := svc.Review(f.ctx, f.pengawasActor(), form.ID, ReviewInput{Status: target, Reason: "x"})
		assert.ErrorIs(t, err, ErrChecklistNotSubmitted, target)
	}
	assert.Equal(t, models.FormStatusPending, f.reload(t, form.ID).Status)
	assert.Empty(t, n.published())

	_, err := svc.Override(f.ctx, f.adminActor(), form.ID, OverrideInput{Status: models.FormStatusApproved})
	assert.ErrorIs(t, err, ErrChecklistNotSubmitted)
	assert.Equal(t, models.FormStatusPending, f.reload(t, form.ID).Status)

	summary := NewSummaryService(f.db, time.UTC).(*SummaryService)
	summary.now = fixedClock(decisionTime)
	fleet, err := summary.Fleet(f.ctx)
	require.NoError(t, err)
	require.Len(t, fleet, 1)
	assert.False(t, fleet[0].HasP2HToday)

	// Another supervisor still learns nothing about the form.
	_, err = svc.Review(f.ctx, f.otherPengawasActor(), form.ID, ReviewInput{Status: models.FormStatusApproved})
	assert.ErrorIs(t, err, ErrFormNotFound)
}

func TestReview_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	svc := newTestReviewService(f, &recordingNotifier{})
	form := f.inspectedForm(t, "2024-05-01", models.FormStatusPending)

	for _, status := range []string{"", models.FormStatusPending, "done"} {
		_, err := svc.Review(f.ctx, f.pengawasActor(), form.ID, ReviewInput{Status: status})
		assert.ErrorIs(t, err, ErrInvalidInput, "status %q", status)
	}

	_, err := svc.Review(f.ctx, f.pengawasActor(), form.ID, ReviewInput{
		Status: models.FormStatusRejected,
		Reason: strings.Repeat("a", MaxReasonLength+1),
	})
	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"reason"}, invalid.Fields)
	assert.Equal(t, models.FormStatusPending, f.reload(t, form.ID).Status)

	_, err = svc.Review(f.ctx, f.driverActor(), form.ID, ReviewInput{Status: models.FormStatusApproved})
	assert.ErrorIs(t, err, ErrFormNotFound)

	_, err = svc.Review(f.ctx, f.pengawasActor(), uuid.New(), ReviewInput{Status: models.FormStatusApproved})
	assert.ErrorIs(t, err, ErrFormNotFound)
}

// racingFormRepository lets another reviewer decide the form between the
// locked read and the conditional update.
type racingFormRepository struct {
	repositories.IP2HFormRepository
}

func (r racingFormRepository) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	if _, err := r.IP2HFormRepository.UpdateStatus(ctx, id, map[string]interface{}{"status": models.FormStatusRejected}); err != nil {
		return 0, err
	}
	return r.IP2HFormRepository.UpdateStatusIfPending(ctx, id, updates)
}

func TestReview_LosingTheRaceChangesNothing(t *testing.T) {
	f := newFixture(t)
	n := &recordingNotifier{}
	svc := newTestReviewService(f, n)
	svc.forms = racingFormRepository{IP2HFormRepository: svc.forms}
	form := f.inspectedForm(t, "2024-05-01", models.FormStatusPending)

	_, err := svc.Review(f.ctx, f.pengawasActor(), form.ID, ReviewInput{Status: models.FormStatusApproved})
	assert.ErrorIs(t, err, ErrReviewRaceLost)

	// The transaction rolled back, the competing write included.
	assert.Equal(t, models.FormStatusPending, f.reload(t, form.ID).Status)
	var logs int64
	require.NoError(t, f.db.Model(&models.P2HReviewLog{}).Count(&logs).Error)
	assert.Zero(t, logs)
	assert.Empty(t, n.published())
}

func TestReview_NotifierFailureDoesNotFailTheDecision(t *testing.T) {
	f := newFixture(t)
	n := &recordingNotifier{err: errBrokerDown}
	svc := newTestReviewService(f, n)
	form := f.inspectedForm(t, "2024-05-01", models.FormStatusPending)

	_, err := svc.Review(f.ctx, f.pengawasActor(), form.ID, ReviewInput{Status: models.FormStatusApproved})
	require.NoError(t, err)
	assert.Len(t, n.published(), 1)
	assert.Equal(t, models.FormStatusApproved, f.reload(t, form.ID).Status)
}

func TestOverride_AdminMayMoveAnyDirection(t *testing.T) {
	f := newFixture(t)
	n := &recordingNotifier{}
	svc := newTestReviewService(f, n)
	form := f.inspectedForm(t, "2024-05-01", models.FormStatusPending)

	_, err := svc.Override(f.ctx, f.adminActor(), form.ID, OverrideInput{Status: models.FormStatusRejected, Reason: "salah unit"})
	require.NoError(t, err)
	stored := f.reload(t, form.ID)
	assert.Equal(t, models.FormStatusRejected, stored.Status)
	require.NotNil(t, stored.RejectionReason)

	_, err = svc.Override(f.ctx, f.adminActor(), form.ID, OverrideInput{Status: models.FormStatusApproved})
	require.NoError(t, err)
	stored = f.reload(t, form.ID)
	assert.Equal(t, models.FormStatusApproved, stored.Status)
	require.NotNil(t, stored.ApprovedBy)
	assert.Equal(t, f.adminUser.ID, *stored.ApprovedBy)
	assert.Nil(t, stored.RejectionReason)
	assert.Nil(t, stored.RejectedAt)

	_, err = svc.Override(f.ctx, f.adminActor(), form.ID, OverrideInput{Status: models.FormStatusPending})
	require.NoError(t, err)
	stored = f.reload(t, form.ID)
	assert.Equal(t, models.FormStatusPending, stored.Status)
	assert.Nil(t, stored.ApprovedAt)
	assert.Nil(t, stored.ApprovedBy)

	history, err := svc.History(f.ctx, form.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for _, entry := range history {
		assert.Equal(t, models.RoleAdmin, entry.ActorRole)
	}
	assert.Len(t, n.published(), 3)
}

func TestOverride_RefusesNonAdminsAndBadStatus(t *testing.T) {
	f := newFixture(t)
	svc := newTestReviewService(f, &recordingNotifier{})
	form := f.inspectedForm(t, "2024-05-01", models.FormStatusPending)

	_, err := svc.Override(f.ctx, f.pengawasActor(), form.ID, OverrideInput{Status: models.FormStatusApproved})
	assert.ErrorIs(t, err, ErrFormNotFound)

	_, err = svc.Override(f.ctx, f.adminActor(), form.ID, OverrideInput{Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Override(f.ctx, f.adminActor(), uuid.New(), OverrideInput{Status: models.FormStatusApproved})
	assert.ErrorIs(t, err, ErrFormNotFound)

	_, err = svc.History(f.ctx, uuid.New())
	assert.ErrorIs(t, err, ErrFormNotFound)
}

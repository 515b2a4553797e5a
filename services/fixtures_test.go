package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"p2h.app/database/testdb"
	"p2h.app/models"
	"p2h.app/pkg/notifier"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "rahasia-123"

// fixture is a small fleet: one vehicle, two supervisors, one registered
// driver and a three-item checklist.
type fixture struct {
	db  *gorm.DB
	ctx context.Context

	vehicleType     models.VehicleType
	vehicle         models.Vehicle
	supervisor      models.Supervisor
	otherSupervisor models.Supervisor
	driver          models.Driver
	otherDriver     models.Driver
	items           []models.InspectionItem

	adminUser    models.User
	driverUser   models.User
	pengawasUser models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{db: testdb.Open(t), ctx: context.Background()}

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	f.adminUser = models.User{Username: "admin", PasswordHash: string(hash), Name: "Admin", Role: models.RoleAdmin}
	f.driverUser = models.User{Username: "driver.agus", PasswordHash: string(hash), Name: "Agus Pratama", NIK: "3201000000000001", Role: models.RoleDriver}
	f.pengawasUser = models.User{Username: "pengawas.budi", PasswordHash: string(hash), Name: "Budi Santoso", Role: models.RolePengawas}
	f.create(t, &f.adminUser, &f.driverUser, &f.pengawasUser)

	f.vehicleType = models.VehicleType{Name: "Dump Truck"}
	f.create(t, &f.vehicleType)
	f.vehicle = models.Vehicle{VehicleNumber: "DT-101", VehicleTypeID: f.vehicleType.ID, Status: models.VehicleStatusActive}
	f.create(t, &f.vehicle)

	f.supervisor = models.Supervisor{Name: "Budi Santoso", UserID: &f.pengawasUser.ID}
	f.otherSupervisor = models.Supervisor{Name: "Sari Wulandari"}
	f.create(t, &f.supervisor, &f.otherSupervisor)

	f.driver = models.Driver{Name: "Agus Pratama", NIK: "3201000000000001", UserID: &f.driverUser.ID, IsActive: true}
	f.otherDriver = models.Driver{Name: "Dewi Lestari", NIK: "3201000000000002", IsActive: true}
	f.create(t, &f.driver, &f.otherDriver)

	f.items = []models.InspectionItem{
		{Category: "Diluar Kabin", Description: "Ban & bolt roda", OrderNumber: 1, DangerCode: models.DangerCodeAA, IsActive: true},
		{Category: "Didalam Kabin", Description: "Seat belt", OrderNumber: 2, DangerCode: models.DangerCodeA, IsActive: true},
		{Category: "Mesin", Description: "Kebocoran radiator", OrderNumber: 3, DangerCode: models.DangerCodeB, IsActive: true},
	}
	for i := range f.items {
		f.create(t, &f.items[i])
	}
	return f
}

func (f *fixture) create(t *testing.T, values ...interface{}) {
	t.Helper()
	for _, v := range values {
		require.NoError(t, f.db.Create(v).Error)
	}
}

func (f *fixture) adminActor() Actor {
	return Actor{UserID: f.adminUser.ID, Role: models.RoleAdmin, Name: f.adminUser.Name}
}

func (f *fixture) driverActor() Actor {
	id := f.driver.ID
	return Actor{UserID: f.driverUser.ID, Role: models.RoleDriver, Name: f.driverUser.Name, SubjectID: &id}
}

func (f *fixture) pengawasActor() Actor {
	id := f.supervisor.ID
	return Actor{UserID: f.pengawasUser.ID, Role: models.RolePengawas, Name: f.pengawasUser.Name, SubjectID: &id}
}

func (f *fixture) otherPengawasActor() Actor {
	id := f.otherSupervisor.ID
	return Actor{UserID: uuid.New(), Role: models.RolePengawas, Name: f.otherSupervisor.Name, SubjectID: &id}
}

// form inserts a form for the fixture vehicle, driver and supervisor.
func (f *fixture) form(t *testing.T, date, status string, mutate ...func(*models.P2HForm)) models.P2HForm {
	t.Helper()
	driverID := f.driver.ID
	form := models.P2HForm{
		DriverID:       &driverID,
		DriverNIK:      f.driver.NIK,
		VehicleID:      f.vehicle.ID,
		SupervisorID:   f.supervisor.ID,
		InspectionDate: date,
		Shift:          models.ShiftDay,
		StartingMeter:  1200,
		Status:         status,
	}
	for _, m := range mutate {
		m(&form)
	}
	f.create(t, &form)
	return form
}

// inspectedForm is form with every fixture item already evaluated baik.
func (f *fixture) inspectedForm(t *testing.T, date, status string, mutate ...func(*models.P2HForm)) models.P2HForm {
	t.Helper()
	form := f.form(t, date, status, mutate...)
	for _, it := range f.items {
		f.create(t, &models.P2HFormDetail{FormID: form.ID, InspectionItemID: it.ID, Condition: models.ConditionBaik})
	}
	return form
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) models.P2HForm {
	t.Helper()
	var form models.P2HForm
	require.NoError(t, f.db.First(&form, "id = ?", id).Error)
	return form
}

// allBaik answers every fixture item with baik.
func (f *fixture) allBaik() []EvaluationInput {
	out := make([]EvaluationInput, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, EvaluationInput{ItemID: it.ID.String(), Condition: models.ConditionBaik})
	}
	return out
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifier.ReviewEvent
	err    error
}

func (n *recordingNotifier) PublishReview(_ context.Context, ev notifier.ReviewEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *recordingNotifier) Close(context.Context) {}

func (n *recordingNotifier) published() []notifier.ReviewEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifier.ReviewEvent(nil), n.events...)
}

var errBrokerDown = errors.New("broker unreachable")

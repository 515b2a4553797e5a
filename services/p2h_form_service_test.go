package services

import (
	"math"
	"testing"

	"p2h.app/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) intake() CreateFormInput {
	return CreateFormInput{
		DriverName:     f.driver.Name,
		DriverNIK:      f.driver.NIK,
		InspectionDate: "2024-05-01",
		Shift:          "Day",
		VehicleID:      f.vehicle.ID.String(),
		StartingMeter:  12500.5,
		SupervisorID:   f.supervisor.ID.String(),
	}
}

func TestCreateForm_AlwaysStartsPending(t *testing.T) {
	f := newFixture(t)
	svc := NewP2HFormService(f.db)

	input := f.intake()
	input.Status = models.FormStatusApproved
	form, err := svc.CreateForm(f.ctx, f.adminActor(), input)
	require.NoError(t, err)

	assert.Equal(t, models.FormStatusPending, form.Status)
	assert.Equal(t, models.ShiftDay, form.Shift)
	assert.Equal(t, 12500.5, form.StartingMeter)
	require.NotNil(t, form.DriverID)
	assert.Equal(t, f.driver.ID, *form.DriverID, "driver resolved by NIK")

	stored := f.reload(t, form.ID)
	assert.Equal(t, models.FormStatusPending, stored.Status)
	assert.Equal(t, f.supervisor.ID, stored.SupervisorID)
}

func TestCreateForm_ReportsEveryMissingField(t *testing.T) {
	f := newFixture(t)
	svc := NewP2HFormService(f.db)

	_, err := svc.CreateForm(f.ctx, f.adminActor(), CreateFormInput{InspectionDate: "not-a-date"})
	require.ErrorIs(t, err, ErrInvalidInput)

	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing, "missing fields win over malformed ones")
	assert.Equal(t, []string{
		"driver_name", "driver_nik", "shift", "vehicle_id", "starting_meter", "supervisor_id/supervisor_name",
	}, missing.Fields)
}

func TestCreateForm_ReportsEveryInvalidField(t *testing.T) {
	f := newFixture(t)
	svc := NewP2HFormService(f.db)

	input := f.intake()
	input.InspectionDate = "01/05/2024"
	input.Shift = "evening"
	input.StartingMeter = "dua ribu"
	_, err := svc.CreateForm(f.ctx, f.adminActor(), input)

	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.ElementsMatch(t, []string{"inspection_date", "shift", "starting_meter"}, invalid.Fields)

	var count int64
	require.NoError(t, f.db.Model(&models.P2HForm{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateForm_AcceptsLegacyMeterField(t *testing.T) {
	f := newFixture(t)
	svc := NewP2HFormService(f.db)

	input := f.intake()
	input.StartingMeter = nil
	input.HmKmAwal = " 830.25 "
	form, err := svc.CreateForm(f.ctx, f.adminActor(), input)
	require.NoError(t, err)
	assert.Equal(t, 830.25, form.StartingMeter)
}

func TestCreateForm_ResolvesSupervisorByName(t *testing.T) {
	f := newFixture(t)
	svc := NewP2HFormService(f.db)

	tests := []struct {
		name    string
		search  string
		want    uuid.UUID
		wantErr error
	}{
		{name: "exact match ignores case", search: "budi santoso", want: f.supervisor.ID},
		{name: "substring match", search: "Wulan", want: f.otherSupervisor.ID},
		{name: "single character is too short", search: "B", wantErr: ErrSupervisorNotFound},
		{name: "unknown name", search: "Joko", wantErr: ErrSupervisorNotFound},
		{name: "like wildcards are literal", search: "%%", wantErr: ErrSupervisorNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := f.intake()
			input.SupervisorID = ""
			input.SupervisorName = tt.search
			form, err := svc.CreateForm(f.ctx, f.adminActor(), input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, form.SupervisorID)
		})
	}
}

func TestCreateForm_UnknownReferences(t *testing.T) {
	f := newFixture(t)
	svc := NewP2HFormService(f.db)

	input := f.intake()
	input.VehicleID = uuid.NewString()
	_, err := svc.CreateForm(f.ctx, f.adminActor(), input)
	assert.ErrorIs(t, err, ErrVehicleNotFound)

	input = f.intake()
	input.SupervisorID = uuid.NewString()
	_, err = svc.CreateForm(f.ctx, f.adminActor(), input)
	assert.ErrorIs(t, err, ErrSupervisorNotFound)

	input = f.intake()
	input.DriverID = uuid.NewString()
	_, err = svc.CreateForm(f.ctx, f.adminActor(), input)
	assert.ErrorIs(t, err, ErrDriverNotFound)
}

func TestCreateForm_DriverFilesAsThemselves(t *testing.T) {
	f := newFixture(t)
	svc := NewP2HFormService(f.db)

	input := f.intake()
	input.DriverID = f.otherDriver.ID.String()
	input.DriverNIK = f.otherDriver.NIK
	form, err := svc.CreateForm(f.ctx, f.driverActor(), input)
	require.NoError(t, err)

	require.NotNil(t, form.DriverID)
	assert.Equal(t, f.driver.ID, *form.DriverID)
	assert.Equal(t, f.driver.NIK, form.DriverNIK)
}

func TestCreateForm_UnregisteredDriverKeepsNIK(t *testing.T) {
	f := newFixture(t)
	svc := NewP2HFormService(f.db)

	input := f.intake()
	input.DriverNIK = "9999000000000000"
	form, err := svc.CreateForm(f.ctx, f.adminActor(), input)
	require.NoError(t, err)
	assert.Nil(t, form.DriverID)
	assert.Equal(t, "9999000000000000", form.DriverNIK)
}

func TestParseStartingMeter(t *testing.T) {
	tests := []struct {
		in      any
		want    float64
		wantErr bool
	}{
		{in: 0.0, want: 0},
		{in: 1500, want: 1500},
		{in: "42.5", want: 42.5},
		{in: "abc", wantErr: true},
		{in: -1.0, wantErr: true},
		{in: math.Inf(1), wantErr: true},
		{in: true, wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseStartingMeter(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %v", tt.in)
			continue
		}
		require.NoError(t, err, "input %v", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

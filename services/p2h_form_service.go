package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"p2h.app/configs/configslog"
	"p2h.app/models"
	"p2h.app/pkg/metrics"
	"p2h.app/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// minSupervisorFragment is the shortest name accepted for substring matching.
const minSupervisorFragment = 2

// CreateFormInput is the intake request. StartingMeter accepts a JSON number
// or a numeric string; HmKmAwal is the legacy name of the same field.
type CreateFormInput struct {
	DriverID       string `json:"driver_id"`
	DriverName     string `json:"driver_name"`
	DriverNIK      string `json:"driver_nik"`
	InspectionDate string `json:"inspection_date"`
	Shift          string `json:"shift"`
	VehicleID      string `json:"vehicle_id"`
	StartingMeter  any    `json:"starting_meter"`
	HmKmAwal       any    `json:"hm_km_awal"`
	SupervisorID   string `json:"supervisor_id"`
	SupervisorName string `json:"supervisor_name"`
	// Status is accepted for compatibility and always ignored.
	Status string `json:"status"`
}

type IP2HFormService interface {
	CreateForm(ctx context.Context, actor Actor, input CreateFormInput) (*models.P2HForm, error)
}

type P2HFormService struct {
	forms       repositories.IP2HFormRepository
	drivers     repositories.IDriverRepository
	supervisors repositories.ISupervisorRepository
	vehicles    repositories.IVehicleRepository
}

func NewP2HFormService(db *gorm.DB) IP2HFormService {
	return &P2HFormService{
		forms:       repositories.NewP2HFormRepository(db),
		drivers:     repositories.NewDriverRepository(db),
		supervisors: repositories.NewSupervisorRepository(db),
		vehicles:    repositories.NewVehicleRepository(db),
	}
}

type validatedIntake struct {
	driverID       *uuid.UUID
	driverName     string
	driverNIK      string
	inspectionDate string
	shift          string
	vehicleID      uuid.UUID
	startingMeter  float64
	supervisorID   *uuid.UUID
	supervisorName string
}

// validateCreateFormInput reports every missing field at once, then every
// malformed one.
func validateCreateFormInput(input CreateFormInput) (*validatedIntake, error) {
	v := validatedIntake{
		driverName:     strings.TrimSpace(input.DriverName),
		driverNIK:      strings.TrimSpace(input.DriverNIK),
		inspectionDate: strings.TrimSpace(input.InspectionDate),
		shift:          strings.ToLower(strings.TrimSpace(input.Shift)),
		supervisorName: strings.TrimSpace(input.SupervisorName),
	}
	rawVehicle := strings.TrimSpace(input.VehicleID)
	rawSupervisor := strings.TrimSpace(input.SupervisorID)
	rawDriver := strings.TrimSpace(input.DriverID)
	meter := input.StartingMeter
	if isBlank(meter) {
		meter = input.HmKmAwal
	}

	var missing []string
	if v.driverName == "" {
		missing = append(missing, "driver_name")
	}
	if v.driverNIK == "" {
		missing = append(missing, "driver_nik")
	}
	if v.inspectionDate == "" {
		missing = append(missing, "inspection_date")
	}
	if v.shift == "" {
		missing = append(missing, "shift")
	}
	if rawVehicle == "" {
		missing = append(missing, "vehicle_id")
	}
	if isBlank(meter) {
		missing = append(missing, "starting_meter")
	}
	if rawSupervisor == "" && v.supervisorName == "" {
		missing = append(missing, "supervisor_id/supervisor_name")
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	invalid := &ValidationError{}
	if _, err := time.Parse(models.InspectionDateLayout, v.inspectionDate); err != nil {
		invalid.add("inspection_date", "inspection_date must be formatted YYYY-MM-DD")
	}
	if !models.IsValidShift(v.shift) {
		invalid.add("shift", "shift must be day or night")
	}
	if id, err := uuid.Parse(rawVehicle); err != nil {
		invalid.add("vehicle_id", "vehicle_id is not a valid id")
	} else {
		v.vehicleID = id
	}
	if rawSupervisor != "" {
		if id, err := uuid.Parse(rawSupervisor); err != nil {
			invalid.add("supervisor_id", "supervisor_id is not a valid id")
		} else {
			v.supervisorID = &id
		}
	}
	if rawDriver != "" {
		if id, err := uuid.Parse(rawDriver); err != nil {
			invalid.add("driver_id", "driver_id is not a valid id")
		} else {
			v.driverID = &id
		}
	}
	if m, err := ParseStartingMeter(meter); err != nil {
		invalid.add("starting_meter", err.Error())
	} else {
		v.startingMeter = m
	}
	if err := invalid.orNil(); err != nil {
		return nil, err
	}
	return &v, nil
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

// ParseStartingMeter accepts numbers and numeric strings; the result is
// finite and not negative.
func ParseStartingMeter(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, errors.New("starting_meter must be a number")
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, errors.New("starting_meter must be a number")
		}
		f = parsed
	default:
		return 0, errors.New("starting_meter must be a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("starting_meter must be a finite number")
	}
	if f < 0 {
		return 0, errors.New("starting_meter must not be negative")
	}
	return f, nil
}

// CreateForm stores a new inspection header. The status is always pending.
func (s *P2HFormService) CreateForm(ctx context.Context, actor Actor, input CreateFormInput) (*models.P2HForm, error) {
	v, err := validateCreateFormInput(input)
	if err != nil {
		return nil, err
	}

	if _, err := s.vehicles.FindByID(ctx, v.vehicleID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, upstream("find vehicle", err)
	}

	supervisor, err := s.resolveSupervisor(ctx, v.supervisorID, v.supervisorName)
	if err != nil {
		return nil, err
	}

	driverID, driverNIK, err := s.resolveDriver(ctx, actor, v.driverID, v.driverNIK)
	if err != nil {
		return nil, err
	}

	form := models.P2HForm{
		DriverID:       driverID,
		DriverNIK:      driverNIK,
		VehicleID:      v.vehicleID,
		SupervisorID:   supervisor.ID,
		InspectionDate: v.inspectionDate,
		Shift:          v.shift,
		StartingMeter:  v.startingMeter,
		Status:         models.FormStatusPending,
	}
	if err := s.forms.Create(ctx, &form); err != nil {
		return nil, upstream("create form", err)
	}

	metrics.FormsSubmittedTotal.Inc()
	configslog.Log.Info("P2H form submitted",
		zap.Stringer("form_id", form.ID),
		zap.Stringer("vehicle_id", form.VehicleID),
		zap.Stringer("supervisor_id", form.SupervisorID),
		zap.String("shift", form.Shift),
	)
	return &form, nil
}

// resolveSupervisor prefers an explicit id, then an exact name, then a
// substring of at least two characters.
func (s *P2HFormService) resolveSupervisor(ctx context.Context, id *uuid.UUID, name string) (*models.Supervisor, error) {
	if id != nil {
		supervisor, err := s.supervisors.FindByID(ctx, *id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrSupervisorNotFound
			}
			return nil, upstream("find supervisor", err)
		}
		return supervisor, nil
	}

	supervisor, err := s.supervisors.FindByNameExact(ctx, name)
	if err == nil {
		return supervisor, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, upstream("find supervisor by name", err)
	}
	if len([]rune(name)) < minSupervisorFragment {
		return nil, ErrSupervisorNotFound
	}

	supervisor, err = s.supervisors.FindByNameContains(ctx, name)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSupervisorNotFound
		}
		return nil, upstream("search supervisor by name", err)
	}
	return supervisor, nil
}

// resolveDriver links the form to a driver record. A logged-in driver is
// always recorded as themselves; otherwise the body id or the NIK decides.
// Forms from unregistered drivers keep only the NIK.
func (s *P2HFormService) resolveDriver(ctx context.Context, actor Actor, bodyID *uuid.UUID, nik string) (*uuid.UUID, string, error) {
	candidate := bodyID
	if actor.IsDriver() && actor.SubjectID != nil {
		candidate = actor.SubjectID
	}

	if candidate != nil {
		driver, err := s.drivers.FindByID(ctx, *candidate)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, "", ErrDriverNotFound
			}
			return nil, "", upstream("find driver", err)
		}
		if actor.IsDriver() && driver.NIK != "" {
			nik = driver.NIK
		}
		return &driver.ID, nik, nil
	}

	driver, err := s.drivers.FindByNIK(ctx, nik)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nik, nil
		}
		return nil, "", upstream("find driver by nik", err)
	}
	return &driver.ID, nik, nil
}

var _ IP2HFormService = (*P2HFormService)(nil)

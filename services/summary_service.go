package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"p2h.app/configs/configslog"
	"p2h.app/models"
	"p2h.app/pkg/queryparams"
	"p2h.app/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ISummaryService interface {
	ListForms(ctx context.Context, filter repositories.FormFilter, params queryparams.ListParams) (*queryparams.PaginatedResult[models.FormSummary], error)
	ListDriverForms(ctx context.Context, actor Actor, params queryparams.ListParams) (*queryparams.PaginatedResult[models.FormSummary], error)
	Stats(ctx context.Context, filter repositories.FormFilter) (*models.FormStats, error)
	VehicleToday(ctx context.Context, vehicleID uuid.UUID) (*models.VehicleTodayView, error)
	Fleet(ctx context.Context) ([]models.FleetVehicle, error)
	Detail(ctx context.Context, actor Actor, formID uuid.UUID) (*models.FormDetailView, error)
	Today() string
}

// SummaryService assembles read models. It never writes, and missing master
// data degrades to placeholders instead of failing the batch.
type SummaryService struct {
	forms       repositories.IP2HFormRepository
	details     repositories.IP2HFormDetailRepository
	drivers     repositories.IDriverRepository
	users       repositories.IUserRepository
	vehicles    repositories.IVehicleRepository
	supervisors repositories.ISupervisorRepository
	items       repositories.IInspectionItemRepository
	location    *time.Location
	now         Clock
}

func NewSummaryService(db *gorm.DB, location *time.Location) ISummaryService {
	if location == nil {
		location = time.Local
	}
	return &SummaryService{
		forms:       repositories.NewP2HFormRepository(db),
		details:     repositories.NewP2HFormDetailRepository(db),
		drivers:     repositories.NewDriverRepository(db),
		users:       repositories.NewUserRepository(db),
		vehicles:    repositories.NewVehicleRepository(db),
		supervisors: repositories.NewSupervisorRepository(db),
		items:       repositories.NewInspectionItemRepository(db),
		location:    location,
		now:         systemClock,
	}
}

// Today is the current date in the configured timezone, as stored on forms.
func (s *SummaryService) Today() string {
	return s.now().In(s.location).Format(models.InspectionDateLayout)
}

func (s *SummaryService) ListForms(ctx context.Context, filter repositories.FormFilter, params queryparams.ListParams) (*queryparams.PaginatedResult[models.FormSummary], error) {
	params.Validate()
	forms, total, err := s.forms.FindPaginated(ctx, filter, params)
	if err != nil {
		return nil, upstream("list forms", err)
	}
	return &queryparams.PaginatedResult[models.FormSummary]{
		Data: s.assemble(ctx, forms),
		Meta: queryparams.NewPaginationMeta(params, total),
	}, nil
}

// ListDriverForms lists forms linked to the driver by id or by NIK, so forms
// filed before the account was linked still show up.
func (s *SummaryService) ListDriverForms(ctx context.Context, actor Actor, params queryparams.ListParams) (*queryparams.PaginatedResult[models.FormSummary], error) {
	if actor.SubjectID == nil {
		return nil, ErrDriverNotFound
	}
	driver, err := s.drivers.FindByID(ctx, *actor.SubjectID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, upstream("find driver", err)
	}
	params.Validate()
	filter := repositories.FormFilter{DriverID: &driver.ID, DriverNIK: driver.NIK, Status: params.Status}
	return s.ListForms(ctx, filter, params)
}

func (s *SummaryService) Stats(ctx context.Context, filter repositories.FormFilter) (*models.FormStats, error) {
	filter.Status = ""
	counts, err := s.forms.CountByStatus(ctx, filter)
	if err != nil {
		return nil, upstream("count forms", err)
	}
	stats := &models.FormStats{
		Pending:  counts[models.FormStatusPending],
		Approved: counts[models.FormStatusApproved],
		Rejected: counts[models.FormStatusRejected],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

// VehicleToday lists today's forms for a vehicle. Only an approved form
// clears the vehicle; pending or rejected ones never do.
func (s *SummaryService) VehicleToday(ctx context.Context, vehicleID uuid.UUID) (*models.VehicleTodayView, error) {
	vehicle, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, upstream("find vehicle", err)
	}

	today := s.Today()
	forms, err := s.forms.FindAll(ctx, repositories.FormFilter{VehicleID: &vehicle.ID, InspectionDate: today})
	if err != nil {
		return nil, upstream("list vehicle forms", err)
	}

	view := &models.VehicleTodayView{
		VehicleID:     vehicle.ID,
		VehicleNumber: vehicle.VehicleNumber,
		VehicleType:   s.vehicleTypeName(ctx, vehicle.VehicleTypeID),
		Date:          today,
		Forms:         s.assemble(ctx, forms),
	}
	for _, f := range forms {
		if f.Status == models.FormStatusApproved {
			view.HasP2HToday = true
			break
		}
	}
	return view, nil
}

func (s *SummaryService) Fleet(ctx context.Context) ([]models.FleetVehicle, error) {
	vehicles, err := s.vehicles.FindAll(ctx)
	if err != nil {
		return nil, upstream("list vehicles", err)
	}
	if len(vehicles) == 0 {
		return []models.FleetVehicle{}, nil
	}

	ids := make([]uuid.UUID, 0, len(vehicles))
	typeIDs := make([]uuid.UUID, 0, len(vehicles))
	for _, v := range vehicles {
		ids = append(ids, v.ID)
		typeIDs = append(typeIDs, v.VehicleTypeID)
	}

	today := s.Today()
	inspected, err := s.forms.ApprovedVehicleIDsOn(ctx, today, ids)
	if err != nil {
		return nil, upstream("approved vehicles today", err)
	}
	lastDates, err := s.forms.LatestApprovedDates(ctx, ids)
	if err != nil {
		configslog.Log.Warn("Last inspection dates unavailable", zap.Error(err))
		lastDates = map[uuid.UUID]string{}
	}
	typeNames := s.vehicleTypeNames(ctx, typeIDs)

	fleet := make([]models.FleetVehicle, 0, len(vehicles))
	for _, v := range vehicles {
		row := models.FleetVehicle{
			ID:            v.ID,
			VehicleNumber: v.VehicleNumber,
			VehicleType:   nameOr(typeNames, v.VehicleTypeID, models.UnknownVehicleType),
			Status:        v.Status,
			HasP2HToday:   inspected[v.ID],
		}
		if d, ok := lastDates[v.ID]; ok && d != "" {
			last := d
			row.LastP2HDate = &last
		}
		fleet = append(fleet, row)
	}
	return fleet, nil
}

// Detail returns a form with its evaluations. Drivers and supervisors only see
// their own forms; anything else looks like a missing form.
func (s *SummaryService) Detail(ctx context.Context, actor Actor, formID uuid.UUID) (*models.FormDetailView, error) {
	form, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, upstream("find form", err)
	}
	if !s.canView(ctx, actor, form) {
		return nil, ErrFormNotFound
	}

	details, err := s.details.FindByFormID(ctx, form.ID)
	if err != nil {
		return nil, upstream("load evaluations", err)
	}

	itemIDs := make([]uuid.UUID, 0, len(details))
	for _, d := range details {
		itemIDs = append(itemIDs, d.InspectionItemID)
	}
	items := map[uuid.UUID]models.InspectionItem{}
	if found, err := s.items.FindByIDs(ctx, itemIDs); err != nil {
		configslog.Log.Warn("Inspection items unavailable for detail", zap.Stringer("form_id", form.ID), zap.Error(err))
	} else {
		for _, it := range found {
			items[it.ID] = it
		}
	}

	evaluations := make([]models.EvaluationView, 0, len(details))
	for _, d := range details {
		ev := models.EvaluationView{
			ID:               d.ID,
			InspectionItemID: d.InspectionItemID,
			Category:         models.UnknownCategory,
			Description:      models.UnknownDescription,
			OrderNumber:      -1,
			Condition:        d.Condition,
			Notes:            d.Notes,
			ShowDangerCode:   d.Condition == models.ConditionRusak,
		}
		if it, ok := items[d.InspectionItemID]; ok {
			ev.Category = it.Category
			ev.Description = it.Description
			ev.OrderNumber = it.OrderNumber
			ev.DangerCode = it.DangerCode
		}
		evaluations = append(evaluations, ev)
	}
	// Items deleted from the checklist sort last.
	sort.SliceStable(evaluations, func(i, j int) bool {
		a, b := evaluations[i].OrderNumber, evaluations[j].OrderNumber
		if (a < 0) != (b < 0) {
			return b < 0
		}
		return a < b
	})

	summaries := s.assemble(ctx, []models.P2HForm{*form})
	return &models.FormDetailView{FormSummary: summaries[0], Evaluations: evaluations}, nil
}

func (s *SummaryService) canView(ctx context.Context, actor Actor, form *models.P2HForm) bool {
	switch {
	case actor.IsAdmin():
		return true
	case actor.IsPengawas():
		return actor.SubjectID != nil && *actor.SubjectID == form.SupervisorID
	case actor.IsDriver():
		if actor.SubjectID == nil {
			return false
		}
		if form.DriverID != nil {
			return *form.DriverID == *actor.SubjectID
		}
		driver, err := s.drivers.FindByID(ctx, *actor.SubjectID)
		return err == nil && driver.NIK != "" && driver.NIK == form.DriverNIK
	}
	return false
}

// assemble turns forms into summaries with one batched lookup per related
// table. Output order matches input order.
func (s *SummaryService) assemble(ctx context.Context, forms []models.P2HForm) []models.FormSummary {
	summaries := make([]models.FormSummary, 0, len(forms))
	if len(forms) == 0 {
		return summaries
	}

	formIDs := make([]uuid.UUID, 0, len(forms))
	driverIDs := make([]uuid.UUID, 0, len(forms))
	vehicleIDs := make([]uuid.UUID, 0, len(forms))
	supervisorIDs := make([]uuid.UUID, 0, len(forms))
	for _, f := range forms {
		formIDs = append(formIDs, f.ID)
		if f.DriverID != nil {
			driverIDs = append(driverIDs, *f.DriverID)
		}
		vehicleIDs = append(vehicleIDs, f.VehicleID)
		supervisorIDs = append(supervisorIDs, f.SupervisorID)
	}

	drivers := map[uuid.UUID]models.Driver{}
	if found, err := s.drivers.FindByIDs(ctx, driverIDs); err != nil {
		configslog.Log.Warn("Driver lookup failed, using placeholders", zap.Error(err))
	} else {
		for _, d := range found {
			drivers[d.ID] = d
		}
	}

	userIDs := make([]uuid.UUID, 0, len(drivers))
	for _, d := range drivers {
		if d.UserID != nil {
			userIDs = append(userIDs, *d.UserID)
		}
	}
	userNames := map[uuid.UUID]string{}
	if found, err := s.users.FindByIDs(ctx, userIDs); err != nil {
		configslog.Log.Warn("Linked account lookup failed, using placeholders", zap.Error(err))
	} else {
		for _, u := range found {
			userNames[u.ID] = u.Name
		}
	}

	vehicles := map[uuid.UUID]models.Vehicle{}
	if found, err := s.vehicles.FindByIDs(ctx, vehicleIDs); err != nil {
		configslog.Log.Warn("Vehicle lookup failed, using placeholders", zap.Error(err))
	} else {
		for _, v := range found {
			vehicles[v.ID] = v
		}
	}
	typeIDs := make([]uuid.UUID, 0, len(vehicles))
	for _, v := range vehicles {
		typeIDs = append(typeIDs, v.VehicleTypeID)
	}
	typeNames := s.vehicleTypeNames(ctx, typeIDs)

	supervisorNames := map[uuid.UUID]string{}
	if found, err := s.supervisors.FindByIDs(ctx, supervisorIDs); err != nil {
		configslog.Log.Warn("Supervisor lookup failed, using placeholders", zap.Error(err))
	} else {
		for _, sp := range found {
			supervisorNames[sp.ID] = sp.Name
		}
	}

	withIssues, err := s.details.FormIDsWithCondition(ctx, formIDs, models.ConditionRusak)
	if err != nil {
		configslog.Log.Warn("Issue lookup failed, has_issues defaults to false", zap.Error(err))
		withIssues = map[uuid.UUID]bool{}
	}

	for _, f := range forms {
		summary := models.FormSummary{
			ID:              f.ID,
			DriverID:        f.DriverID,
			DriverName:      models.UnknownDriver,
			DriverNIK:       f.DriverNIK,
			VehicleID:       f.VehicleID,
			VehicleNumber:   models.UnknownVehicle,
			VehicleType:     models.UnknownVehicleType,
			SupervisorID:    f.SupervisorID,
			SupervisorName:  nameOr(supervisorNames, f.SupervisorID, models.UnknownSupervisor),
			InspectionDate:  f.InspectionDate,
			Shift:           f.Shift,
			StartingMeter:   f.StartingMeter,
			Status:          f.Status,
			HasIssues:       withIssues[f.ID],
			CreatedAt:       f.CreatedAt,
			ApprovedAt:      f.ApprovedAt,
			ApprovedBy:      f.ApprovedBy,
			RejectedAt:      f.RejectedAt,
			RejectionReason: f.RejectionReason,
		}

		if f.DriverID != nil {
			if d, ok := drivers[*f.DriverID]; ok {
				switch {
				case d.Name != "":
					summary.DriverName = d.Name
				case d.UserID != nil && userNames[*d.UserID] != "":
					summary.DriverName = userNames[*d.UserID]
				}
				if summary.DriverNIK == "" {
					summary.DriverNIK = d.NIK
				}
			}
		}
		if summary.DriverNIK == "" {
			summary.DriverNIK = models.UnknownNIK
		}

		if v, ok := vehicles[f.VehicleID]; ok {
			if v.VehicleNumber != "" {
				summary.VehicleNumber = v.VehicleNumber
			}
			summary.VehicleType = nameOr(typeNames, v.VehicleTypeID, models.UnknownVehicleType)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func (s *SummaryService) vehicleTypeNames(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]string {
	names := map[uuid.UUID]string{}
	found, err := s.vehicles.FindTypesByIDs(ctx, ids)
	if err != nil {
		configslog.Log.Warn("Vehicle type lookup failed, using placeholders", zap.Error(err))
		return names
	}
	for _, t := range found {
		names[t.ID] = t.Name
	}
	return names
}

func (s *SummaryService) vehicleTypeName(ctx context.Context, id uuid.UUID) string {
	return nameOr(s.vehicleTypeNames(ctx, []uuid.UUID{id}), id, models.UnknownVehicleType)
}

func nameOr(names map[uuid.UUID]string, id uuid.UUID, fallback string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return fallback
}

var _ ISummaryService = (*SummaryService)(nil)

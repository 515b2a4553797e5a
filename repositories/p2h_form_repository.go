package repositories

import (
	"context"
	"errors"

	"p2h.app/configs/configslog"
	"p2h.app/models"
	"p2h.app/pkg/queryparams"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FormFilter narrows form queries to one read-model scope. Zero fields are
// ignored. When both DriverID and DriverNIK are set a form matches either.
type FormFilter struct {
	DriverID       *uuid.UUID
	DriverNIK      string
	SupervisorID   *uuid.UUID
	VehicleID      *uuid.UUID
	Status         string
	InspectionDate string
}

type IP2HFormRepository interface {
	Create(ctx context.Context, form *models.P2HForm) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.P2HForm, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.P2HForm, error)
	FindPaginated(ctx context.Context, filter FormFilter, params queryparams.ListParams) ([]models.P2HForm, int64, error)
	FindAll(ctx context.Context, filter FormFilter) ([]models.P2HForm, error)
	CountByStatus(ctx context.Context, filter FormFilter) (map[string]int64, error)
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (int64, error)
	ApprovedVehicleIDsOn(ctx context.Context, date string, vehicleIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	LatestApprovedDates(ctx context.Context, vehicleIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

type P2HFormRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.P2HForm]
}

func NewP2HFormRepository(db *gorm.DB) IP2HFormRepository {
	base := NewBaseRepository[models.P2HForm](db)
	base.SetAllowedSortColumns([]string{
		"created_at", "inspection_date", "status", "shift", "hm_km_awal",
	})
	return &P2HFormRepository{db: db, base: base}
}

func (r *P2HFormRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func (r *P2HFormRepository) Create(ctx context.Context, form *models.P2HForm) error {
	if form == nil || form.VehicleID == uuid.Nil || form.SupervisorID == uuid.Nil {
		return errors.New("form without vehicle or supervisor cannot be created")
	}
	return translateError(r.getDB(ctx).Create(form).Error)
}

func (r *P2HFormRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.P2HForm, error) {
	form, err := r.base.FindByID(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		configslog.Log.Error("P2HFormRepository.FindByID: DB error", zap.Stringer("id", id), zap.Error(err))
	}
	return form, err
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
// Backends without row locks (SQLite) ignore the clause.
func (r *P2HFormRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.P2HForm, error) {
	var form models.P2HForm
	err := r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&form).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &form, nil
}

func applyFormFilter(query *gorm.DB, filter FormFilter) *gorm.DB {
	switch {
	case filter.DriverID != nil && filter.DriverNIK != "":
		query = query.Where("(driver_id = ? OR driver_nik = ?)", *filter.DriverID, filter.DriverNIK)
	case filter.DriverID != nil:
		query = query.Where("driver_id = ?", *filter.DriverID)
	case filter.DriverNIK != "":
		query = query.Where("driver_nik = ?", filter.DriverNIK)
	}
	if filter.SupervisorID != nil {
		query = query.Where("supervisor_id = ?", *filter.SupervisorID)
	}
	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.InspectionDate != "" {
		query = query.Where("inspection_date = ?", filter.InspectionDate)
	}
	return query
}

// FindPaginated returns one page of forms plus the total count for the filter.
func (r *P2HFormRepository) FindPaginated(ctx context.Context, filter FormFilter, params queryparams.ListParams) ([]models.P2HForm, int64, error) {
	var forms []models.P2HForm
	var totalCount int64

	query := applyFormFilter(r.getDB(ctx).Model(&models.P2HForm{}), filter)
	if err := query.Count(&totalCount).Error; err != nil {
		configslog.Log.Error("P2HFormRepository.Count: DB error", zap.Error(err))
		return nil, 0, translateError(err)
	}
	if totalCount == 0 {
		return forms, 0, nil
	}

	err := query.
		Order(r.base.OrderClause(params.SortBy, params.OrderBy, "created_at")).
		Limit(params.PerPage).
		Offset(params.CalculateOffset()).
		Find(&forms).Error
	if err != nil {
		configslog.Log.Error("P2HFormRepository.FindPaginated: DB error", zap.Error(err))
		return nil, totalCount, translateError(err)
	}
	return forms, totalCount, nil
}

// FindAll returns every matching form, newest first.
func (r *P2HFormRepository) FindAll(ctx context.Context, filter FormFilter) ([]models.P2HForm, error) {
	var forms []models.P2HForm
	err := applyFormFilter(r.getDB(ctx).Model(&models.P2HForm{}), filter).
		Order("created_at desc").
		Find(&forms).Error
	if err != nil {
		configslog.Log.Error("P2HFormRepository.FindAll: DB error", zap.Error(err))
		return nil, translateError(err)
	}
	return forms, nil
}

func (r *P2HFormRepository) CountByStatus(ctx context.Context, filter FormFilter) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := applyFormFilter(r.getDB(ctx).Model(&models.P2HForm{}), filter).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Total
	}
	return counts, nil
}

// UpdateStatusIfPending applies updates only while the row is still pending.
// The affected row count tells the caller whether it won the transition.
func (r *P2HFormRepository) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	result := r.getDB(ctx).Model(&models.P2HForm{}).
		Where("id = ? AND status = ?", id, models.FormStatusPending).
		Updates(updates)
	if result.Error != nil {
		configslog.Log.Error("P2HFormRepository.UpdateStatusIfPending: DB error", zap.Stringer("id", id), zap.Error(result.Error))
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}

// UpdateStatus applies updates unconditionally; used by the admin override.
func (r *P2HFormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	result := r.getDB(ctx).Model(&models.P2HForm{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		configslog.Log.Error("P2HFormRepository.UpdateStatus: DB error", zap.Stringer("id", id), zap.Error(result.Error))
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}

// ApprovedVehicleIDsOn reports which vehicles have an approved form for date.
// A nil vehicleIDs slice means every vehicle.
func (r *P2HFormRepository) ApprovedVehicleIDsOn(ctx context.Context, date string, vehicleIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	query := r.getDB(ctx).Model(&models.P2HForm{}).
		Where("status = ? AND inspection_date = ?", models.FormStatusApproved, date)
	if vehicleIDs != nil {
		vehicleIDs = uniqueIDs(vehicleIDs)
		if len(vehicleIDs) == 0 {
			return map[uuid.UUID]bool{}, nil
		}
		query = query.Where("vehicle_id IN ?", vehicleIDs)
	}
	var ids []uuid.UUID
	if err := query.Distinct("vehicle_id").Pluck("vehicle_id", &ids).Error; err != nil {
		return nil, translateError(err)
	}
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// LatestApprovedDates returns the most recent approved inspection date per vehicle.
func (r *P2HFormRepository) LatestApprovedDates(ctx context.Context, vehicleIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	type row struct {
		VehicleID uuid.UUID
		LastDate  string
	}
	query := r.getDB(ctx).Model(&models.P2HForm{}).
		Select("vehicle_id, MAX(inspection_date) AS last_date").
		Where("status = ?", models.FormStatusApproved)
	if vehicleIDs != nil {
		vehicleIDs = uniqueIDs(vehicleIDs)
		if len(vehicleIDs) == 0 {
			return map[uuid.UUID]string{}, nil
		}
		query = query.Where("vehicle_id IN ?", vehicleIDs)
	}
	var rows []row
	if err := query.Group("vehicle_id").Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	out := make(map[uuid.UUID]string, len(rows))
	for _, rw := range rows {
		out[rw.VehicleID] = rw.LastDate
	}
	return out, nil
}

var _ IP2HFormRepository = (*P2HFormRepository)(nil)

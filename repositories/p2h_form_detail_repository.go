package repositories

import (
	"context"

	"p2h.app/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const detailInsertBatchSize = 100

type IP2HFormDetailRepository interface {
	CreateBatch(ctx context.Context, details []models.P2HFormDetail) error
	ExistsForForm(ctx context.Context, formID uuid.UUID) (bool, error)
	FindByFormID(ctx context.Context, formID uuid.UUID) ([]models.P2HFormDetail, error)
	FormIDsWithCondition(ctx context.Context, formIDs []uuid.UUID, condition string) (map[uuid.UUID]bool, error)
}

type P2HFormDetailRepository struct {
	db *gorm.DB
}

func NewP2HFormDetailRepository(db *gorm.DB) IP2HFormDetailRepository {
	return &P2HFormDetailRepository{db: db}
}

func (r *P2HFormDetailRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// CreateBatch inserts all rows. Callers wrap it in a transaction when the
// batch must be all-or-nothing.
func (r *P2HFormDetailRepository) CreateBatch(ctx context.Context, details []models.P2HFormDetail) error {
	if len(details) == 0 {
		return nil
	}
	return translateError(r.getDB(ctx).CreateInBatches(&details, detailInsertBatchSize).Error)
}

func (r *P2HFormDetailRepository) ExistsForForm(ctx context.Context, formID uuid.UUID) (bool, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.P2HFormDetail{}).
		Where("p2h_form_id = ?", formID).
		Count(&count).Error
	if err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

func (r *P2HFormDetailRepository) FindByFormID(ctx context.Context, formID uuid.UUID) ([]models.P2HFormDetail, error) {
	var details []models.P2HFormDetail
	if err := r.getDB(ctx).Where("p2h_form_id = ?", formID).Find(&details).Error; err != nil {
		return nil, translateError(err)
	}
	return details, nil
}

// FormIDsWithCondition returns the subset of formIDs having at least one
// evaluation in the given condition.
func (r *P2HFormDetailRepository) FormIDsWithCondition(ctx context.Context, formIDs []uuid.UUID, condition string) (map[uuid.UUID]bool, error) {
	out := map[uuid.UUID]bool{}
	formIDs = uniqueIDs(formIDs)
	if len(formIDs) == 0 {
		return out, nil
	}
	var ids []uuid.UUID
	err := r.getDB(ctx).Model(&models.P2HFormDetail{}).
		Where("p2h_form_id IN ? AND condition = ?", formIDs, condition).
		Distinct("p2h_form_id").
		Pluck("p2h_form_id", &ids).Error
	if err != nil {
		return nil, translateError(err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

var _ IP2HFormDetailRepository = (*P2HFormDetailRepository)(nil)

package repositories

import (
	"context"

	"p2h.app/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IP2HReviewLogRepository interface {
	Create(ctx context.Context, entry *models.P2HReviewLog) error
	FindByFormID(ctx context.Context, formID uuid.UUID) ([]models.P2HReviewLog, error)
}

type P2HReviewLogRepository struct {
	db *gorm.DB
}

func NewP2HReviewLogRepository(db *gorm.DB) IP2HReviewLogRepository {
	return &P2HReviewLogRepository{db: db}
}

func (r *P2HReviewLogRepository) Create(ctx context.Context, entry *models.P2HReviewLog) error {
	return translateError(dbFromContext(ctx, r.db).Create(entry).Error)
}

func (r *P2HReviewLogRepository) FindByFormID(ctx context.Context, formID uuid.UUID) ([]models.P2HReviewLog, error) {
	var entries []models.P2HReviewLog
	err := dbFromContext(ctx, r.db).
		Where("p2h_form_id = ?", formID).
		Order("created_at asc").
		Find(&entries).Error
	if err != nil {
		return nil, translateError(err)
	}
	return entries, nil
}

var _ IP2HReviewLogRepository = (*P2HReviewLogRepository)(nil)

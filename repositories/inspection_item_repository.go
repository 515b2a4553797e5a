package repositories

import (
	"context"

	"p2h.app/models"

	"gorm.io/gorm"
)

type IInspectionItemRepository interface {
	IBaseRepository[models.InspectionItem]
	FindActive(ctx context.Context) ([]models.InspectionItem, error)
	Count(ctx context.Context) (int64, error)
}

type InspectionItemRepository struct {
	*BaseRepository[models.InspectionItem]
}

func NewInspectionItemRepository(db *gorm.DB) IInspectionItemRepository {
	return &InspectionItemRepository{BaseRepository: NewBaseRepository[models.InspectionItem](db)}
}

// FindActive returns the checklist a driver must fill, in display order.
func (r *InspectionItemRepository) FindActive(ctx context.Context) ([]models.InspectionItem, error) {
	var items []models.InspectionItem
	err := r.getDB(ctx).
		Where("is_active = ?", true).
		Order("order_number asc").Order("category asc").
		Find(&items).Error
	if err != nil {
		return nil, translateError(err)
	}
	return items, nil
}

func (r *InspectionItemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.InspectionItem{}).Count(&count).Error
	return count, translateError(err)
}

var _ IInspectionItemRepository = (*InspectionItemRepository)(nil)

package repositories

import (
	"context"
	"strings"

	"p2h.app/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IDriverRepository interface {
	IBaseRepository[models.Driver]
	FindByNIK(ctx context.Context, nik string) (*models.Driver, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Driver, error)
}

type DriverRepository struct {
	*BaseRepository[models.Driver]
}

func NewDriverRepository(db *gorm.DB) IDriverRepository {
	return &DriverRepository{BaseRepository: NewBaseRepository[models.Driver](db)}
}

func (r *DriverRepository) FindByNIK(ctx context.Context, nik string) (*models.Driver, error) {
	nik = strings.TrimSpace(nik)
	if nik == "" {
		return nil, ErrNotFound
	}
	var driver models.Driver
	if err := r.getDB(ctx).Where("nik = ?", nik).First(&driver).Error; err != nil {
		return nil, translateError(err)
	}
	return &driver, nil
}

func (r *DriverRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Driver, error) {
	var driver models.Driver
	if err := r.getDB(ctx).Where("user_id = ?", userID).First(&driver).Error; err != nil {
		return nil, translateError(err)
	}
	return &driver, nil
}

var _ IDriverRepository = (*DriverRepository)(nil)

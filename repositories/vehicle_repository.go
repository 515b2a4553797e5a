package repositories

import (
	"context"

	"p2h.app/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IVehicleRepository interface {
	IBaseRepository[models.Vehicle]
	FindAll(ctx context.Context) ([]models.Vehicle, error)
	FindTypesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.VehicleType, error)
	FindTypeByName(ctx context.Context, name string) (*models.VehicleType, error)
	CreateType(ctx context.Context, vt *models.VehicleType) error
}

type VehicleRepository struct {
	*BaseRepository[models.Vehicle]
	types *BaseRepository[models.VehicleType]
}

func NewVehicleRepository(db *gorm.DB) IVehicleRepository {
	return &VehicleRepository{
		BaseRepository: NewBaseRepository[models.Vehicle](db),
		types:          NewBaseRepository[models.VehicleType](db),
	}
}

func (r *VehicleRepository) FindAll(ctx context.Context) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := r.getDB(ctx).Order("vehicle_number asc").Find(&vehicles).Error; err != nil {
		return nil, translateError(err)
	}
	return vehicles, nil
}

func (r *VehicleRepository) FindTypesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.VehicleType, error) {
	return r.types.FindByIDs(ctx, ids)
}

func (r *VehicleRepository) FindTypeByName(ctx context.Context, name string) (*models.VehicleType, error) {
	var vt models.VehicleType
	if err := r.types.getDB(ctx).Where("name = ?", name).First(&vt).Error; err != nil {
		return nil, translateError(err)
	}
	return &vt, nil
}

func (r *VehicleRepository) CreateType(ctx context.Context, vt *models.VehicleType) error {
	return r.types.Create(ctx, vt)
}

var _ IVehicleRepository = (*VehicleRepository)(nil)

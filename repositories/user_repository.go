package repositories

import (
	"context"

	"p2h.app/models"

	"gorm.io/gorm"
)

type IUserRepository interface {
	IBaseRepository[models.User]
	FindByUsernameAndRole(ctx context.Context, username, role string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type UserRepository struct {
	*BaseRepository[models.User]
}

func NewUserRepository(db *gorm.DB) IUserRepository {
	return &UserRepository{BaseRepository: NewBaseRepository[models.User](db)}
}

func (r *UserRepository) FindByUsernameAndRole(ctx context.Context, username, role string) (*models.User, error) {
	var user models.User
	err := r.getDB(ctx).Where("username = ? AND role = ?", username, role).First(&user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.getDB(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

var _ IUserRepository = (*UserRepository)(nil)

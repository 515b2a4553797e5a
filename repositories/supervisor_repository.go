package repositories

import (
	"context"
	"strings"

	"p2h.app/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultSupervisorSearchLimit = 20

type ISupervisorRepository interface {
	IBaseRepository[models.Supervisor]
	FindByNameExact(ctx context.Context, name string) (*models.Supervisor, error)
	FindByNameContains(ctx context.Context, fragment string) (*models.Supervisor, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Supervisor, error)
	Search(ctx context.Context, query string, limit int) ([]models.Supervisor, error)
}

type SupervisorRepository struct {
	*BaseRepository[models.Supervisor]
}

func NewSupervisorRepository(db *gorm.DB) ISupervisorRepository {
	return &SupervisorRepository{BaseRepository: NewBaseRepository[models.Supervisor](db)}
}

// FindByNameExact matches the whole name, ignoring case.
func (r *SupervisorRepository) FindByNameExact(ctx context.Context, name string) (*models.Supervisor, error) {
	var supervisor models.Supervisor
	err := r.getDB(ctx).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		Order("name asc").
		First(&supervisor).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &supervisor, nil
}

// FindByNameContains returns the alphabetically first supervisor whose name
// contains fragment, ignoring case. LIKE wildcards in fragment match literally.
func (r *SupervisorRepository) FindByNameContains(ctx context.Context, fragment string) (*models.Supervisor, error) {
	var supervisor models.Supervisor
	err := r.getDB(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(fragment))+"%").
		Order("name asc").
		First(&supervisor).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &supervisor, nil
}

func (r *SupervisorRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Supervisor, error) {
	var supervisor models.Supervisor
	if err := r.getDB(ctx).Where("user_id = ?", userID).First(&supervisor).Error; err != nil {
		return nil, translateError(err)
	}
	return &supervisor, nil
}

// Search backs the supervisor autocomplete. An empty query lists everyone.
func (r *SupervisorRepository) Search(ctx context.Context, query string, limit int) ([]models.Supervisor, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultSupervisorSearchLimit
	}
	db := r.getDB(ctx).Model(&models.Supervisor{})
	if q := strings.TrimSpace(query); q != "" {
		db = db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(q))+"%")
	}
	var supervisors []models.Supervisor
	if err := db.Order("name asc").Limit(limit).Find(&supervisors).Error; err != nil {
		return nil, translateError(err)
	}
	return supervisors, nil
}

var _ ISupervisorRepository = (*SupervisorRepository)(nil)

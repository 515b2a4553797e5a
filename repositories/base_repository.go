package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IBaseRepository covers the lookups every master-data table shares.
type IBaseRepository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]T, error)
	Create(ctx context.Context, entity *T) error
	SetAllowedSortColumns(columns []string)
	OrderClause(sortBy, orderBy, fallback string) string
}

type BaseRepository[T any] struct {
	db          *gorm.DB
	sortColumns map[string]struct{}
}

func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: db, sortColumns: map[string]struct{}{}}
}

func (r *BaseRepository[T]) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func (r *BaseRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	if id == uuid.Nil {
		return nil, ErrNotFound
	}
	var entity T
	if err := r.getDB(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, translateError(err)
	}
	return &entity, nil
}

// FindByIDs returns whatever subset of ids still exists, in no particular order.
func (r *BaseRepository[T]) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]T, error) {
	var entities []T
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return entities, nil
	}
	if err := r.getDB(ctx).Where("id IN ?", ids).Find(&entities).Error; err != nil {
		return nil, translateError(err)
	}
	return entities, nil
}

func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	return translateError(r.getDB(ctx).Create(entity).Error)
}

func (r *BaseRepository[T]) SetAllowedSortColumns(columns []string) {
	r.sortColumns = make(map[string]struct{}, len(columns))
	for _, c := range columns {
		r.sortColumns[c] = struct{}{}
	}
}

// OrderClause builds an ORDER BY fragment from whitelisted input only.
func (r *BaseRepository[T]) OrderClause(sortBy, orderBy, fallback string) string {
	if _, ok := r.sortColumns[sortBy]; !ok {
		sortBy = fallback
	}
	orderBy = strings.ToLower(orderBy)
	if orderBy != "asc" {
		orderBy = "desc"
	}
	return sortBy + " " + orderBy
}

var _ IBaseRepository[struct{}] = (*BaseRepository[struct{}])(nil)

// uniqueIDs drops nil and repeated ids, keeping first-seen order.
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// escapeLike makes user input safe inside a LIKE pattern using '\' as escape.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

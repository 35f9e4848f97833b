package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository is a generic persistence contract for entities with an integer
// primary key.
//
// GetByID returns gorm.ErrRecordNotFound when no row matches. Update is a
// WHERE-id overwrite and silently affects zero rows when the id is absent;
// callers that need a not-found signal must check existence first. Delete is
// idempotent.
type Repository[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id uint) (T, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uint) error
}

type gormRepository[T any] struct {
	db *gorm.DB
}

// NewRepository constructs a GORM-backed repository for the entity type T.
func NewRepository[T any](db *gorm.DB) Repository[T] {
	return &gormRepository[T]{db: db}
}

func (r *gormRepository[T]) GetAll(ctx context.Context) ([]T, error) {
	var entities []T
	if err := r.db.WithContext(ctx).Find(&entities).Error; err != nil {
		return nil, err
	}

	return entities, nil
}

func (r *gormRepository[T]) GetByID(ctx context.Context, id uint) (T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		var zero T
		return zero, err
	}

	return entity, nil
}

func (r *gormRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *gormRepository[T]) Update(ctx context.Context, entity *T) error {
	// Select("*") overwrites zero-valued columns too; created_at stays intact.
	return r.db.WithContext(ctx).Model(entity).
		Select("*").
		Omit("created_at").
		Updates(entity).Error
}

func (r *gormRepository[T]) Delete(ctx context.Context, id uint) error {
	var entity T
	return r.db.WithContext(ctx).Delete(&entity, id).Error
}

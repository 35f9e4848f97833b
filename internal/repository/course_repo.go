package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/prajjwal-ghimire/sms-go-api/internal/models"
)

// CourseRepository provides access to course records.
type CourseRepository interface {
	Repository[models.Course]
	// CountStudents reports how many students reference the course.
	CountStudents(ctx context.Context, id uint) (int64, error)
}

type courseRepository struct {
	Repository[models.Course]
	db *gorm.DB
}

// NewCourseRepository constructs a course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{
		Repository: NewRepository[models.Course](db),
		db:         db,
	}
}

func (r *courseRepository) CountStudents(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("course_id = ?", id).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/prajjwal-ghimire/sms-go-api/internal/models"
)

// StudentRepository provides access to student records. Reads preload the
// owning course so callers can render the course name without a second query.
type StudentRepository interface {
	Repository[models.Student]
}

type studentRepository struct {
	Repository[models.Student]
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{
		Repository: NewRepository[models.Student](db),
		db:         db,
	}
}

func (r *studentRepository) GetAll(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.WithContext(ctx).Preload("Course").Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Preload("Course").First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

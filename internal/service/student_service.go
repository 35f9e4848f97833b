package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/prajjwal-ghimire/sms-go-api/internal/dto"
	"github.com/prajjwal-ghimire/sms-go-api/internal/models"
	"github.com/prajjwal-ghimire/sms-go-api/internal/repository"
	"github.com/prajjwal-ghimire/sms-go-api/internal/storage"
)

// ErrStudentNotFound indicates the requested student does not exist.
var ErrStudentNotFound = errors.New("student not found")

// StudentService orchestrates student management use cases, including the
// lifecycle of uploaded profile images.
type StudentService interface {
	List(ctx context.Context) ([]dto.StudentResponse, error)
	Get(ctx context.Context, id uint) (dto.StudentResponse, error)
	CourseOptions(ctx context.Context, selected uint) ([]dto.CourseOption, error)
	Create(ctx context.Context, form dto.StudentForm, image *multipart.FileHeader) (dto.StudentResponse, error)
	Update(ctx context.Context, id uint, form dto.StudentForm, image *multipart.FileHeader) (dto.StudentResponse, error)
	Delete(ctx context.Context, id uint) error
}

type studentService struct {
	repo       repository.StudentRepository
	courseRepo repository.CourseRepository
	images     *storage.ImageStore
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo repository.StudentRepository, courseRepo repository.CourseRepository, images *storage.ImageStore, validator *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		repo:       repo,
		courseRepo: courseRepo,
		images:     images,
		validator:  validator,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) List(ctx context.Context) ([]dto.StudentResponse, error) {
	students, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, dto.NewStudentResponse(student))
	}

	return responses, nil
}

func (s *studentService) Get(ctx context.Context, id uint) (dto.StudentResponse, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

// CourseOptions returns the course selection list, marking the submitted
// course when the form is redisplayed. Always a fresh fetch, never cached.
func (s *studentService) CourseOptions(ctx context.Context, selected uint) ([]dto.CourseOption, error) {
	courses, err := s.courseRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	options := make([]dto.CourseOption, 0, len(courses))
	for _, course := range courses {
		options = append(options, dto.CourseOption{
			ID:       course.ID,
			Name:     course.Name,
			Selected: course.ID == selected,
		})
	}

	return options, nil
}

func (s *studentService) Create(ctx context.Context, form dto.StudentForm, image *multipart.FileHeader) (dto.StudentResponse, error) {
	form = s.sanitizeForm(form)
	if err := s.validator.Struct(form); err != nil {
		return dto.StudentResponse{}, fieldErrorsFrom(err)
	}

	student := studentFromForm(form)

	if image != nil && image.Size > 0 {
		imagePath, err := s.images.Store(ctx, image)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		student.ImagePath = &imagePath
	}

	if err := s.repo.Create(ctx, &student); err != nil {
		// The row never existed, so a stored image would be orphaned.
		if student.ImagePath != nil {
			if removeErr := s.images.Remove(ctx, *student.ImagePath); removeErr != nil {
				s.logger.Warn().Err(removeErr).Msg("failed to clean up image after create failure")
			}
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return dto.StudentResponse{}, FieldErrors{"courseId": "selected course does not exist"}
		}
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Msg("student created")
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Update(ctx context.Context, id uint, form dto.StudentForm, image *multipart.FileHeader) (dto.StudentResponse, error) {
	form = s.sanitizeForm(form)
	if err := s.validator.Struct(form); err != nil {
		return dto.StudentResponse{}, fieldErrorsFrom(err)
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	student := studentFromForm(form)
	student.ID = id
	student.ImagePath = existing.ImagePath

	// The old file is only deleted once the row points at the new one, so a
	// failed update never leaves the row referencing a missing image.
	newImagePath := ""
	if image != nil && image.Size > 0 {
		imagePath, err := s.images.Store(ctx, image)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		newImagePath = imagePath
		student.ImagePath = &newImagePath
	}

	if err := s.repo.Update(ctx, &student); err != nil {
		if newImagePath != "" {
			if removeErr := s.images.Remove(ctx, newImagePath); removeErr != nil {
				s.logger.Warn().Err(removeErr).Msg("failed to clean up image after update failure")
			}
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return dto.StudentResponse{}, FieldErrors{"courseId": "selected course does not exist"}
		}
		return dto.StudentResponse{}, err
	}

	if newImagePath != "" && existing.ImagePath != nil {
		if removeErr := s.images.Remove(ctx, *existing.ImagePath); removeErr != nil {
			s.logger.Warn().Err(removeErr).Str("path", *existing.ImagePath).Msg("failed to remove replaced image")
		}
	}

	s.logger.Info().Uint("student_id", id).Msg("student updated")
	return dto.NewStudentResponse(student), nil
}

// Delete removes the student row and its stored image. A missing student is
// treated as a no-op so repeated deletes stay idempotent.
func (s *studentService) Delete(ctx context.Context, id uint) error {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if student.ImagePath != nil {
		if err := s.images.Remove(ctx, *student.ImagePath); err != nil {
			s.logger.Warn().Err(err).Uint("student_id", id).Msg("failed to remove student image")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("student_id", id).Msg("student deleted")
	return nil
}

func (s *studentService) sanitizeForm(form dto.StudentForm) dto.StudentForm {
	form.Name = strings.TrimSpace(s.sanitizer.Sanitize(form.Name))
	form.Gender = strings.TrimSpace(s.sanitizer.Sanitize(form.Gender))
	form.Address = strings.TrimSpace(s.sanitizer.Sanitize(form.Address))
	form.PhoneNumber = strings.TrimSpace(form.PhoneNumber)
	form.Email = strings.TrimSpace(form.Email)
	form.Class = strings.TrimSpace(s.sanitizer.Sanitize(form.Class))
	form.Section = strings.TrimSpace(s.sanitizer.Sanitize(form.Section))
	return form
}

func studentFromForm(form dto.StudentForm) models.Student {
	return models.Student{
		Name:        form.Name,
		Gender:      form.Gender,
		Address:     form.Address,
		PhoneNumber: form.PhoneNumber,
		Email:       form.Email,
		Class:       form.Class,
		Section:     form.Section,
		CourseID:    form.CourseID,
	}
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/prajjwal-ghimire/sms-go-api/internal/dto"
	"github.com/prajjwal-ghimire/sms-go-api/internal/models"
	"github.com/prajjwal-ghimire/sms-go-api/internal/repository"
)

var (
	// ErrCourseNotFound indicates the requested course does not exist.
	ErrCourseNotFound = errors.New("course not found")
	// ErrCourseInUse indicates the course still has enrolled students.
	ErrCourseInUse = errors.New("course has enrolled students")
)

// CourseService orchestrates course management use cases.
type CourseService interface {
	List(ctx context.Context) ([]dto.CourseResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	Create(ctx context.Context, form dto.CourseForm) (dto.CourseResponse, error)
	Update(ctx context.Context, id uint, form dto.CourseForm) (dto.CourseResponse, error)
	DeleteConfirmation(ctx context.Context, id uint) (dto.CourseDeleteConfirmation, error)
	Delete(ctx context.Context, id uint) error
}

type courseService struct {
	repo      repository.CourseRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo repository.CourseRepository, validator *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		repo:      repo,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, dto.NewCourseResponse(course))
	}

	return responses, nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Create(ctx context.Context, form dto.CourseForm) (dto.CourseResponse, error) {
	form = s.sanitizeForm(form)
	if err := s.validator.Struct(form); err != nil {
		return dto.CourseResponse{}, fieldErrorsFrom(err)
	}

	course := models.Course{
		Code:        form.Code,
		Name:        form.Name,
		Description: form.Description,
		Credits:     form.Credits,
	}
	if err := s.repo.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Str("code", course.Code).Msg("course created")
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Update(ctx context.Context, id uint, form dto.CourseForm) (dto.CourseResponse, error) {
	form = s.sanitizeForm(form)
	if err := s.validator.Struct(form); err != nil {
		return dto.CourseResponse{}, fieldErrorsFrom(err)
	}

	// Repository Update is a silent no-op on a missing row, so existence is
	// checked here to surface not-found to the caller.
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		ID:          id,
		Code:        form.Code,
		Name:        form.Name,
		Description: form.Description,
		Credits:     form.Credits,
	}
	if err := s.repo.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", id).Msg("course updated")
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) DeleteConfirmation(ctx context.Context, id uint) (dto.CourseDeleteConfirmation, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseDeleteConfirmation{}, ErrCourseNotFound
		}
		return dto.CourseDeleteConfirmation{}, err
	}

	count, err := s.repo.CountStudents(ctx, id)
	if err != nil {
		return dto.CourseDeleteConfirmation{}, err
	}

	return dto.CourseDeleteConfirmation{
		Course:       dto.NewCourseResponse(course),
		StudentCount: count,
	}, nil
}

func (s *courseService) Delete(ctx context.Context, id uint) error {
	count, err := s.repo.CountStudents(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCourseInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("course_id", id).Msg("course deleted")
	return nil
}

func (s *courseService) sanitizeForm(form dto.CourseForm) dto.CourseForm {
	form.Code = strings.TrimSpace(s.sanitizer.Sanitize(form.Code))
	form.Name = strings.TrimSpace(s.sanitizer.Sanitize(form.Name))
	form.Description = strings.TrimSpace(s.sanitizer.Sanitize(form.Description))
	return form
}

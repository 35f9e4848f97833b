package handler

import (
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/prajjwal-ghimire/sms-go-api/internal/dto"
	"github.com/prajjwal-ghimire/sms-go-api/internal/middleware"
	"github.com/prajjwal-ghimire/sms-go-api/internal/service"
	"github.com/prajjwal-ghimire/sms-go-api/internal/utils"
)

const (
	studentListPath = "/Student"
	imageFormField  = "imageFile"
)

// StudentHandler wires the student workflow endpoints.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student routes to the router group.
func (h *StudentHandler) Register(router fiber.Router) {
	anyUser := middleware.AuthOptions{RequireUser: true}
	admin := middleware.AuthOptions{Role: middleware.AuthRoleAdmin}

	router.Get("", middleware.WithAuth(h.list, anyUser))
	router.Get("/Details/:id", middleware.WithAuth(h.details, anyUser))
	router.Get("/Create", middleware.WithAuth(h.createForm, admin))
	router.Post("/Create", middleware.WithAuth(h.create, admin))
	router.Get("/Edit/:id", middleware.WithAuth(h.editForm, admin))
	router.Post("/Edit/:id", middleware.WithAuth(h.edit, admin))
	router.Get("/Delete/:id", middleware.WithAuth(h.deleteForm, admin))
	router.Post("/Delete/:id", middleware.WithAuth(h.deleteConfirmed, admin))
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	students, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list students")
	}

	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *StudentHandler) details(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	student, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch student")
	}

	return utils.SendSuccess(c, "student retrieved", student)
}

func (h *StudentHandler) createForm(c *fiber.Ctx) error {
	options, err := h.service.CourseOptions(c.Context(), 0)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch course options")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch course options")
	}

	return utils.SendSuccess(c, "student form", dto.StudentFormView{CourseOptions: options})
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var form dto.StudentForm
	if err := c.BodyParser(&form); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if _, err := h.service.Create(c.Context(), form, h.imageFile(c)); err != nil {
		if fieldErrors, ok := service.AsFieldErrors(err); ok {
			return h.redisplay(c, form, fieldErrors)
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create student")
	}

	return c.Redirect(studentListPath, fiber.StatusSeeOther)
}

func (h *StudentHandler) editForm(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	student, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch student")
	}

	options, err := h.service.CourseOptions(c.Context(), student.CourseID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch course options")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch course options")
	}

	return utils.SendSuccess(c, "student form", fiber.Map{
		"values":         student,
		"course_options": options,
	})
}

func (h *StudentHandler) edit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var form dto.StudentForm
	if err := c.BodyParser(&form); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if form.ID != id {
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	}

	if _, err := h.service.Update(c.Context(), id, form, h.imageFile(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		default:
			if fieldErrors, ok := service.AsFieldErrors(err); ok {
				return h.redisplay(c, form, fieldErrors)
			}
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update student")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update student")
		}
	}

	return c.Redirect(studentListPath, fiber.StatusSeeOther)
}

func (h *StudentHandler) deleteForm(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	student, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch student")
	}

	return utils.SendSuccess(c, "confirm student deletion", student)
}

func (h *StudentHandler) deleteConfirmed(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete student")
	}

	return c.Redirect(studentListPath, fiber.StatusSeeOther)
}

// redisplay returns the submitted values with field errors and a freshly
// fetched course list, pre-selecting the submitted course.
func (h *StudentHandler) redisplay(c *fiber.Ctx, form dto.StudentForm, fieldErrors service.FieldErrors) error {
	options, err := h.service.CourseOptions(c.Context(), form.CourseID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch course options")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch course options")
	}

	return utils.Fail(c, fiber.StatusOK, "validation failed", fiber.Map{
		"values":         form,
		"errors":         fieldErrors,
		"course_options": options,
	})
}

func (h *StudentHandler) imageFile(c *fiber.Ctx) *multipart.FileHeader {
	file, err := c.FormFile(imageFormField)
	if err != nil {
		return nil
	}
	return file
}

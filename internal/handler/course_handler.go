package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/prajjwal-ghimire/sms-go-api/internal/dto"
	"github.com/prajjwal-ghimire/sms-go-api/internal/middleware"
	"github.com/prajjwal-ghimire/sms-go-api/internal/service"
	"github.com/prajjwal-ghimire/sms-go-api/internal/utils"
)

const courseListPath = "/Course"

// CourseHandler wires the course workflow endpoints.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(service service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: service,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches course routes to the router group. List and detail are
// open to any authenticated caller; mutations require the admin role.
func (h *CourseHandler) Register(router fiber.Router) {
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

func (h *CourseHandler) list(c *fiber.Ctx) error {
	courses, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list courses")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list courses")
	}

	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) details(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	course, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch course")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch course")
	}

	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) createForm(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "course form", fiber.Map{"values": dto.CourseForm{}})
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var form dto.CourseForm
	if err := c.BodyParser(&form); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if _, err := h.service.Create(c.Context(), form); err != nil {
		if fieldErrors, ok := service.AsFieldErrors(err); ok {
			return utils.Fail(c, fiber.StatusOK, "validation failed", fiber.Map{
				"values": form,
				"errors": fieldErrors,
			})
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create course")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create course")
	}

	return c.Redirect(courseListPath, fiber.StatusSeeOther)
}

func (h *CourseHandler) editForm(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	course, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch course")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch course")
	}

	return utils.SendSuccess(c, "course form", fiber.Map{"values": course})
}

func (h *CourseHandler) edit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var form dto.CourseForm
	if err := c.BodyParser(&form); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if form.ID != id {
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	}

	if _, err := h.service.Update(c.Context(), id, form); err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		default:
			if fieldErrors, ok := service.AsFieldErrors(err); ok {
				return utils.Fail(c, fiber.StatusOK, "validation failed", fiber.Map{
					"values": form,
					"errors": fieldErrors,
				})
			}
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update course")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update course")
		}
	}

	return c.Redirect(courseListPath, fiber.StatusSeeOther)
}

func (h *CourseHandler) deleteForm(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	confirmation, err := h.service.DeleteConfirmation(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch course")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch course")
	}

	return utils.SendSuccess(c, "confirm course deletion", confirmation)
}

func (h *CourseHandler) deleteConfirmed(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrCourseInUse) {
			return utils.SendError(c, fiber.StatusConflict, "course has enrolled students")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete course")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete course")
	}

	return c.Redirect(courseListPath, fiber.StatusSeeOther)
}

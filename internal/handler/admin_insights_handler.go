package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/trackora/trackora-api/internal/dto"
	"github.com/trackora/trackora-api/internal/service"
	"github.com/trackora/trackora-api/internal/utils"
)

// AdminInsightsHandler wires college-wide roster and analytics routes.
type AdminInsightsHandler struct {
	service   service.AdminInsightsService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAdminInsightsHandler constructs the handler.
func NewAdminInsightsHandler(service service.AdminInsightsService, validator *validator.Validate, logger zerolog.Logger) *AdminInsightsHandler {
	return &AdminInsightsHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "admin_insights_handler").Logger(),
	}
}

// Register attaches insights endpoints to the admin group.
func (h *AdminInsightsHandler) Register(router fiber.Router) {
	router.Get("/students", h.students)
	router.Get("/students/:id/progress", h.studentProgress)
	router.Get("/analytics", h.analytics)
	router.Get("/activities/export", h.exportActivities)
}

func (h *AdminInsightsHandler) students(c *fiber.Ctx) error {
	students, err := h.service.Students(c.Context(), collegeIDFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *AdminInsightsHandler) studentProgress(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	progress, err := h.service.StudentProgress(c.Context(), collegeIDFromContext(c), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "student progress retrieved", progress)
}

func (h *AdminInsightsHandler) analytics(c *fiber.Ctx) error {
	var req dto.AnalyticsRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	analytics, err := h.service.Analytics(c.Context(), collegeIDFromContext(c), req)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "analytics retrieved", analytics)
}

func (h *AdminInsightsHandler) exportActivities(c *fiber.Ctx) error {
	data, err := h.service.ExportActivitiesCSV(c.Context(), collegeIDFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="activities.csv"`)
	return c.Status(fiber.StatusOK).Send(data)
}

func (h *AdminInsightsHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/trackora/trackora-api/internal/service"
	"github.com/trackora/trackora-api/internal/utils"
)

// ProgressHandler exposes derived readiness and streak views.
type ProgressHandler struct {
	service service.ProgressService
	logger  zerolog.Logger
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(service service.ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register attaches progress endpoints to the router group.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Get("/summary", h.summary)
	router.Get("/readiness", h.readiness)
	router.Get("/streak", h.streak)
}

func (h *ProgressHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.CategorySummary(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "progress summary retrieved", summary)
}

func (h *ProgressHandler) readiness(c *fiber.Ctx) error {
	readiness, err := h.service.Readiness(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "readiness retrieved", readiness)
}

func (h *ProgressHandler) streak(c *fiber.Ctx) error {
	streak, err := h.service.Streak(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "streak retrieved", streak)
}

func (h *ProgressHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

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

// PracticeHandler wires the problem checklist HTTP routes.
type PracticeHandler struct {
	service service.PracticeService
	logger  zerolog.Logger
}

// NewPracticeHandler constructs the handler.
func NewPracticeHandler(service service.PracticeService, logger zerolog.Logger) *PracticeHandler {
	return &PracticeHandler{
		service: service,
		logger:  logger.With().Str("component", "practice_handler").Logger(),
	}
}

// Register attaches practice endpoints to the router group.
func (h *PracticeHandler) Register(router fiber.Router) {
	router.Post("/done", h.markDone)
	router.Post("/undone", h.markUndone)
	router.Get("/completed", h.completed)
}

func (h *PracticeHandler) markDone(c *fiber.Ctx) error {
	var payload dto.MarkDoneRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.MarkDone(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "problem marked as done", result)
}

func (h *PracticeHandler) markUndone(c *fiber.Ctx) error {
	var payload dto.MarkUndoneRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.MarkUndone(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "problem marked as not done", result)
}

func (h *PracticeHandler) completed(c *fiber.Ctx) error {
	completed, err := h.service.Completed(c.Context(), actorFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "completed problems retrieved", completed)
}

func (h *PracticeHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAlreadyCompleted):
		return utils.SendError(c, fiber.StatusConflict, "problem already marked as done")
	case errors.Is(err, service.ErrNotCompleted):
		return utils.SendError(c, fiber.StatusNotFound, "problem is not marked as done")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *PracticeHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

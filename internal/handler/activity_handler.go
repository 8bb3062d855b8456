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

// ActivityHandler wires the activity ledger HTTP routes.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity endpoints to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Post("", h.record)
	router.Get("", h.list)
	router.Get("/summary", h.summary)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *ActivityHandler) record(c *fiber.Ctx) error {
	var payload dto.RecordActivityRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	activity, err := h.service.Record(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity recorded", activity)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	activities, err := h.service.ListMine(c.Context(), actorFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "activities retrieved", activities)
}

func (h *ActivityHandler) summary(c *fiber.Ctx) error {
	window := c.Query("window", "weekly")
	summary, err := h.service.Summary(c.Context(), actorFromContext(c), window)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "summary retrieved", summary)
}

func (h *ActivityHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.UpdateActivityRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	activity, err := h.service.Update(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "activity updated", activity)
}

func (h *ActivityHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "activity deleted", fiber.Map{"id": id})
}

func (h *ActivityHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrActivityNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "activity not found")
	case errors.Is(err, service.ErrNotOwner):
		return utils.SendError(c, fiber.StatusForbidden, "you do not own this activity")
	case errors.Is(err, service.ErrInvalidCategory):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid category")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *ActivityHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

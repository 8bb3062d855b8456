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

// GoalHandler wires goal management routes for admins and the student
// assignment view.
type GoalHandler struct {
	service service.GoalService
	logger  zerolog.Logger
}

// NewGoalHandler constructs the handler.
func NewGoalHandler(service service.GoalService, logger zerolog.Logger) *GoalHandler {
	return &GoalHandler{
		service: service,
		logger:  logger.With().Str("component", "goal_handler").Logger(),
	}
}

// RegisterAdmin attaches goal management endpoints to the admin group.
func (h *GoalHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

// RegisterStudent attaches the student-facing assignment endpoint.
func (h *GoalHandler) RegisterStudent(router fiber.Router) {
	router.Get("", h.listMine)
}

func (h *GoalHandler) create(c *fiber.Ctx) error {
	var payload dto.GoalCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	goal, err := h.service.Create(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "goal created", goal)
}

func (h *GoalHandler) list(c *fiber.Ctx) error {
	goals, err := h.service.List(c.Context(), actorFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "goals retrieved", goals)
}

func (h *GoalHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GoalUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	goal, err := h.service.Update(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "goal updated", goal)
}

func (h *GoalHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "goal deleted", fiber.Map{"id": id})
}

func (h *GoalHandler) listMine(c *fiber.Ctx) error {
	assignments, err := h.service.ListMine(c.Context(), actorFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *GoalHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrGoalNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "goal not found")
	case errors.Is(err, service.ErrGoalForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "goal belongs to another college")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *GoalHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

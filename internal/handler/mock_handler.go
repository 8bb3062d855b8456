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

// MockInterviewHandler wires mock interview routes.
type MockInterviewHandler struct {
	service service.MockInterviewService
	logger  zerolog.Logger
}

// NewMockInterviewHandler constructs the handler.
func NewMockInterviewHandler(service service.MockInterviewService, logger zerolog.Logger) *MockInterviewHandler {
	return &MockInterviewHandler{
		service: service,
		logger:  logger.With().Str("component", "mock_interview_handler").Logger(),
	}
}

// Register attaches mock interview endpoints to the router group.
func (h *MockInterviewHandler) Register(router fiber.Router) {
	router.Get("/eligibility", h.eligibility)
	router.Post("/schedule", h.schedule)
	router.Get("", h.list)
}

func (h *MockInterviewHandler) eligibility(c *fiber.Ctx) error {
	eligibility, err := h.service.Eligibility(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "eligibility retrieved", eligibility)
}

func (h *MockInterviewHandler) schedule(c *fiber.Ctx) error {
	var payload dto.ScheduleMockRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	interview, err := h.service.Schedule(c.Context(), actorFromContext(c), payload)
	if err != nil {
		var validationErrors validator.ValidationErrors
		switch {
		case errors.Is(err, service.ErrNotEligible):
			return utils.SendError(c, fiber.StatusForbidden, "not yet eligible for a mock interview")
		case errors.As(err, &validationErrors):
			return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
		default:
			return h.internalError(c, err)
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "mock interview requested", interview)
}

func (h *MockInterviewHandler) list(c *fiber.Ctx) error {
	interviews, err := h.service.ListMine(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "mock interviews retrieved", interviews)
}

func (h *MockInterviewHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/trackora/trackora-api/internal/dto"
	"github.com/trackora/trackora-api/internal/service"
	"github.com/trackora/trackora-api/internal/utils"
)

// MentorHandler wires the AI mentor routes.
type MentorHandler struct {
	service service.MentorService
	logger  zerolog.Logger
}

// NewMentorHandler constructs the handler.
func NewMentorHandler(service service.MentorService, logger zerolog.Logger) *MentorHandler {
	return &MentorHandler{
		service: service,
		logger:  logger.With().Str("component", "mentor_handler").Logger(),
	}
}

// Register attaches mentor endpoints to the router group.
func (h *MentorHandler) Register(router fiber.Router) {
	router.Post("/chat", h.chat)
	router.Get("/roadmap", h.roadmap)
}

func (h *MentorHandler) chat(c *fiber.Ctx) error {
	var payload dto.MentorChatRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	reply, err := h.service.Chat(c.Context(), actorFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "mentor reply generated", reply)
}

func (h *MentorHandler) roadmap(c *fiber.Ctx) error {
	roadmap, err := h.service.Roadmap(c.Context(), actorFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "roadmap generated", roadmap)
}

func (h *MentorHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/trackora/trackora-api/internal/dto"
	"github.com/trackora/trackora-api/internal/service"
	"github.com/trackora/trackora-api/internal/utils"
)

// AuditHandler exposes the admin audit trail.
type AuditHandler struct {
	service   service.AuditService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(service service.AuditService, validator *validator.Validate, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "audit_handler").Logger(),
	}
}

// Register attaches audit endpoints to the admin group.
func (h *AuditHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *AuditHandler) list(c *fiber.Ctx) error {
	var req dto.AuditListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	page, err := h.service.List(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendPaged(c, "audit entries retrieved", page.Items, page.Pagination)
}

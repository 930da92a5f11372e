package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ujian-go-api/internal/dto"
	"github.com/noah-isme/ujian-go-api/internal/service"
	"github.com/noah-isme/ujian-go-api/internal/utils"
)

const defaultAppealPageSize = 50

// AdminHandler exposes ban lifting and appeal triage to the admin surface.
type AdminHandler struct {
	violations service.ViolationService
	appeals    service.AppealService
	logger     zerolog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(violations service.ViolationService, appeals service.AppealService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		violations: violations,
		appeals:    appeals,
		logger:     logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register wires the admin routes.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Post("/unban", h.unban)
	router.Get("/appeals", h.listAppeals)
	router.Post("/appeals/resolve", h.resolveAppeal)
}

func (h *AdminHandler) unban(c *fiber.Ctx) error {
	var req dto.UnbanRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.violations.Unban(c.Context(), req.NIS); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "ban lifted", fiber.Map{"nis": req.NIS})
}

func (h *AdminHandler) listAppeals(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	if limit <= 0 {
		limit = defaultAppealPageSize
	}

	appeals, err := h.appeals.ListOpen(c.Context(), limit)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "appeals retrieved", appeals)
}

func (h *AdminHandler) resolveAppeal(c *fiber.Ctx) error {
	var req dto.ResolveAppealRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.appeals.Resolve(c.Context(), req.ID); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "appeal resolved", fiber.Map{"id": req.ID})
}

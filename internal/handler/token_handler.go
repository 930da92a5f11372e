package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ujian-go-api/internal/dto"
	"github.com/noah-isme/ujian-go-api/internal/service"
	"github.com/noah-isme/ujian-go-api/internal/utils"
)

// TokenHandler exposes room token administration to proctors.
type TokenHandler struct {
	service service.TokenService
	logger  zerolog.Logger
}

// NewTokenHandler constructs the handler.
func NewTokenHandler(service service.TokenService, logger zerolog.Logger) *TokenHandler {
	return &TokenHandler{
		service: service,
		logger:  logger.With().Str("component", "token_handler").Logger(),
	}
}

// Register wires proctor token routes.
func (h *TokenHandler) Register(router fiber.Router) {
	router.Post("/tokens", h.create)
	router.Post("/tokens/teacher", h.createTeacher)
	router.Post("/tokens/list", h.list)
	router.Post("/tokens/cleanup", h.cleanup)
}

func (h *TokenHandler) create(c *fiber.Ctx) error {
	var req dto.TokenCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	token, err := h.service.Issue(c.Context(), req)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "token issued", token)
}

func (h *TokenHandler) createTeacher(c *fiber.Ctx) error {
	token, err := h.service.IssueTeacher(c.Context(), 24*time.Hour)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "teacher token issued", token)
}

func (h *TokenHandler) list(c *fiber.Ctx) error {
	var req dto.TokenListRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	tokens, err := h.service.List(c.Context(), req.All)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "tokens retrieved", tokens)
}

func (h *TokenHandler) cleanup(c *fiber.Ctx) error {
	var req dto.CleanupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	deleted, err := h.service.Cleanup(c.Context(), req.Force)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "token cleanup complete", dto.CleanupResponse{
		Force:   req.Force,
		Deleted: deleted,
	})
}

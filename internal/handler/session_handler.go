package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ujian-go-api/internal/dto"
	"github.com/noah-isme/ujian-go-api/internal/service"
	"github.com/noah-isme/ujian-go-api/internal/utils"
)

// SessionHandler exposes the student exam lifecycle.
type SessionHandler struct {
	service service.SessionService
	logger  zerolog.Logger
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service service.SessionService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register wires the public exam routes.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Post("/login", h.login)
	router.Post("/forms", h.forms)
	router.Post("/finish", h.finish)
	router.Post("/whoami", h.whoami)
}

// RegisterProctor wires proctor-only session routes.
func (h *SessionHandler) RegisterProctor(router fiber.Router) {
	router.Post("/sessions/cleanup", h.cleanup)
}

func (h *SessionHandler) login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	session, err := h.service.Login(c.Context(), req)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "session started", session)
}

func (h *SessionHandler) forms(c *fiber.Ctx) error {
	var req dto.SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	forms, err := h.service.FetchExam(c.Context(), req)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "forms retrieved", forms)
}

func (h *SessionHandler) finish(c *fiber.Ctx) error {
	var req dto.SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.service.Finish(c.Context(), req); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "session finished", nil)
}

func (h *SessionHandler) whoami(c *fiber.Ctx) error {
	var req dto.WhoAmIRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.service.WhoAmI(c.Context(), req)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "student resolved", student)
}

func (h *SessionHandler) cleanup(c *fiber.Ctx) error {
	var req dto.CleanupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	deleted, err := h.service.Cleanup(c.Context(), req.Force)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "session cleanup complete", dto.CleanupResponse{
		Force:   req.Force,
		Deleted: deleted,
	})
}

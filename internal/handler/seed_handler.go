package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ujian-go-api/internal/dto"
	"github.com/noah-isme/ujian-go-api/internal/service"
	"github.com/noah-isme/ujian-go-api/internal/utils"
)

// SeedHandler loads rosters and exam forms from trusted tooling. The routes
// are disabled unless a seed token is configured.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs the handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires the seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/students", h.seedStudents)
	router.Post("/forms", h.seedForms)
}

func (h *SeedHandler) seedStudents(c *fiber.Ctx) error {
	var req dto.SeedStudentsRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	affected, err := h.service.SeedStudents(c.Context(), c.Get("X-Seed-Token"), req)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "students seeded", dto.SeedResponse{Affected: affected})
}

func (h *SeedHandler) seedForms(c *fiber.Ctx) error {
	var req dto.SeedFormsRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	affected, err := h.service.SeedForms(c.Context(), c.Get("X-Seed-Token"), req)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "forms seeded", dto.SeedResponse{Affected: affected})
}

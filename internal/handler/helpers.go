package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ujian-go-api/internal/service"
	"github.com/noah-isme/ujian-go-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// sendServiceError maps service sentinels onto HTTP statuses.
// Unknown errors are logged with context and returned opaque.
func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErr validator.ValidationErrors
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, service.ErrAppealEmpty):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTokenNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrStudentNotRostered),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrTeacherNotFound),
		errors.Is(err, service.ErrNoForms),
		errors.Is(err, service.ErrAppealNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrSeedUnauthorized):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrRoomMismatch),
		errors.Is(err, service.ErrSeedDisabled):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrSessionActive):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	default:
		logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal error")
	}
}

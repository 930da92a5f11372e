package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ujian-go-api/internal/dto"
	"github.com/noah-isme/ujian-go-api/internal/models"
	"github.com/noah-isme/ujian-go-api/internal/repository"
)

// ErrAppealNotFound indicates no open appeal matched the identifier.
var ErrAppealNotFound = errors.New("appeal not found")

// ErrAppealEmpty indicates the appeal text contained no content once
// sanitized.
var ErrAppealEmpty = errors.New("appeal text empty after sanitization")

// AppealService records remedy requests. Submissions always succeed,
// including for banned identities, because the appeal is the remedy path for
// a ban.
type AppealService interface {
	Submit(ctx context.Context, submission dto.AppealSubmission) (dto.AppealResponse, error)
	ListOpen(ctx context.Context, limit int) ([]dto.AppealResponse, error)
	Resolve(ctx context.Context, id uint) error
}

type appealService struct {
	repo      repository.AppealRepository
	bus       EventPublisher
	validator *validator.Validate
	logger    zerolog.Logger
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

// NewAppealService constructs an appeal service.
func NewAppealService(repo repository.AppealRepository, bus EventPublisher, validate *validator.Validate, logger zerolog.Logger) AppealService {
	return &appealService{
		repo:      repo,
		bus:       bus,
		validator: validate,
		logger:    logger.With().Str("component", "appeal_service").Logger(),
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

func (s *appealService) Submit(ctx context.Context, submission dto.AppealSubmission) (dto.AppealResponse, error) {
	if err := s.validator.Struct(submission); err != nil {
		return dto.AppealResponse{}, err
	}

	text := strings.TrimSpace(s.sanitizer.Sanitize(submission.Text))
	if text == "" {
		return dto.AppealResponse{}, ErrAppealEmpty
	}

	appeal := models.Appeal{
		NIS:       submission.NIS,
		Text:      text,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, &appeal); err != nil {
		return dto.AppealResponse{}, err
	}

	s.logger.Info().Str("nis", submission.NIS).Uint("appeal_id", appeal.ID).Msg("appeal recorded")
	s.bus.PublishAdmins(dto.EventAppealNotice, dto.AppealNotice{ID: appeal.ID, NIS: appeal.NIS, Text: appeal.Text})

	return dto.NewAppealResponse(appeal), nil
}

func (s *appealService) ListOpen(ctx context.Context, limit int) ([]dto.AppealResponse, error) {
	appeals, err := s.repo.ListOpen(ctx, limit)
	if err != nil {
		return nil, err
	}

	return dto.NewAppealResponseSlice(appeals), nil
}

func (s *appealService) Resolve(ctx context.Context, id uint) error {
	resolved, err := s.repo.Resolve(ctx, id)
	if err != nil {
		return err
	}
	if !resolved {
		return ErrAppealNotFound
	}

	return nil
}

package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/ujian-go-api/internal/dto"
	"github.com/noah-isme/ujian-go-api/internal/models"
	"github.com/noah-isme/ujian-go-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided seed token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService loads reference data the engine only reads: the student
// roster and the exam catalog. It stands in for the external import
// tooling in development and staging.
type SeedService interface {
	SeedStudents(ctx context.Context, token string, req dto.SeedStudentsRequest) (int64, error)
	SeedForms(ctx context.Context, token string, req dto.SeedFormsRequest) (int64, error)
}

type seedService struct {
	students  repository.StudentRepository
	forms     repository.ExamFormRepository
	enabled   bool
	token     string
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(students repository.StudentRepository, forms repository.ExamFormRepository, enabled bool, token string, validate *validator.Validate, logger zerolog.Logger) SeedService {
	return &seedService{
		students:  students,
		forms:     forms,
		enabled:   enabled,
		token:     token,
		validator: validate,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedStudents(ctx context.Context, token string, req dto.SeedStudentsRequest) (int64, error) {
	if err := s.guard(token); err != nil {
		return 0, err
	}
	if err := s.validator.Struct(req); err != nil {
		return 0, err
	}

	students := make([]models.Student, 0, len(req.Students))
	roster := make([]models.RoomRoster, 0, len(req.Students))
	for _, seed := range req.Students {
		students = append(students, models.Student{
			NIS:   seed.NIS,
			Name:  seed.Name,
			Grade: seed.Grade,
			Class: seed.Class,
		})
		if room := strings.TrimSpace(seed.Room); room != "" {
			roster = append(roster, models.RoomRoster{Room: room, NIS: seed.NIS})
		}
	}

	affected, err := s.students.ReplaceAll(ctx, students, roster)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("affected", affected).Msg("students seeded")
	return affected, nil
}

// SeedForms replaces every form for the (grade, subject) pair, honouring the
// import guarantee of exactly one row per (grade, class, subject) triple.
func (s *seedService) SeedForms(ctx context.Context, token string, req dto.SeedFormsRequest) (int64, error) {
	if err := s.guard(token); err != nil {
		return 0, err
	}
	if err := s.validator.Struct(req); err != nil {
		return 0, err
	}

	forms := make([]models.ExamForm, 0, len(req.Forms))
	for _, seed := range req.Forms {
		forms = append(forms, models.ExamForm{
			Grade:   req.Grade,
			Class:   seed.Class,
			Subject: req.Subject,
			Payload: datatypes.JSON(seed.Payload),
		})
	}

	affected, err := s.forms.ReplaceBySubject(ctx, req.Grade, req.Subject, forms)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Str("grade", req.Grade).Str("subject", req.Subject).Int64("affected", affected).Msg("exam forms seeded")
	return affected, nil
}

func (s *seedService) guard(token string) error {
	if !s.enabled {
		return ErrSeedDisabled
	}
	if s.token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
		return ErrSeedUnauthorized
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/ujian-go-api/internal/dto"
	"github.com/noah-isme/ujian-go-api/internal/repository"
)

// ErrTeacherNotFound indicates the teacher identifier is unknown.
var ErrTeacherNotFound = errors.New("teacher not found")

const teacherJWTTTL = 8 * time.Hour

// TeacherService authenticates teachers against teacher-scoped tokens and
// issues the JWT that gates the proctor and admin surfaces.
type TeacherService interface {
	Login(ctx context.Context, req dto.TeacherLoginRequest) (dto.TeacherLoginResponse, error)
	List(ctx context.Context) ([]dto.TeacherSummary, error)
}

type teacherService struct {
	teachers  repository.TeacherRepository
	tokens    TokenService
	jwtSecret string
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewTeacherService constructs a teacher service.
func NewTeacherService(teachers repository.TeacherRepository, tokens TokenService, jwtSecret string, validate *validator.Validate, logger zerolog.Logger) TeacherService {
	return &teacherService{
		teachers:  teachers,
		tokens:    tokens,
		jwtSecret: jwtSecret,
		validator: validate,
		logger:    logger.With().Str("component", "teacher_service").Logger(),
		now:       time.Now,
	}
}

func (s *teacherService) Login(ctx context.Context, req dto.TeacherLoginRequest) (dto.TeacherLoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TeacherLoginResponse{}, err
	}

	if _, err := s.tokens.ValidateTeacher(ctx, req.Token); err != nil {
		return dto.TeacherLoginResponse{}, err
	}

	teacher, err := s.teachers.GetByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherLoginResponse{}, ErrTeacherNotFound
		}
		return dto.TeacherLoginResponse{}, err
	}

	now := s.now()
	seed := strings.ReplaceAll(uuid.NewString(), "-", "")
	hash := deriveSessionHash(fmt.Sprint(teacher.ID), "teacher", req.Token, seed)

	claims := jwt.MapClaims{
		"sub":  fmt.Sprint(teacher.ID),
		"name": teacher.Name,
		"role": "teacher",
		"iat":  now.Unix(),
		"exp":  now.Add(teacherJWTTTL).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return dto.TeacherLoginResponse{}, err
	}

	s.logger.Info().Uint("teacher_id", teacher.ID).Msg("teacher logged in")

	return dto.TeacherLoginResponse{
		Name:        teacher.Name,
		SessionHash: hash,
		SpecialKey:  seed[:4] + hash[:4],
		AccessToken: accessToken,
	}, nil
}

func (s *teacherService) List(ctx context.Context) ([]dto.TeacherSummary, error) {
	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.TeacherSummary, 0, len(teachers))
	for _, teacher := range teachers {
		summaries = append(summaries, dto.TeacherSummary{ID: teacher.ID, Name: teacher.Name})
	}

	return summaries, nil
}

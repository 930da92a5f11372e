package service

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/ujian-go-api/internal/dto"
	"github.com/noah-isme/ujian-go-api/internal/models"
	"github.com/noah-isme/ujian-go-api/internal/observability"
	"github.com/noah-isme/ujian-go-api/internal/repository"
)

// Sentinel errors surfaced by the session state machine.
var (
	ErrSessionActive      = errors.New("student already has an active session")
	ErrSessionNotFound    = errors.New("exam session not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrStudentNotRostered = errors.New("student not rostered for room")
)

// SessionService owns the exam session lifecycle: NoSession -> Active ->
// Finished. A student can re-enter across the Finished boundary but never
// hold two Active sessions.
type SessionService interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	FetchExam(ctx context.Context, req dto.SessionRequest) (dto.ExamFormsResponse, error)
	Finish(ctx context.Context, req dto.SessionRequest) error
	ForceFinish(ctx context.Context, nis, reason string) error
	ActiveSession(ctx context.Context, nis string) (models.Session, error)
	VerifyCredential(ctx context.Context, nis, sessionHash string) error
	WhoAmI(ctx context.Context, req dto.WhoAmIRequest) (dto.WhoAmIResponse, error)
	Cleanup(ctx context.Context, force bool) (int64, error)
}

type sessionService struct {
	sessions  repository.SessionRepository
	students  repository.StudentRepository
	tokens    TokenService
	catalog   ExamCatalogService
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewSessionService constructs a session service.
func NewSessionService(sessions repository.SessionRepository, students repository.StudentRepository, tokens TokenService, catalog ExamCatalogService, validate *validator.Validate, logger zerolog.Logger) SessionService {
	return &sessionService{
		sessions:  sessions,
		students:  students,
		tokens:    tokens,
		catalog:   catalog,
		validator: validate,
		logger:    logger.With().Str("component", "session_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/ujian-go-api/internal/service/session"),
		now:       time.Now,
	}
}

// Login admits a student into a room. The active-session check is not done
// in application code: the insert races against concurrent logins for the
// same student and the database's partial unique index rejects the losers,
// which surface here as ErrSessionActive.
func (s *sessionService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "session.login", trace.WithAttributes(
		attribute.String("exam.nis", req.NIS),
		attribute.String("exam.room", req.Room),
	))
	defer span.End()

	if _, err := s.tokens.Validate(spanCtx, req.Token, req.Room); err != nil {
		observability.LoginsTotal().WithLabelValues("rejected_token").Inc()
		return dto.LoginResponse{}, err
	}

	student, err := s.students.GetByNIS(spanCtx, req.NIS)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.LoginsTotal().WithLabelValues("unknown_student").Inc()
			return dto.LoginResponse{}, ErrStudentNotFound
		}
		return dto.LoginResponse{}, err
	}

	rostered, err := s.students.InRoom(spanCtx, req.NIS, req.Room)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	if !rostered {
		observability.LoginsTotal().WithLabelValues("not_rostered").Inc()
		return dto.LoginResponse{}, ErrStudentNotRostered
	}

	seed := strings.ReplaceAll(uuid.NewString(), "-", "")
	sessionHash := deriveSessionHash(req.NIS, req.Room, req.Token, seed)
	session := models.Session{
		SessionHash: sessionHash,
		NIS:         req.NIS,
		Room:        req.Room,
		Seed:        seed,
		SpecialKey:  seed[:4] + sessionHash[:4],
		Active:      true,
		StartedAt:   s.now(),
	}

	if err := s.sessions.Create(spanCtx, &session); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.LoginsTotal().WithLabelValues("conflict").Inc()
			return dto.LoginResponse{}, ErrSessionActive
		}
		span.RecordError(err)
		return dto.LoginResponse{}, err
	}

	observability.LoginsTotal().WithLabelValues("accepted").Inc()
	s.logger.Info().Str("nis", req.NIS).Str("room", req.Room).Msg("exam session opened")

	return dto.LoginResponse{
		Name:        student.Name,
		SessionHash: session.SessionHash,
		Seed:        session.Seed,
		SpecialKey:  session.SpecialKey,
	}, nil
}

// FetchExam resolves the student's grade and returns every form for it.
// Read-only and repeatable; it requires an active session matching both
// identifiers.
func (s *sessionService) FetchExam(ctx context.Context, req dto.SessionRequest) (dto.ExamFormsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ExamFormsResponse{}, err
	}

	session, err := s.sessions.GetByHash(ctx, req.SessionHash, req.NIS)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamFormsResponse{}, ErrSessionNotFound
		}
		return dto.ExamFormsResponse{}, err
	}
	if !session.Active {
		return dto.ExamFormsResponse{}, ErrSessionNotFound
	}

	student, err := s.students.GetByNIS(ctx, req.NIS)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamFormsResponse{}, ErrStudentNotFound
		}
		return dto.ExamFormsResponse{}, err
	}

	forms, err := s.catalog.FormsForGrade(ctx, student.Grade, student.Class)
	if err != nil {
		return dto.ExamFormsResponse{}, err
	}

	return dto.ExamFormsResponse{Grade: student.Grade, Forms: forms}, nil
}

// Finish submits the exam. Finishing an already-finished session succeeds
// without touching finished_at again.
func (s *sessionService) Finish(ctx context.Context, req dto.SessionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	if _, err := s.sessions.GetByHash(ctx, req.SessionHash, req.NIS); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	if err := s.sessions.Finish(ctx, req.SessionHash, req.NIS, s.now()); err != nil {
		return err
	}

	s.logger.Info().Str("nis", req.NIS).Msg("exam session finished")
	return nil
}

// ForceFinish ends whichever session is currently active for the student.
// Used by the integrity pipeline when a ban is applied.
func (s *sessionService) ForceFinish(ctx context.Context, nis, reason string) error {
	affected, err := s.sessions.FinishActive(ctx, nis, s.now())
	if err != nil {
		return err
	}

	if affected > 0 {
		s.logger.Warn().Str("nis", nis).Str("reason", reason).Msg("exam session force-finished")
	}
	return nil
}

// ActiveSession exposes the student's current active session to sibling
// components; they never read session rows directly.
func (s *sessionService) ActiveSession(ctx context.Context, nis string) (models.Session, error) {
	session, err := s.sessions.GetActive(ctx, nis)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}

	return session, nil
}

// VerifyCredential checks that the (session hash, NIS) pair names a real
// session in any state. Finished sessions still authenticate: a banned
// student keeps the realtime channel for appeals.
func (s *sessionService) VerifyCredential(ctx context.Context, nis, sessionHash string) error {
	if nis == "" || sessionHash == "" {
		return ErrSessionNotFound
	}

	if _, err := s.sessions.GetByHash(ctx, sessionHash, nis); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}

func (s *sessionService) WhoAmI(ctx context.Context, req dto.WhoAmIRequest) (dto.WhoAmIResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.WhoAmIResponse{}, err
	}

	student, err := s.students.GetByNIS(ctx, req.NIS)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.WhoAmIResponse{}, ErrStudentNotFound
		}
		return dto.WhoAmIResponse{}, err
	}

	return dto.WhoAmIResponse{NIS: student.NIS, Name: student.Name}, nil
}

// Cleanup deletes finished sessions, or every session when force is set.
// Active rows are never removed outside force mode.
func (s *sessionService) Cleanup(ctx context.Context, force bool) (int64, error) {
	if force {
		return s.sessions.DeleteAll(ctx)
	}

	return s.sessions.DeleteFinished(ctx)
}

func deriveSessionHash(nis, room, token, seed string) string {
	sum := sha512.Sum512([]byte(fmt.Sprintf("%s:%s:%s:%s", nis, room, token, seed)))
	return hex.EncodeToString(sum[:])
}

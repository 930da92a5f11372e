package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
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

const defaultViolationReason = "violation"

// ViolationService applies the ban policy: it counts violations per student,
// and once the configured threshold is crossed it force-finishes the active
// session, revokes the implicated token and broadcasts the ban. The realtime
// channel itself is left open so the student can still appeal.
type ViolationService interface {
	Report(ctx context.Context, report dto.ViolationReport) (dto.ViolationOutcome, error)
	Unban(ctx context.Context, nis string) error
	ActiveBan(ctx context.Context, nis string) (models.Ban, bool, error)
}

type violationService struct {
	violations repository.ViolationRepository
	sessions   SessionService
	tokens     TokenService
	bus        EventPublisher
	validator  *validator.Validate
	logger     zerolog.Logger
	tracer     trace.Tracer
	sanitizer  *bluemonday.Policy
	threshold  int
	now        func() time.Time
}

// NewViolationService constructs a violation service. Threshold is the
// number of violations that triggers a ban; values below one fall back to
// zero-tolerance.
func NewViolationService(violations repository.ViolationRepository, sessions SessionService, tokens TokenService, bus EventPublisher, threshold int, validate *validator.Validate, logger zerolog.Logger) ViolationService {
	if threshold < 1 {
		threshold = 1
	}

	return &violationService{
		violations: violations,
		sessions:   sessions,
		tokens:     tokens,
		bus:        bus,
		validator:  validate,
		logger:     logger.With().Str("component", "violation_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/ujian-go-api/internal/service/violation"),
		sanitizer:  bluemonday.StrictPolicy(),
		threshold:  threshold,
		now:        time.Now,
	}
}

// Report records the violation and applies the ban policy. Once a student is
// banned the call stays idempotent: the counter still moves but the side
// effects (force-finish, revoke, broadcast) fire exactly once, guarded by
// the conditional banned_at transition in the store.
func (s *violationService) Report(ctx context.Context, report dto.ViolationReport) (dto.ViolationOutcome, error) {
	if err := s.validator.Struct(report); err != nil {
		return dto.ViolationOutcome{}, err
	}

	reason := strings.TrimSpace(s.sanitizer.Sanitize(report.Reason))
	if reason == "" {
		reason = defaultViolationReason
	}

	spanCtx, span := s.tracer.Start(ctx, "integrity.report_violation", trace.WithAttributes(
		attribute.String("exam.nis", report.NIS),
		attribute.String("violation.reason", reason),
	))
	defer span.End()

	violation := models.Violation{
		NIS:        report.NIS,
		Reason:     reason,
		OccurredAt: s.now(),
	}
	if session, err := s.sessions.ActiveSession(spanCtx, report.NIS); err == nil {
		violation.SessionHash = session.SessionHash
	}

	if err := s.violations.Append(spanCtx, &violation); err != nil {
		span.RecordError(err)
		return dto.ViolationOutcome{}, err
	}

	ban, err := s.violations.Increment(spanCtx, report.NIS)
	if err != nil {
		span.RecordError(err)
		return dto.ViolationOutcome{}, err
	}

	observability.ViolationsTotal().Inc()
	outcome := dto.ViolationOutcome{NIS: report.NIS, Violations: ban.Violations}

	if ban.Violations < s.threshold {
		return outcome, nil
	}

	applied, err := s.violations.MarkBanned(spanCtx, report.NIS, s.now(), reason)
	if err != nil {
		span.RecordError(err)
		return dto.ViolationOutcome{}, err
	}
	if !applied {
		// Already banned by an earlier report; no duplicate side effects.
		return outcome, nil
	}

	outcome.BanTriggered = true
	observability.BansTotal().Inc()
	s.logger.Warn().Str("nis", report.NIS).Str("reason", reason).Int("violations", ban.Violations).Msg("student banned")

	if err := s.sessions.ForceFinish(spanCtx, report.NIS, reason); err != nil {
		s.logger.Error().Err(err).Str("nis", report.NIS).Msg("failed to force-finish session for ban")
	}

	if report.Token != "" {
		if err := s.tokens.Revoke(spanCtx, report.Token); err != nil {
			s.logger.Error().Err(err).Str("nis", report.NIS).Msg("failed to revoke token for ban")
		}
	}

	s.bus.Publish(report.NIS, dto.EventBan, dto.BanEvent{NIS: report.NIS, Reason: reason})
	s.bus.PublishAdmins(dto.EventBanNotice, dto.BanEvent{NIS: report.NIS, Reason: reason, Violations: ban.Violations})

	return outcome, nil
}

// Unban clears the ban row and the violation counter. It does not resurrect
// the finished session; the student must log in again with a fresh token.
func (s *violationService) Unban(ctx context.Context, nis string) error {
	if err := s.validator.Var(nis, "required,max=32"); err != nil {
		return err
	}

	if err := s.violations.DeleteBan(ctx, nis); err != nil {
		return err
	}

	s.logger.Info().Str("nis", nis).Msg("student unbanned")
	s.bus.Publish(nis, dto.EventUnbanned, dto.UnbanEvent{NIS: nis})
	s.bus.PublishAdmins(dto.EventUnbanAck, dto.UnbanEvent{NIS: nis})

	return nil
}

// ActiveBan reports whether the student is currently banned. Used by the
// realtime bus to replay the ban to reconnecting clients.
func (s *violationService) ActiveBan(ctx context.Context, nis string) (models.Ban, bool, error) {
	ban, err := s.violations.GetBan(ctx, nis)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Ban{}, false, nil
		}
		return models.Ban{}, false, err
	}

	return ban, ban.Banned(), nil
}

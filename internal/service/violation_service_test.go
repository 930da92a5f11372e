package service

import (
	"context"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/ujian-go-api/internal/dto"
	"github.com/noah-isme/ujian-go-api/internal/models"
	"github.com/noah-isme/ujian-go-api/internal/repository"
)

type publishedEvent struct {
	Identity string
	Event    string
	Payload  interface{}
}

type busRecorder struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (b *busRecorder) Publish(identity, event string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{Identity: identity, Event: event, Payload: payload})
}

func (b *busRecorder) PublishAdmins(event string, payload interface{}) {
	b.Publish(AdminsRoom, event, payload)
}

func (b *busRecorder) count(identity, event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.Identity == identity && e.Event == event {
			n++
		}
	}
	return n
}

type violationFixture struct {
	db         *gorm.DB
	bus        *busRecorder
	tokens     TokenService
	sessions   SessionService
	violations ViolationService
}

func newViolationFixture(t *testing.T, threshold int) violationFixture {
	t.Helper()
	db := newServiceTestDB(t)
	validate := testValidator()
	bus := &busRecorder{}

	tokens := NewTokenService(repository.NewTokenRepository(db), 0, validate, testLogger())
	catalog := NewExamCatalogService(repository.NewExamFormRepository(db), testLogger())
	sessions := NewSessionService(repository.NewSessionRepository(db), repository.NewStudentRepository(db), tokens, catalog, validate, testLogger())
	violations := NewViolationService(repository.NewViolationRepository(db), sessions, tokens, bus, threshold, validate, testLogger())

	require.NoError(t, db.Create(&models.Student{NIS: "1234", Name: "Alya", Grade: "12", Class: "A"}).Error)
	require.NoError(t, db.Create(&models.RoomRoster{Room: "R1", NIS: "1234"}).Error)
	require.NoError(t, db.Create(&models.ExamForm{Grade: "12", Subject: "math", Payload: datatypes.JSON(`{"form":"m"}`)}).Error)

	return violationFixture{db: db, bus: bus, tokens: tokens, sessions: sessions, violations: violations}
}

func (f violationFixture) login(t *testing.T) (string, string) {
	t.Helper()
	token, err := f.tokens.Issue(context.Background(), dto.TokenCreateRequest{Room: "R1"})
	require.NoError(t, err)
	resp, err := f.sessions.Login(context.Background(), dto.LoginRequest{Token: token.Token, Room: "R1", NIS: "1234"})
	require.NoError(t, err)
	return token.Token, resp.SessionHash
}

func TestViolationServiceZeroToleranceBansImmediately(t *testing.T) {
	f := newViolationFixture(t, 1)
	ctx := context.Background()
	token, _ := f.login(t)

	outcome, err := f.violations.Report(ctx, dto.ViolationReport{NIS: "1234", Token: token, Reason: "switched tab"})
	require.NoError(t, err)
	require.True(t, outcome.BanTriggered)
	require.Equal(t, 1, outcome.Violations)

	// Session force-finished and token revoked.
	_, err = f.sessions.ActiveSession(ctx, "1234")
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.tokens.Validate(ctx, token, "R1")
	require.ErrorIs(t, err, ErrTokenNotFound)

	require.Equal(t, 1, f.bus.count("1234", dto.EventBan))
	require.Equal(t, 1, f.bus.count(AdminsRoom, dto.EventBanNotice))
}

func TestViolationServiceThresholdBoundary(t *testing.T) {
	f := newViolationFixture(t, 3)
	ctx := context.Background()
	f.login(t)

	for i := 0; i < 2; i++ {
		outcome, err := f.violations.Report(ctx, dto.ViolationReport{NIS: "1234", Reason: "noise"})
		require.NoError(t, err)
		require.False(t, outcome.BanTriggered)
	}
	require.Zero(t, f.bus.count("1234", dto.EventBan))

	// The session survives warnings below the threshold.
	_, err := f.sessions.ActiveSession(ctx, "1234")
	require.NoError(t, err)

	outcome, err := f.violations.Report(ctx, dto.ViolationReport{NIS: "1234", Reason: "noise"})
	require.NoError(t, err)
	require.True(t, outcome.BanTriggered)
	require.Equal(t, 3, outcome.Violations)
	require.Equal(t, 1, f.bus.count("1234", dto.EventBan))
}

func TestViolationServiceBanSideEffectsFireOnce(t *testing.T) {
	f := newViolationFixture(t, 1)
	ctx := context.Background()
	f.login(t)

	for i := 0; i < 3; i++ {
		_, err := f.violations.Report(ctx, dto.ViolationReport{NIS: "1234", Reason: "repeat"})
		require.NoError(t, err)
	}

	ban, banned, err := f.violations.ActiveBan(ctx, "1234")
	require.NoError(t, err)
	require.True(t, banned)
	require.Equal(t, 3, ban.Violations, "counter keeps moving after the ban")

	require.Equal(t, 1, f.bus.count("1234", dto.EventBan), "ban event must not repeat")
	require.Equal(t, 1, f.bus.count(AdminsRoom, dto.EventBanNotice))
}

func TestViolationServiceSanitizesReason(t *testing.T) {
	f := newViolationFixture(t, 1)
	ctx := context.Background()
	f.login(t)

	_, err := f.violations.Report(ctx, dto.ViolationReport{NIS: "1234", Reason: "<script>alert('x')</script>"})
	require.NoError(t, err)

	var stored models.Violation
	require.NoError(t, f.db.First(&stored, "nis = ?", "1234").Error)
	require.NotContains(t, stored.Reason, "<script>")
	require.NotEmpty(t, stored.Reason)
}

func TestViolationServiceRecordsSessionHash(t *testing.T) {
	f := newViolationFixture(t, 5)
	ctx := context.Background()
	_, sessionHash := f.login(t)

	_, err := f.violations.Report(ctx, dto.ViolationReport{NIS: "1234", Reason: "peek"})
	require.NoError(t, err)

	var stored models.Violation
	require.NoError(t, f.db.First(&stored, "nis = ?", "1234").Error)
	require.Equal(t, sessionHash, stored.SessionHash)
}

func TestViolationServiceUnbanCycle(t *testing.T) {
	f := newViolationFixture(t, 1)
	ctx := context.Background()
	f.login(t)

	_, err := f.violations.Report(ctx, dto.ViolationReport{NIS: "1234", Reason: "ban me"})
	require.NoError(t, err)

	require.NoError(t, f.violations.Unban(ctx, "1234"))

	_, banned, err := f.violations.ActiveBan(ctx, "1234")
	require.NoError(t, err)
	require.False(t, banned)
	require.Equal(t, 1, f.bus.count("1234", dto.EventUnbanned))
	require.Equal(t, 1, f.bus.count(AdminsRoom, dto.EventUnbanAck))

	// A fresh violation after unban starts a new cycle and can ban again.
	token, err := f.tokens.Issue(ctx, dto.TokenCreateRequest{Room: "R1"})
	require.NoError(t, err)
	_, err = f.sessions.Login(ctx, dto.LoginRequest{Token: token.Token, Room: "R1", NIS: "1234"})
	require.NoError(t, err)

	outcome, err := f.violations.Report(ctx, dto.ViolationReport{NIS: "1234", Reason: "again"})
	require.NoError(t, err)
	require.True(t, outcome.BanTriggered)
	require.Equal(t, 1, outcome.Violations)
	require.Equal(t, 2, f.bus.count("1234", dto.EventBan))
}

func TestViolationServiceUnbanRequiresNIS(t *testing.T) {
	f := newViolationFixture(t, 1)

	err := f.violations.Unban(context.Background(), "")

	var validationErr validator.ValidationErrors
	require.ErrorAs(t, err, &validationErr)
	require.Zero(t, f.bus.count("", dto.EventUnbanned))
	require.Zero(t, f.bus.count(AdminsRoom, dto.EventUnbanAck))
}

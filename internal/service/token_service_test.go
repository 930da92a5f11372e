package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ujian-go-api/internal/dto"
	"github.com/noah-isme/ujian-go-api/internal/models"
	"github.com/noah-isme/ujian-go-api/internal/repository"
)

func newTokenService(t *testing.T) (TokenService, *time.Time) {
	t.Helper()
	db := newServiceTestDB(t)
	svc := NewTokenService(repository.NewTokenRepository(db), 0, testValidator(), testLogger())

	clock := time.Now()
	svc.(*tokenService).now = func() time.Time { return clock }
	return svc, &clock
}

func TestTokenServiceIssueProducesRoomCode(t *testing.T) {
	svc, _ := newTokenService(t)

	token, err := svc.Issue(context.Background(), dto.TokenCreateRequest{Room: "R1"})
	require.NoError(t, err)
	require.Len(t, token.Token, 5)
	require.Equal(t, "R1", token.Room)
	require.Equal(t, string(models.TokenScopeRoom), token.Scope)
	for _, r := range token.Token {
		require.Contains(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", string(r))
	}
}

func TestTokenServiceValidateDoesNotConsume(t *testing.T) {
	svc, _ := newTokenService(t)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, dto.TokenCreateRequest{Room: "R1"})
	require.NoError(t, err)

	// One code admits many students until it expires.
	for i := 0; i < 3; i++ {
		_, err := svc.Validate(ctx, issued.Token, "R1")
		require.NoError(t, err)
	}

	_, err = svc.Validate(ctx, issued.Token, "R2")
	require.ErrorIs(t, err, ErrRoomMismatch)

	_, err = svc.Validate(ctx, "ZZZZZ", "R1")
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenServiceValidateHonoursTTL(t *testing.T) {
	svc, clock := newTokenService(t)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, dto.TokenCreateRequest{Room: "R1", TTLMinutes: 10})
	require.NoError(t, err)

	*clock = clock.Add(9 * time.Minute)
	_, err = svc.Validate(ctx, issued.Token, "R1")
	require.NoError(t, err)

	*clock = clock.Add(2 * time.Minute)
	_, err = svc.Validate(ctx, issued.Token, "R1")
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenServiceTeacherScope(t *testing.T) {
	svc, _ := newTokenService(t)
	ctx := context.Background()

	teacherToken, err := svc.IssueTeacher(ctx, time.Hour)
	require.NoError(t, err)
	require.Equal(t, string(models.TokenScopeTeacher), teacherToken.Scope)

	_, err = svc.ValidateTeacher(ctx, teacherToken.Token)
	require.NoError(t, err)

	// Room tokens never satisfy the teacher scope.
	roomToken, err := svc.Issue(ctx, dto.TokenCreateRequest{Room: "R1"})
	require.NoError(t, err)
	_, err = svc.ValidateTeacher(ctx, roomToken.Token)
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenServiceRevokeAndCleanup(t *testing.T) {
	svc, clock := newTokenService(t)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, dto.TokenCreateRequest{Room: "R1"})
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, issued.Token))
	_, err = svc.Validate(ctx, issued.Token, "R1")
	require.ErrorIs(t, err, ErrTokenNotFound)

	// Revoking nothing is a no-op, not an error.
	require.NoError(t, svc.Revoke(ctx, ""))

	_, err = svc.Issue(ctx, dto.TokenCreateRequest{Room: "R1", TTLMinutes: 1})
	require.NoError(t, err)
	fresh, err := svc.Issue(ctx, dto.TokenCreateRequest{Room: "R1", TTLMinutes: 60})
	require.NoError(t, err)

	*clock = clock.Add(5 * time.Minute)
	deleted, err := svc.Cleanup(ctx, false)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	remaining, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, fresh.Token, remaining[0].Token)

	deleted, err = svc.Cleanup(ctx, true)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)
}

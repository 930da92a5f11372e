package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ujian-go-api/internal/models"
)

func TestViolationRepositoryIncrementCreatesAndBumps(t *testing.T) {
	db := setupTestDB(t)
	repo := NewViolationRepository(db)
	ctx := context.Background()

	ban, err := repo.Increment(ctx, "1234")
	require.NoError(t, err)
	require.Equal(t, 1, ban.Violations)
	require.False(t, ban.Banned())

	ban, err = repo.Increment(ctx, "1234")
	require.NoError(t, err)
	require.Equal(t, 2, ban.Violations)

	// Other students keep their own counters.
	ban, err = repo.Increment(ctx, "5678")
	require.NoError(t, err)
	require.Equal(t, 1, ban.Violations)
}

func TestViolationRepositoryMarkBannedFiresOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewViolationRepository(db)
	ctx := context.Background()

	_, err := repo.Increment(ctx, "1234")
	require.NoError(t, err)

	applied, err := repo.MarkBanned(ctx, "1234", time.Now(), "switched tab")
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = repo.MarkBanned(ctx, "1234", time.Now(), "switched tab again")
	require.NoError(t, err)
	require.False(t, applied, "second transition must be a no-op")

	ban, err := repo.GetBan(ctx, "1234")
	require.NoError(t, err)
	require.True(t, ban.Banned())
	require.Equal(t, "switched tab", ban.Reason)
}

func TestViolationRepositoryDeleteBanResetsCounter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewViolationRepository(db)
	ctx := context.Background()

	_, err := repo.Increment(ctx, "1234")
	require.NoError(t, err)
	applied, err := repo.MarkBanned(ctx, "1234", time.Now(), "reason")
	require.NoError(t, err)
	require.True(t, applied)

	require.NoError(t, repo.DeleteBan(ctx, "1234"))

	// The next violation starts a fresh counter.
	ban, err := repo.Increment(ctx, "1234")
	require.NoError(t, err)
	require.Equal(t, 1, ban.Violations)
	require.False(t, ban.Banned())
}

func TestViolationRepositoryAppendKeepsHistory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewViolationRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Append(ctx, &models.Violation{
			NIS:        "1234",
			Reason:     "left fullscreen",
			OccurredAt: time.Now(),
		}))
	}

	var count int64
	require.NoError(t, db.Model(&models.Violation{}).Where("nis = ?", "1234").Count(&count).Error)
	require.Equal(t, int64(3), count)
}

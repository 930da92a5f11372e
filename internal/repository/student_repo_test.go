package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/ujian-go-api/internal/models"
)

func TestStudentRepositoryRoomMembership(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Student{NIS: "1234", Name: "Alya", Grade: "12", Class: "A"}).Error)
	require.NoError(t, db.Create(&models.RoomRoster{Room: "R1", NIS: "1234"}).Error)

	rostered, err := repo.InRoom(ctx, "1234", "R1")
	require.NoError(t, err)
	require.True(t, rostered)

	rostered, err = repo.InRoom(ctx, "1234", "R2")
	require.NoError(t, err)
	require.False(t, rostered)

	student, err := repo.GetByNIS(ctx, "1234")
	require.NoError(t, err)
	require.Equal(t, "Alya", student.Name)

	_, err = repo.GetByNIS(ctx, "0000")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestStudentRepositoryReplaceAllIsWholesale(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Student{NIS: "1234", Name: "Old", Grade: "12", Class: "A"}).Error)
	require.NoError(t, db.Create(&models.RoomRoster{Room: "R1", NIS: "1234"}).Error)

	affected, err := repo.ReplaceAll(ctx,
		[]models.Student{
			{NIS: "5678", Name: "Bima", Grade: "11", Class: "B"},
			{NIS: "9012", Name: "Citra", Grade: "11", Class: "B"},
		},
		[]models.RoomRoster{
			{Room: "R2", NIS: "5678"},
			{Room: "R2", NIS: "9012"},
		},
	)
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)

	_, err = repo.GetByNIS(ctx, "1234")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound), "old roster must be gone")

	rostered, err := repo.InRoom(ctx, "5678", "R2")
	require.NoError(t, err)
	require.True(t, rostered)
}

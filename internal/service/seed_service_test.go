package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/ujian-go-api/internal/dto"
	"github.com/noah-isme/ujian-go-api/internal/repository"
)

func newSeedFixture(t *testing.T, enabled bool) (SeedService, *gorm.DB) {
	t.Helper()
	db := newServiceTestDB(t)
	svc := NewSeedService(repository.NewStudentRepository(db), repository.NewExamFormRepository(db), enabled, "seed-secret", testValidator(), testLogger())
	return svc, db
}

func TestSeedServiceGuards(t *testing.T) {
	disabled, _ := newSeedFixture(t, false)
	_, err := disabled.SeedStudents(context.Background(), "seed-secret", dto.SeedStudentsRequest{})
	require.ErrorIs(t, err, ErrSeedDisabled)

	enabled, _ := newSeedFixture(t, true)
	_, err = enabled.SeedStudents(context.Background(), "wrong", dto.SeedStudentsRequest{})
	require.ErrorIs(t, err, ErrSeedUnauthorized)
}

func TestSeedServiceSeedStudents(t *testing.T) {
	svc, db := newSeedFixture(t, true)
	ctx := context.Background()

	affected, err := svc.SeedStudents(ctx, "seed-secret", dto.SeedStudentsRequest{Students: []dto.StudentSeed{
		{NIS: "1234", Name: "Alya", Grade: "12", Class: "A", Room: "R1"},
		{NIS: "5678", Name: "Bima", Grade: "12", Class: "B"},
	}})
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)

	students := repository.NewStudentRepository(db)
	rostered, err := students.InRoom(ctx, "1234", "R1")
	require.NoError(t, err)
	require.True(t, rostered)

	// Students without a room are seeded but not rostered anywhere.
	rostered, err = students.InRoom(ctx, "5678", "R1")
	require.NoError(t, err)
	require.False(t, rostered)
}

func TestSeedServiceSeedForms(t *testing.T) {
	svc, db := newSeedFixture(t, true)
	ctx := context.Background()

	classA := "A"
	affected, err := svc.SeedForms(ctx, "seed-secret", dto.SeedFormsRequest{
		Grade:   "12",
		Subject: "math",
		Forms: []dto.FormSeed{
			{Payload: json.RawMessage(`{"form":"all"}`)},
			{Class: &classA, Payload: json.RawMessage(`{"form":"a-only"}`)},
		},
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)

	catalog := NewExamCatalogService(repository.NewExamFormRepository(db), testLogger())
	forms, err := catalog.FormsForGrade(ctx, "12", "B")
	require.NoError(t, err)
	require.JSONEq(t, `{"form":"all"}`, string(forms["math"]))
}

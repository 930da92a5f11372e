package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/ujian-go-api/internal/models"
)

func TestExamFormRepositoryForGradeUnionsClassRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExamFormRepository(db)
	ctx := context.Background()

	classA := "A"
	classB := "B"
	seedForms := []models.ExamForm{
		{Grade: "12", Subject: "math", Class: nil, Payload: datatypes.JSON(`{"form":"math-all"}`)},
		{Grade: "12", Subject: "physics", Class: &classA, Payload: datatypes.JSON(`{"form":"phys-a"}`)},
		{Grade: "12", Subject: "physics", Class: &classB, Payload: datatypes.JSON(`{"form":"phys-b"}`)},
		{Grade: "11", Subject: "math", Class: nil, Payload: datatypes.JSON(`{"form":"junior"}`)},
	}
	require.NoError(t, db.Create(&seedForms).Error)

	forms, err := repo.ForGrade(ctx, "12", "A")
	require.NoError(t, err)
	require.Len(t, forms, 2)
	require.Equal(t, "math", forms[0].Subject)
	require.Equal(t, "physics", forms[1].Subject)
	require.JSONEq(t, `{"form":"phys-a"}`, string(forms[1].Payload))

	forms, err = repo.ForGrade(ctx, "12", "C")
	require.NoError(t, err)
	require.Len(t, forms, 1, "class-bound forms must not leak to other classes")
}

func TestExamFormRepositoryReplaceBySubject(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExamFormRepository(db)
	ctx := context.Background()

	seedForms := []models.ExamForm{
		{Grade: "12", Subject: "math", Payload: datatypes.JSON(`{"v":1}`)},
		{Grade: "12", Subject: "biology", Payload: datatypes.JSON(`{"v":1}`)},
	}
	require.NoError(t, db.Create(&seedForms).Error)

	affected, err := repo.ReplaceBySubject(ctx, "12", "math", []models.ExamForm{
		{Grade: "12", Subject: "math", Payload: datatypes.JSON(`{"v":2}`)},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	forms, err := repo.ForGrade(ctx, "12", "A")
	require.NoError(t, err)
	require.Len(t, forms, 2)
	for _, form := range forms {
		if form.Subject == "math" {
			require.JSONEq(t, `{"v":2}`, string(form.Payload))
		}
	}

	// An empty replacement clears the subject.
	affected, err = repo.ReplaceBySubject(ctx, "12", "biology", nil)
	require.NoError(t, err)
	require.Zero(t, affected)

	forms, err = repo.ForGrade(ctx, "12", "A")
	require.NoError(t, err)
	require.Len(t, forms, 1)
}

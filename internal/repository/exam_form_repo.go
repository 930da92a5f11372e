package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/ujian-go-api/internal/models"
)

// ExamFormRepository provides read access to the exam catalog plus the
// delete-then-insert replace the import tooling relies on.
type ExamFormRepository interface {
	ForGrade(ctx context.Context, grade, class string) ([]models.ExamForm, error)
	ReplaceBySubject(ctx context.Context, grade, subject string, forms []models.ExamForm) (int64, error)
}

type examFormRepository struct {
	db *gorm.DB
}

// NewExamFormRepository constructs an exam form repository.
func NewExamFormRepository(db *gorm.DB) ExamFormRepository {
	return &examFormRepository{db: db}
}

// ForGrade returns the forms matching the grade where the form either names
// the requested class or applies to all classes (class IS NULL).
func (r *examFormRepository) ForGrade(ctx context.Context, grade, class string) ([]models.ExamForm, error) {
	var forms []models.ExamForm
	err := r.db.WithContext(ctx).
		Where("grade = ? AND (class IS NULL OR class = ?)", grade, class).
		Order("subject ASC").
		Find(&forms).Error
	if err != nil {
		return nil, err
	}

	return forms, nil
}

// ReplaceBySubject deletes every form for the (grade, subject) pair and
// inserts the supplied set in a single transaction, so readers never observe
// a partially imported subject.
func (r *examFormRepository) ReplaceBySubject(ctx context.Context, grade, subject string, forms []models.ExamForm) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("grade = ? AND subject = ?", grade, subject).Delete(&models.ExamForm{}).Error; err != nil {
			return err
		}

		if len(forms) == 0 {
			return nil
		}

		result := tx.Create(&forms)
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected

		return nil
	})

	return affected, err
}

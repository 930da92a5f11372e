package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/ujian-go-api/internal/models"
)

// StudentRepository provides read access to student reference data plus the
// wholesale replace used by the seed tooling.
type StudentRepository interface {
	GetByNIS(ctx context.Context, nis string) (models.Student, error)
	InRoom(ctx context.Context, nis, room string) (bool, error)
	ReplaceAll(ctx context.Context, students []models.Student, roster []models.RoomRoster) (int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByNIS(ctx context.Context, nis string) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, "nis = ?", nis).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) InRoom(ctx context.Context, nis, room string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RoomRoster{}).
		Where("nis = ? AND room = ?", nis, room).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *studentRepository) ReplaceAll(ctx context.Context, students []models.Student, roster []models.RoomRoster) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.RoomRoster{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.Student{}).Error; err != nil {
			return err
		}

		if len(students) > 0 {
			result := tx.Create(&students)
			if result.Error != nil {
				return result.Error
			}
			affected = result.RowsAffected
		}

		if len(roster) > 0 {
			if err := tx.Create(&roster).Error; err != nil {
				return err
			}
		}

		return nil
	})

	return affected, err
}

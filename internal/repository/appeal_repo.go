package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/ujian-go-api/internal/models"
)

// AppealRepository owns appeal submissions.
type AppealRepository interface {
	Create(ctx context.Context, appeal *models.Appeal) error
	ListOpen(ctx context.Context, limit int) ([]models.Appeal, error)
	Resolve(ctx context.Context, id uint) (bool, error)
}

type appealRepository struct {
	db *gorm.DB
}

// NewAppealRepository constructs an appeal repository.
func NewAppealRepository(db *gorm.DB) AppealRepository {
	return &appealRepository{db: db}
}

func (r *appealRepository) Create(ctx context.Context, appeal *models.Appeal) error {
	return r.db.WithContext(ctx).Create(appeal).Error
}

func (r *appealRepository) ListOpen(ctx context.Context, limit int) ([]models.Appeal, error) {
	query := r.db.WithContext(ctx).Where("resolved = ?", false).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var appeals []models.Appeal
	if err := query.Find(&appeals).Error; err != nil {
		return nil, err
	}

	return appeals, nil
}

func (r *appealRepository) Resolve(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Appeal{}).
		Where("id = ? AND resolved = ?", id, false).
		Update("resolved", true)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/ujian-go-api/internal/models"
)

// ViolationRepository owns violation records and the per-student ban row.
type ViolationRepository interface {
	Append(ctx context.Context, violation *models.Violation) error
	Increment(ctx context.Context, nis string) (models.Ban, error)
	MarkBanned(ctx context.Context, nis string, bannedAt time.Time, reason string) (bool, error)
	GetBan(ctx context.Context, nis string) (models.Ban, error)
	DeleteBan(ctx context.Context, nis string) error
}

type violationRepository struct {
	db *gorm.DB
}

// NewViolationRepository constructs a violation repository.
func NewViolationRepository(db *gorm.DB) ViolationRepository {
	return &violationRepository{db: db}
}

func (r *violationRepository) Append(ctx context.Context, violation *models.Violation) error {
	return r.db.WithContext(ctx).Create(violation).Error
}

// Increment bumps the violation counter atomically, creating it at 1 when
// absent. Concurrent reports for the same student never lose updates because
// the increment runs inside the upsert, not as a read-modify-write in
// application code.
func (r *violationRepository) Increment(ctx context.Context, nis string) (models.Ban, error) {
	ban := models.Ban{NIS: nis, Violations: 1}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "nis"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"violations": gorm.Expr("violations + 1"),
		}),
	}).Create(&ban).Error
	if err != nil {
		return models.Ban{}, err
	}

	return r.GetBan(ctx, nis)
}

// MarkBanned applies the punitive state and reports whether this call was
// the one that applied it. The conditional update makes the transition fire
// exactly once even when reports race.
func (r *violationRepository) MarkBanned(ctx context.Context, nis string, bannedAt time.Time, reason string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Ban{}).
		Where("nis = ? AND banned_at IS NULL", nis).
		Updates(map[string]interface{}{"banned_at": bannedAt, "reason": reason})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *violationRepository) GetBan(ctx context.Context, nis string) (models.Ban, error) {
	var ban models.Ban
	if err := r.db.WithContext(ctx).First(&ban, "nis = ?", nis).Error; err != nil {
		return models.Ban{}, err
	}

	return ban, nil
}

// DeleteBan removes both the punitive state and the violation counter.
func (r *violationRepository) DeleteBan(ctx context.Context, nis string) error {
	return r.db.WithContext(ctx).Delete(&models.Ban{}, "nis = ?", nis).Error
}

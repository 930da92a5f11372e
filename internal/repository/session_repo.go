package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/ujian-go-api/internal/models"
)

// SessionRepository owns exam session rows. Create relies on the partial
// unique index over (nis) where active, so a duplicate active session
// surfaces as gorm.ErrDuplicatedKey instead of a racy read-then-write check.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByHash(ctx context.Context, sessionHash, nis string) (models.Session, error)
	GetActive(ctx context.Context, nis string) (models.Session, error)
	Finish(ctx context.Context, sessionHash, nis string, finishedAt time.Time) error
	FinishActive(ctx context.Context, nis string, finishedAt time.Time) (int64, error)
	DeleteFinished(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetByHash(ctx context.Context, sessionHash, nis string) (models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		First(&session, "session_hash = ? AND nis = ?", sessionHash, nis).Error
	if err != nil {
		return models.Session{}, err
	}

	return session, nil
}

func (r *sessionRepository) GetActive(ctx context.Context, nis string) (models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		First(&session, "nis = ? AND active = ?", nis, true).Error
	if err != nil {
		return models.Session{}, err
	}

	return session, nil
}

// Finish deactivates the session. Finishing an already-finished session is a
// no-op update that keeps the original finished_at, which makes the call
// idempotent.
func (r *sessionRepository) Finish(ctx context.Context, sessionHash, nis string, finishedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Session{}).
		Where("session_hash = ? AND nis = ? AND active = ?", sessionHash, nis, true).
		Updates(map[string]interface{}{"active": false, "finished_at": finishedAt}).Error
}

func (r *sessionRepository) FinishActive(ctx context.Context, nis string, finishedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Session{}).
		Where("nis = ? AND active = ?", nis, true).
		Updates(map[string]interface{}{"active": false, "finished_at": finishedAt})
	return result.RowsAffected, result.Error
}

func (r *sessionRepository) DeleteFinished(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("active = ?", false).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}

func (r *sessionRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Session{})
	return result.RowsAffected, result.Error
}

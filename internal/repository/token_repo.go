package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/ujian-go-api/internal/models"
)

// TokenRepository owns persistence for admission tokens. No other component
// touches token rows directly.
type TokenRepository interface {
	Upsert(ctx context.Context, token models.Token) error
	Get(ctx context.Context, value string) (models.Token, error)
	Delete(ctx context.Context, value string) error
	List(ctx context.Context, includeExpired bool, now time.Time) ([]models.Token, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository constructs a token repository.
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

// Upsert inserts the token, or rewrites room/scope/expiry when the value
// already exists. Re-issuing a colliding value refreshes it rather than
// failing.
func (r *tokenRepository) Upsert(ctx context.Context, token models.Token) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "value"}},
		DoUpdates: clause.AssignmentColumns([]string{"scope", "room", "issued_at", "expires_at"}),
	}).Create(&token).Error
}

func (r *tokenRepository) Get(ctx context.Context, value string) (models.Token, error) {
	var token models.Token
	if err := r.db.WithContext(ctx).First(&token, "value = ?", value).Error; err != nil {
		return models.Token{}, err
	}

	return token, nil
}

func (r *tokenRepository) Delete(ctx context.Context, value string) error {
	return r.db.WithContext(ctx).Delete(&models.Token{}, "value = ?", value).Error
}

func (r *tokenRepository) List(ctx context.Context, includeExpired bool, now time.Time) ([]models.Token, error) {
	query := r.db.WithContext(ctx).Model(&models.Token{})
	if !includeExpired {
		query = query.Where("expires_at > ?", now)
	}

	var tokens []models.Token
	if err := query.Order("expires_at ASC").Find(&tokens).Error; err != nil {
		return nil, err
	}

	return tokens, nil
}

func (r *tokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Token{})
	return result.RowsAffected, result.Error
}

func (r *tokenRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Token{})
	return result.RowsAffected, result.Error
}

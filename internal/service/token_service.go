package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/ujian-go-api/internal/dto"
	"github.com/noah-isme/ujian-go-api/internal/models"
	"github.com/noah-isme/ujian-go-api/internal/observability"
	"github.com/noah-isme/ujian-go-api/internal/repository"
)

// Sentinel errors surfaced by token validation.
var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExpired  = errors.New("token expired")
	ErrRoomMismatch  = errors.New("token not valid for room")
)

const (
	roomTokenLength  = 5
	roomTokenCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	defaultTokenTTL  = 5 * time.Minute
)

// TokenService issues, validates and revokes admission tokens.
type TokenService interface {
	Issue(ctx context.Context, req dto.TokenCreateRequest) (dto.TokenResponse, error)
	IssueTeacher(ctx context.Context, ttl time.Duration) (dto.TokenResponse, error)
	Validate(ctx context.Context, value, room string) (models.Token, error)
	ValidateTeacher(ctx context.Context, value string) (models.Token, error)
	Revoke(ctx context.Context, value string) error
	List(ctx context.Context, includeExpired bool) ([]dto.TokenResponse, error)
	Cleanup(ctx context.Context, force bool) (int64, error)
}

type tokenService struct {
	repo       repository.TokenRepository
	defaultTTL time.Duration
	validator  *validator.Validate
	logger     zerolog.Logger
	now        func() time.Time
}

// NewTokenService constructs a token service. A non-positive defaultTTL
// falls back to five minutes.
func NewTokenService(repo repository.TokenRepository, defaultTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) TokenService {
	if defaultTTL <= 0 {
		defaultTTL = defaultTokenTTL
	}

	return &tokenService{
		repo:       repo,
		defaultTTL: defaultTTL,
		validator:  validate,
		logger:     logger.With().Str("component", "token_service").Logger(),
		now:        time.Now,
	}
}

// Issue creates a short room code. Value collisions are tolerated by
// overwrite: re-issuing the same value resets its room and expiry, which is
// the create-or-refresh behaviour room codes need.
func (s *tokenService) Issue(ctx context.Context, req dto.TokenCreateRequest) (dto.TokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TokenResponse{}, err
	}

	ttl := s.defaultTTL
	if req.TTLMinutes > 0 {
		ttl = time.Duration(req.TTLMinutes) * time.Minute
	}

	value, err := randomRoomCode()
	if err != nil {
		return dto.TokenResponse{}, err
	}

	room := strings.TrimSpace(req.Room)
	now := s.now()
	token := models.Token{
		Value:     value,
		Scope:     models.TokenScopeRoom,
		Room:      &room,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	if err := s.repo.Upsert(ctx, token); err != nil {
		return dto.TokenResponse{}, err
	}

	observability.TokensIssuedTotal().WithLabelValues(string(models.TokenScopeRoom)).Inc()
	s.logger.Info().Str("room", room).Time("expires_at", token.ExpiresAt).Msg("room token issued")

	return dto.NewTokenResponse(token), nil
}

// IssueTeacher creates a teacher-scoped token from a UUID.
func (s *tokenService) IssueTeacher(ctx context.Context, ttl time.Duration) (dto.TokenResponse, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := s.now()
	token := models.Token{
		Value:     strings.ReplaceAll(uuid.NewString(), "-", ""),
		Scope:     models.TokenScopeTeacher,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	if err := s.repo.Upsert(ctx, token); err != nil {
		return dto.TokenResponse{}, err
	}

	observability.TokensIssuedTotal().WithLabelValues(string(models.TokenScopeTeacher)).Inc()

	return dto.NewTokenResponse(token), nil
}

// Validate checks existence, expiry and room binding. It never consumes the
// token: one room code admits many students until it expires.
func (s *tokenService) Validate(ctx context.Context, value, room string) (models.Token, error) {
	token, err := s.repo.Get(ctx, value)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Token{}, ErrTokenNotFound
		}
		return models.Token{}, err
	}

	if token.Expired(s.now()) {
		return models.Token{}, ErrTokenExpired
	}

	if token.Room == nil || *token.Room != room {
		return models.Token{}, ErrRoomMismatch
	}

	return token, nil
}

// ValidateTeacher checks existence, scope and expiry of a teacher token.
func (s *tokenService) ValidateTeacher(ctx context.Context, value string) (models.Token, error) {
	token, err := s.repo.Get(ctx, value)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Token{}, ErrTokenNotFound
		}
		return models.Token{}, err
	}

	if token.Scope != models.TokenScopeTeacher {
		return models.Token{}, ErrTokenNotFound
	}

	if token.Expired(s.now()) {
		return models.Token{}, ErrTokenExpired
	}

	return token, nil
}

// Revoke deletes the token immediately, regardless of expiry.
func (s *tokenService) Revoke(ctx context.Context, value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	if err := s.repo.Delete(ctx, value); err != nil {
		return err
	}

	s.logger.Info().Str("token", value).Msg("token revoked")
	return nil
}

func (s *tokenService) List(ctx context.Context, includeExpired bool) ([]dto.TokenResponse, error) {
	tokens, err := s.repo.List(ctx, includeExpired, s.now())
	if err != nil {
		return nil, err
	}

	return dto.NewTokenResponseSlice(tokens), nil
}

// Cleanup deletes expired tokens, or every token when force is set.
func (s *tokenService) Cleanup(ctx context.Context, force bool) (int64, error) {
	if force {
		return s.repo.DeleteAll(ctx)
	}

	return s.repo.DeleteExpired(ctx, s.now())
}

func randomRoomCode() (string, error) {
	var builder strings.Builder
	builder.Grow(roomTokenLength)
	max := big.NewInt(int64(len(roomTokenCharset)))
	for i := 0; i < roomTokenLength; i++ {
		index, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(roomTokenCharset[index.Int64()])
	}

	return builder.String(), nil
}

package dto

import (
	"time"

	"github.com/noah-isme/ujian-go-api/internal/models"
)

// TokenCreateRequest asks for a fresh room admission token.
type TokenCreateRequest struct {
	Room       string `json:"room" validate:"required,max=16"`
	TTLMinutes int    `json:"ttl_minutes" validate:"omitempty,min=1,max=1440"`
}

// TokenResponse describes an issued or listed token.
type TokenResponse struct {
	Token     string    `json:"token"`
	Room      string    `json:"room,omitempty"`
	Scope     string    `json:"scope"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenListRequest controls token listing; All includes expired rows.
type TokenListRequest struct {
	All bool `json:"all"`
}

// CleanupRequest is shared by token and session cleanup endpoints.
type CleanupRequest struct {
	Force bool `json:"force"`
}

// CleanupResponse reports how many rows a cleanup removed.
type CleanupResponse struct {
	Force   bool  `json:"force"`
	Deleted int64 `json:"deleted"`
}

// NewTokenResponse maps a token row to its API shape.
func NewTokenResponse(token models.Token) TokenResponse {
	room := ""
	if token.Room != nil {
		room = *token.Room
	}

	return TokenResponse{
		Token:     token.Value,
		Room:      room,
		Scope:     string(token.Scope),
		ExpiresAt: token.ExpiresAt,
	}
}

// NewTokenResponseSlice maps token rows to their API shape.
func NewTokenResponseSlice(tokens []models.Token) []TokenResponse {
	responses := make([]TokenResponse, 0, len(tokens))
	for _, token := range tokens {
		responses = append(responses, NewTokenResponse(token))
	}
	return responses
}

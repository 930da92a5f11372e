package models

import "time"

// TokenScope distinguishes room admission codes from teacher login tokens.
type TokenScope string

// Supported token scopes.
const (
	TokenScopeRoom    TokenScope = "room"
	TokenScopeTeacher TokenScope = "teacher"
)

// Token is a short-lived admission credential. Room tokens admit many
// students into a single room until they expire; teacher tokens gate the
// proctor surface.
type Token struct {
	Value     string     `gorm:"primaryKey;size:64" json:"token"`
	Scope     TokenScope `gorm:"size:16;not null;default:room" json:"scope"`
	Room      *string    `gorm:"size:16;index" json:"room,omitempty"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt time.Time  `gorm:"index" json:"expires_at"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

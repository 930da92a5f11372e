package models

import "time"

// Violation is an append-only record of a reported integrity breach.
type Violation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	NIS         string    `gorm:"size:32;not null;index" json:"nis"`
	SessionHash string    `gorm:"size:128" json:"session_hash,omitempty"`
	Reason      string    `gorm:"size:255;not null" json:"reason"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Ban carries the cumulative violation counter for a student and, once the
// configured threshold is crossed, the punitive state itself. BannedAt is nil
// while the counter is still below the threshold.
type Ban struct {
	NIS        string     `gorm:"primaryKey;size:32" json:"nis"`
	Violations int        `gorm:"not null;default:0" json:"violations"`
	BannedAt   *time.Time `json:"banned_at,omitempty"`
	Reason     string     `gorm:"size:255" json:"reason,omitempty"`
}

// Banned reports whether the punitive state has been applied.
func (b Ban) Banned() bool {
	return b.BannedAt != nil
}

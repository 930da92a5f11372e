package models

import "time"

// Session is a single exam attempt. The partial unique index over NIS
// restricted to active rows is what enforces the one-active-session
// invariant: concurrent logins for the same student race on the insert and
// the database rejects all but one.
type Session struct {
	SessionHash string     `gorm:"primaryKey;size:128" json:"session_hash"`
	NIS         string     `gorm:"size:32;not null;index:idx_one_active_session,unique,where:active" json:"nis"`
	Room        string     `gorm:"size:16;not null" json:"room"`
	Seed        string     `gorm:"size:64;not null" json:"-"`
	SpecialKey  string     `gorm:"size:16;not null" json:"special_key"`
	Active      bool       `gorm:"not null;default:true" json:"active"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

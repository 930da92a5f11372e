package models

import "time"

// Appeal is a student-submitted remedy request. Appeals are always
// recordable, including for banned identities, since they are the remedy
// path for a ban.
type Appeal struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	NIS       string    `gorm:"size:32;not null;index" json:"nis"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Resolved  bool      `gorm:"not null;default:false" json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
}

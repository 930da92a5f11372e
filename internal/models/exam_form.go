package models

import (
	"time"

	"gorm.io/datatypes"
)

// ExamForm holds one exam document for a (grade, class, subject) triple. A
// nil class means the form applies to every class in the grade. Imports
// replace forms wholesale per (grade, subject); rows are never patched.
type ExamForm struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Grade     string         `gorm:"size:8;not null;index:idx_forms_grade_subject" json:"grade"`
	Class     *string        `gorm:"size:8" json:"class,omitempty"`
	Subject   string         `gorm:"size:64;not null;index:idx_forms_grade_subject" json:"subject"`
	Payload   datatypes.JSON `gorm:"type:json;not null" json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

package dto

import "encoding/json"

// TeacherLoginRequest validates a teacher token and resolves the teacher.
type TeacherLoginRequest struct {
	TeacherID uint   `json:"teacher_id" validate:"required"`
	Token     string `json:"token" validate:"required,max=64"`
}

// TeacherLoginResponse carries the dashboard credential. AccessToken is a
// signed JWT gating the proctor and admin surfaces.
type TeacherLoginResponse struct {
	Name        string `json:"name"`
	SessionHash string `json:"session_hash"`
	SpecialKey  string `json:"special_key"`
	AccessToken string `json:"access_token"`
}

// TeacherSummary lists a teacher for the login picker.
type TeacherSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// StudentSeed is one student row in a seed payload.
type StudentSeed struct {
	NIS   string `json:"nis" validate:"required,max=32"`
	Name  string `json:"name" validate:"required,max=255"`
	Grade string `json:"grade" validate:"required,max=8"`
	Class string `json:"class" validate:"required,max=8"`
	Room  string `json:"room" validate:"omitempty,max=16"`
}

// SeedStudentsRequest replaces the student roster wholesale.
type SeedStudentsRequest struct {
	Students []StudentSeed `json:"students" validate:"required,min=1,dive"`
}

// FormSeed is one exam form in a seed payload. A nil class applies the form
// to every class in the grade.
type FormSeed struct {
	Class   *string         `json:"class,omitempty" validate:"omitempty,max=8"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

// SeedFormsRequest replaces every form for a (grade, subject) pair.
type SeedFormsRequest struct {
	Grade   string     `json:"grade" validate:"required,max=8"`
	Subject string     `json:"subject" validate:"required,max=64"`
	Forms   []FormSeed `json:"forms" validate:"required,min=1,dive"`
}

// SeedResponse reports rows affected by a seed run.
type SeedResponse struct {
	Affected int64 `json:"affected"`
}

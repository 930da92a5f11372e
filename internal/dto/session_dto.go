package dto

import "encoding/json"

// LoginRequest carries a student's attempt to enter an exam room.
type LoginRequest struct {
	Token string `json:"token" validate:"required,max=64"`
	Room  string `json:"room" validate:"required,max=16"`
	NIS   string `json:"nis" validate:"required,max=32"`
}

// LoginResponse returns the session credential triple. SessionHash is the
// sole credential for subsequent exam calls; SpecialKey is a short on-screen
// verification fragment, not a security boundary.
type LoginResponse struct {
	Name        string `json:"name"`
	SessionHash string `json:"session_hash"`
	Seed        string `json:"seed"`
	SpecialKey  string `json:"special_key"`
}

// SessionRequest identifies an existing session for fetch/finish calls.
type SessionRequest struct {
	SessionHash string `json:"session_hash" validate:"required,max=128"`
	NIS         string `json:"nis" validate:"required,max=32"`
}

// ExamFormsResponse embeds every form for the student's grade keyed by subject.
type ExamFormsResponse struct {
	Grade string                     `json:"grade"`
	Forms map[string]json.RawMessage `json:"forms"`
}

// WhoAmIRequest looks up a student display name by NIS.
type WhoAmIRequest struct {
	NIS string `json:"nis" validate:"required,max=32"`
}

// WhoAmIResponse returns the resolved student name.
type WhoAmIResponse struct {
	NIS  string `json:"nis"`
	Name string `json:"name"`
}

package dto

import (
	"time"

	"github.com/noah-isme/ujian-go-api/internal/models"
)

// Realtime event names delivered over the websocket surface.
const (
	EventBan          = "ban"
	EventBanNotice    = "ban_notice"
	EventUnbanned     = "unbanned"
	EventUnbanAck     = "unban_ack"
	EventAppealSent   = "appeal_sent"
	EventAppealNotice = "appeal_notice"
	EventConnected    = "connected"
)

// ViolationReport is the inbound realtime event reporting an integrity
// breach. A missing NIS makes the event a no-op rather than an error.
type ViolationReport struct {
	NIS    string `json:"nis" validate:"required,max=32"`
	Token  string `json:"token,omitempty" validate:"omitempty,max=64"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=255"`
}

// ViolationOutcome reports whether a ban was triggered by the report.
type ViolationOutcome struct {
	NIS          string `json:"nis"`
	Violations   int    `json:"violations"`
	BanTriggered bool   `json:"ban_triggered"`
}

// AppealSubmission is the inbound realtime event recording an appeal.
type AppealSubmission struct {
	NIS  string `json:"nis" validate:"required,max=32"`
	Text string `json:"text" validate:"required,max=4000"`
}

// AppealResponse acknowledges a recorded appeal.
type AppealResponse struct {
	ID        uint      `json:"id"`
	NIS       string    `json:"nis"`
	Text      string    `json:"text"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
}

// UnbanRequest lifts a ban for a student.
type UnbanRequest struct {
	NIS string `json:"nis" validate:"required,max=32"`
}

// ResolveAppealRequest marks an appeal handled.
type ResolveAppealRequest struct {
	ID uint `json:"id" validate:"required"`
}

// NewAppealResponse maps an appeal row to its API shape.
func NewAppealResponse(appeal models.Appeal) AppealResponse {
	return AppealResponse{
		ID:        appeal.ID,
		NIS:       appeal.NIS,
		Text:      appeal.Text,
		Resolved:  appeal.Resolved,
		CreatedAt: appeal.CreatedAt,
	}
}

// NewAppealResponseSlice maps appeal rows to their API shape.
func NewAppealResponseSlice(appeals []models.Appeal) []AppealResponse {
	responses := make([]AppealResponse, 0, len(appeals))
	for _, appeal := range appeals {
		responses = append(responses, NewAppealResponse(appeal))
	}
	return responses
}

package dto

import "encoding/json"

// RealtimeEnvelope is the wire shape for inbound websocket events.
type RealtimeEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RealtimeMessage is the wire shape for outbound websocket events.
type RealtimeMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// BanEvent is delivered to the affected student's room and, as a ban notice
// with the violation count, to the admins room.
type BanEvent struct {
	NIS        string `json:"nis"`
	Reason     string `json:"reason"`
	Violations int    `json:"violations,omitempty"`
}

// UnbanEvent lifts the client-side ban overlay.
type UnbanEvent struct {
	NIS string `json:"nis"`
}

// AppealNotice informs admins of a new appeal.
type AppealNotice struct {
	ID   uint   `json:"id"`
	NIS  string `json:"nis"`
	Text string `json:"text"`
}

// ConnectedEvent confirms a successful subscription.
type ConnectedEvent struct {
	Identity string `json:"identity"`
}

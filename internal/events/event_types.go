package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventScheduleSaved           EventType = "schedule_saved"
	EventScheduleApprovalChanged EventType = "schedule_approval_changed"
)

// Actor identifies the caller that caused an event.
type Actor struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Month     string      `json:"month"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ScheduleSavedPayload lists whose days were replaced. WholeMonth marks a
// save that also wiped every user missing from UserIDs.
type ScheduleSavedPayload struct {
	UserIDs    []string `json:"user_ids"`
	WholeMonth bool     `json:"whole_month"`
}

// ScheduleApprovalChangedPayload payload.
type ScheduleApprovalChangedPayload struct {
	Approved bool `json:"approved"`
}

package events

import (
	"time"

	"github.com/spec-kit/shiftboard/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventScheduleSaved EventType = "schedule_saved"
	EventRosterChanged EventType = "roster_changed"
)

// Actor identifies the user behind an event.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// ScheduleSavedPayload describes a replaced day schedule.
type ScheduleSavedPayload struct {
	DateKey string              `json:"date_key"`
	Members []domain.ExternalID `json:"members"`
}

// RosterChangeKind tells whether an agent was added, removed or the whole
// roster was reloaded from the store.
type RosterChangeKind string

const (
	RosterAgentAdded   RosterChangeKind = "agent_added"
	RosterAgentDeleted RosterChangeKind = "agent_deleted"
	RosterReloaded     RosterChangeKind = "reloaded"
)

// RosterChangedPayload describes a roster mutation.
type RosterChangedPayload struct {
	Kind       RosterChangeKind  `json:"kind"`
	AgentID    string            `json:"agent_id,omitempty"`
	ExternalID domain.ExternalID `json:"external_id,omitempty"`
}

package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers. Values double as AMQP routing keys.
type EventType string

const (
	EventTicketCreated       EventType = "ticket.created"
	EventTicketStatusChanged EventType = "ticket.status_changed"
	EventTicketAssigned      EventType = "ticket.assigned"
	EventTicketCommented     EventType = "ticket.commented"
	EventSessionOpened       EventType = "session.opened"
	EventSessionClosed       EventType = "session.closed"
	EventSessionSuperseded   EventType = "session.superseded"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// New stamps an event with a fresh id.
func New(eventType EventType, subjectID, actorID string, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: at.UTC(),
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Code     string                `json:"code"`
	SectorID *string               `json:"sector_id,omitempty"`
	Priority domain.TicketPriority `json:"priority"`
	Title    string                `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Note      string              `json:"note,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	ResolverID string `json:"resolver_id"`
}

// TicketCommentedPayload payload.
type TicketCommentedPayload struct {
	EventID     string `json:"event_id"`
	BodyPreview string `json:"body_preview"`
}

// SessionPayload describes a session transition.
type SessionPayload struct {
	AccountID string    `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Reason    string    `json:"reason,omitempty"`
}

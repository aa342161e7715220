package domain

import "time"

// TicketEventKind captures what happened in an activity log entry.
type TicketEventKind string

const (
	TicketEventCreated       TicketEventKind = "created"
	TicketEventStatusChanged TicketEventKind = "status_changed"
	TicketEventAssigned      TicketEventKind = "assigned"
	TicketEventComment       TicketEventKind = "comment"
)

// TicketEvent is an immutable activity log entry.
type TicketEvent struct {
	ID         string
	TicketID   string
	ActorID    string
	Kind       TicketEventKind
	FromStatus *TicketStatus
	ToStatus   *TicketStatus
	Note       string
	CreatedAt  time.Time
}

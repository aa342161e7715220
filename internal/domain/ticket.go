package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string
	Code        string
	OwnerID     string
	ResolverID  *string
	SectorID    *string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClosedAt    *time.Time
}

var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusClosed},
	TicketStatusInProgress: {TicketStatusResolved, TicketStatusOpen, TicketStatusClosed},
	TicketStatusResolved:   {TicketStatusClosed, TicketStatusInProgress},
	TicketStatusClosed:     {},
}

// CanTransition reports whether a ticket may move from current to next.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range ticketTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

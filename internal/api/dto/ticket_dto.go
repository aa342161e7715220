package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	SectorID    *string               `json:"sectorId"`
}

// ChangeStatusRequest payload for POST /tickets/:id/status.
type ChangeStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
	Note   string              `json:"note"`
}

// AssignRequest payload for POST /tickets/:id/assign.
type AssignRequest struct {
	ResolverID string `json:"resolverId"`
}

// CommentRequest payload for POST /tickets/:id/comments.
type CommentRequest struct {
	Body string `json:"body"`
}

// TicketResponse describes a ticket.
type TicketResponse struct {
	ID          string                `json:"id"`
	Code        string                `json:"code"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	OwnerID     string                `json:"ownerId"`
	ResolverID  *string               `json:"resolverId,omitempty"`
	SectorID    *string               `json:"sectorId,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
	ClosedAt    *time.Time            `json:"closedAt,omitempty"`
}

// TicketEventResponse is one activity log entry.
type TicketEventResponse struct {
	ID         string                 `json:"id"`
	Kind       domain.TicketEventKind `json:"kind"`
	ActorID    string                 `json:"actorId"`
	FromStatus *domain.TicketStatus   `json:"fromStatus,omitempty"`
	ToStatus   *domain.TicketStatus   `json:"toStatus,omitempty"`
	Note       string                 `json:"note,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}

package repository

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TicketEventRepository stores the append-only activity log of tickets.
type TicketEventRepository interface {
	Create(ctx context.Context, event *domain.TicketEvent) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketEvent, error)
}

type ticketEventRepository struct {
	db DBTX
}

// NewTicketEventRepository builds repository.
func NewTicketEventRepository(db DBTX) TicketEventRepository {
	return &ticketEventRepository{db: db}
}

func (r *ticketEventRepository) Create(ctx context.Context, event *domain.TicketEvent) error {
	const query = `
        INSERT INTO ticket_events (ticket_id, actor_id, kind, from_status, to_status, note)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		event.TicketID,
		event.ActorID,
		event.Kind,
		event.FromStatus,
		event.ToStatus,
		event.Note,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *ticketEventRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketEvent, error) {
	const query = `
        SELECT id, ticket_id, actor_id, kind, from_status, to_status, note, created_at
        FROM ticket_events WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketEvent
	for rows.Next() {
		var event domain.TicketEvent
		if err := rows.Scan(
			&event.ID,
			&event.TicketID,
			&event.ActorID,
			&event.Kind,
			&event.FromStatus,
			&event.ToStatus,
			&event.Note,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}

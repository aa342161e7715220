package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const defaultTicketLimit = 20

// TicketVisibility restricts a listing to what one caller may see: tickets they own, and for
// resolvers the tickets assigned to them or filed in their sector.
type TicketVisibility struct {
	UserID   string
	Resolver bool
	SectorID *string
}

// TicketFilter captures list parameters. A nil VisibleTo lists every ticket.
type TicketFilter struct {
	VisibleTo  *TicketVisibility
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	SearchTerm *string
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, code, owner_id, resolver_id, sector_id, title, description, status, priority, created_at, updated_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (code, owner_id, resolver_id, sector_id, title, description, status, priority)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.Code,
		ticket.OwnerID,
		ticket.ResolverID,
		ticket.SectorID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET resolver_id=$1, sector_id=$2, title=$3, description=$4,
            status=$5, priority=$6, closed_at=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.ResolverID,
		ticket.SectorID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.ClosedAt,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return scanTicket(r.db.QueryRow(ctx, query, id))
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query, args := buildTicketListQuery(filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func buildTicketListQuery(filter TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if v := filter.VisibleTo; v != nil {
		args = append(args, v.UserID)
		userArg := fmt.Sprintf("$%d", len(args))
		scope := []string{"owner_id=" + userArg}
		if v.Resolver {
			scope = append(scope, "resolver_id="+userArg)
			if v.SectorID != nil {
				args = append(args, *v.SectorID)
				scope = append(scope, fmt.Sprintf("sector_id=$%d", len(args)))
			}
		}
		clauses = append(clauses, "("+strings.Join(scope, " OR ")+")")
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(code) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultTicketLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)
	return query, args
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Code,
		&ticket.OwnerID,
		&ticket.ResolverID,
		&ticket.SectorID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

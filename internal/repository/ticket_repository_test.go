package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk/internal/domain"
)

func TestBuildTicketListQueryUnscoped(t *testing.T) {
	query, args := buildTicketListQuery(TicketFilter{})
	assert.Contains(t, query, "WHERE 1=1 ORDER BY updated_at DESC LIMIT 20 OFFSET 0")
	assert.Empty(t, args)
}

func TestBuildTicketListQueryOwnerScope(t *testing.T) {
	query, args := buildTicketListQuery(TicketFilter{
		VisibleTo: &TicketVisibility{UserID: "u1"},
		Limit:     5,
		Offset:    10,
	})
	assert.Contains(t, query, "(owner_id=$1)")
	assert.Contains(t, query, "LIMIT 5 OFFSET 10")
	assert.Equal(t, []any{"u1"}, args)
}

func TestBuildTicketListQueryResolverScope(t *testing.T) {
	sector := "s1"
	query, args := buildTicketListQuery(TicketFilter{
		VisibleTo: &TicketVisibility{UserID: "u1", Resolver: true, SectorID: &sector},
		Statuses:  []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress},
		Offset:    -3,
	})
	assert.Contains(t, query, "(owner_id=$1 OR resolver_id=$1 OR sector_id=$2)")
	assert.Contains(t, query, "status IN ($3,$4)")
	assert.Contains(t, query, "OFFSET 0")
	assert.Equal(t, []any{"u1", "s1", domain.TicketStatusOpen, domain.TicketStatusInProgress}, args)
}

func TestBuildTicketListQuerySearch(t *testing.T) {
	term := "  Printer "
	query, args := buildTicketListQuery(TicketFilter{
		Priorities: []domain.TicketPriority{domain.TicketPriorityUrgent},
		SearchTerm: &term,
	})
	assert.Contains(t, query, "priority IN ($1)")
	assert.Contains(t, query, "(LOWER(title) LIKE $2 OR LOWER(code) LIKE $2)")
	assert.Equal(t, []any{domain.TicketPriorityUrgent, "%printer%"}, args)
}

package handlers

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

// SessionService is the session lifecycle used by the auth and session endpoints.
type SessionService interface {
	Login(ctx context.Context, input service.LoginInput) (*service.LoginResult, error)
	Logout(ctx context.Context, accountID, sessionID string) error
	FindAll(ctx context.Context, caller service.Caller, query service.SessionQuery) ([]domain.Session, error)
}

// UserService manages identities.
type UserService interface {
	Create(ctx context.Context, input service.CreateUserInput) (*domain.Identity, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Profile(ctx context.Context, caller service.Caller) (*domain.Identity, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	Update(ctx context.Context, id string, input service.UpdateUserInput) (*domain.Identity, error)
	Delete(ctx context.Context, id string) error
}

// OrgService manages sectors and positions.
type OrgService interface {
	CreateSector(ctx context.Context, input service.SectorInput) (*domain.Sector, error)
	UpdateSector(ctx context.Context, id string, patch service.SectorPatch) (*domain.Sector, error)
	ListSectors(ctx context.Context, includeInactive bool) ([]domain.Sector, error)
	CreatePosition(ctx context.Context, input service.PositionInput) (*domain.Position, error)
	UpdatePosition(ctx context.Context, id string, patch service.PositionPatch) (*domain.Position, error)
	ListPositions(ctx context.Context, sectorID *string) ([]domain.Position, error)
}

// TicketService coordinates ticket workflows.
type TicketService interface {
	Create(ctx context.Context, caller service.Caller, input service.TicketCreateInput) (*domain.Ticket, error)
	List(ctx context.Context, caller service.Caller, filter service.TicketListFilter) ([]domain.Ticket, error)
	Get(ctx context.Context, caller service.Caller, id string) (*domain.Ticket, error)
	Events(ctx context.Context, caller service.Caller, id string) ([]domain.TicketEvent, error)
	ChangeStatus(ctx context.Context, caller service.Caller, id string, next domain.TicketStatus, note string) (*domain.Ticket, error)
	Assign(ctx context.Context, caller service.Caller, id, resolverID string) (*domain.Ticket, error)
	Comment(ctx context.Context, caller service.Caller, id, body string) (*domain.TicketEvent, error)
}

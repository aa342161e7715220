package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const (
	maxTicketTitleLength = 200
	maxCommentLength     = 4000
	commentPreviewLength = 120
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	store      repository.DataStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	Store      repository.DataStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	SectorID    *string
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Create files a ticket owned by the caller.
func (s *TicketService) Create(ctx context.Context, caller Caller, input TicketCreateInput) (*domain.Ticket, error) {
	if !caller.CanCreateTicket {
		return nil, apperrors.NewForbidden("account may not create tickets")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" || len(title) > maxTicketTitleLength {
		return nil, apperrors.NewValidationError("title must have 1 to 200 characters", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	sectorID := input.SectorID
	if sectorID == nil {
		var err error
		if sectorID, err = s.callerSector(ctx, caller); err != nil {
			return nil, err
		}
	} else if err := s.requireActiveSector(ctx, *sectorID); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Code:        generateTicketCode(),
		OwnerID:     caller.UserID,
		SectorID:    sectorID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
	}
	err := s.store.WithTx(ctx, func(tx repository.Repositories) error {
		if err := tx.Tickets().Create(ctx, ticket); err != nil {
			return err
		}
		to := ticket.Status
		return tx.TicketEvents().Create(ctx, &domain.TicketEvent{
			TicketID: ticket.ID,
			ActorID:  caller.UserID,
			Kind:     domain.TicketEventCreated,
			ToStatus: &to,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.New(events.EventTicketCreated, ticket.ID, caller.UserID, s.now(), events.TicketCreatedPayload{
		Code:     ticket.Code,
		SectorID: ticket.SectorID,
		Priority: ticket.Priority,
		Title:    ticket.Title,
	}))
	return ticket, nil
}

// List returns the tickets visible to the caller.
func (s *TicketService) List(ctx context.Context, caller Caller, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if !caller.Role.IsSupervisor() {
		visibility := &repository.TicketVisibility{UserID: caller.UserID, Resolver: caller.CanResolveTicket}
		if caller.CanResolveTicket {
			sectorID, err := s.callerSector(ctx, caller)
			if err != nil {
				return nil, err
			}
			visibility.SectorID = sectorID
		}
		repoFilter.VisibleTo = visibility
	}

	tickets, err := s.store.Tickets().List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

// Get returns a ticket the caller may see.
func (s *TicketService) Get(ctx context.Context, caller Caller, id string) (*domain.Ticket, error) {
	ticket, _, err := s.loadVisible(ctx, caller, id)
	return ticket, err
}

// Events returns the activity log of a ticket the caller may see.
func (s *TicketService) Events(ctx context.Context, caller Caller, id string) ([]domain.TicketEvent, error) {
	if _, _, err := s.loadVisible(ctx, caller, id); err != nil {
		return nil, err
	}
	list, err := s.store.TicketEvents().ListByTicket(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if list == nil {
		list = []domain.TicketEvent{}
	}
	return list, nil
}

// ChangeStatus moves a ticket along its lifecycle. Resolvers and supervisors drive the work
// states; the owner may also close.
func (s *TicketService) ChangeStatus(ctx context.Context, caller Caller, id string, next domain.TicketStatus, note string) (*domain.Ticket, error) {
	ticket, access, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, next) {
		return nil, apperrors.NewValidationError("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   next,
		})
	}
	if !access.canMoveTo(next) {
		return nil, apperrors.NewForbidden("not allowed to change this ticket's status")
	}

	previous := ticket.Status
	ticket.Status = next
	if next == domain.TicketStatusInProgress && ticket.ResolverID == nil && access.resolver {
		resolver := caller.UserID
		ticket.ResolverID = &resolver
	}
	if next == domain.TicketStatusClosed {
		closedAt := s.now().UTC()
		ticket.ClosedAt = &closedAt
	} else {
		ticket.ClosedAt = nil
	}

	note = strings.TrimSpace(note)
	err = s.store.WithTx(ctx, func(tx repository.Repositories) error {
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return err
		}
		from, to := previous, next
		return tx.TicketEvents().Create(ctx, &domain.TicketEvent{
			TicketID:   ticket.ID,
			ActorID:    caller.UserID,
			Kind:       domain.TicketEventStatusChanged,
			FromStatus: &from,
			ToStatus:   &to,
			Note:       note,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.New(events.EventTicketStatusChanged, ticket.ID, caller.UserID, s.now(), events.TicketStatusChangedPayload{
		OldStatus: previous,
		NewStatus: next,
		Note:      note,
	}))
	return ticket, nil
}

// Assign sets the resolver of a ticket. The target's account must be allowed to resolve tickets.
func (s *TicketService) Assign(ctx context.Context, caller Caller, id, resolverID string) (*domain.Ticket, error) {
	if !caller.Role.IsSupervisor() {
		return nil, apperrors.NewForbidden("only supervisors assign tickets")
	}
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewValidationError("ticket is closed", nil)
	}

	account, err := s.store.Accounts().GetByUserID(ctx, resolverID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("resolver does not exist", map[string]any{"resolver_id": resolverID})
		}
		return nil, apperrors.MapError(err)
	}
	if !account.CanResolveTicket || account.IsBanned {
		return nil, apperrors.NewValidationError("user cannot resolve tickets", map[string]any{"resolver_id": resolverID})
	}

	ticket.ResolverID = &resolverID
	err = s.store.WithTx(ctx, func(tx repository.Repositories) error {
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return err
		}
		return tx.TicketEvents().Create(ctx, &domain.TicketEvent{
			TicketID: ticket.ID,
			ActorID:  caller.UserID,
			Kind:     domain.TicketEventAssigned,
			Note:     resolverID,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.New(events.EventTicketAssigned, ticket.ID, caller.UserID, s.now(), events.TicketAssignedPayload{
		ResolverID: resolverID,
	}))
	return ticket, nil
}

// Comment appends a comment to the activity log.
func (s *TicketService) Comment(ctx context.Context, caller Caller, id, body string) (*domain.TicketEvent, error) {
	body = strings.TrimSpace(body)
	if body == "" || len(body) > maxCommentLength {
		return nil, apperrors.NewValidationError("comment must have 1 to 4000 characters", nil)
	}
	ticket, _, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewValidationError("ticket is closed", nil)
	}

	event := &domain.TicketEvent{
		TicketID: ticket.ID,
		ActorID:  caller.UserID,
		Kind:     domain.TicketEventComment,
		Note:     body,
	}
	if err := s.store.TicketEvents().Create(ctx, event); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.New(events.EventTicketCommented, ticket.ID, caller.UserID, s.now(), events.TicketCommentedPayload{
		EventID:     event.ID,
		BodyPreview: stringPreview(body, commentPreviewLength),
	}))
	return event, nil
}

// ticketAccess is what one caller may do with one ticket.
type ticketAccess struct {
	owner      bool
	resolver   bool
	supervisor bool
}

func (a ticketAccess) visible() bool {
	return a.owner || a.resolver || a.supervisor
}

func (a ticketAccess) canMoveTo(next domain.TicketStatus) bool {
	if a.supervisor || a.resolver {
		return true
	}
	return a.owner && next == domain.TicketStatusClosed
}

func accessFor(caller Caller, callerSector *string, ticket *domain.Ticket) ticketAccess {
	access := ticketAccess{
		owner:      ticket.OwnerID == caller.UserID,
		supervisor: caller.Role.IsSupervisor(),
	}
	if caller.CanResolveTicket {
		assigned := ticket.ResolverID != nil && *ticket.ResolverID == caller.UserID
		inSector := callerSector != nil && ticket.SectorID != nil && *callerSector == *ticket.SectorID
		access.resolver = assigned || inSector
	}
	return access
}

func (s *TicketService) loadVisible(ctx context.Context, caller Caller, id string) (*domain.Ticket, ticketAccess, error) {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, ticketAccess{}, err
	}
	var sectorID *string
	if caller.CanResolveTicket {
		if sectorID, err = s.callerSector(ctx, caller); err != nil {
			return nil, ticketAccess{}, err
		}
	}
	access := accessFor(caller, sectorID, ticket)
	if !access.visible() {
		return nil, ticketAccess{}, apperrors.NewForbidden("ticket not visible to caller")
	}
	return ticket, access, nil
}

func (s *TicketService) load(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.store.Tickets().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) callerSector(ctx context.Context, caller Caller) (*string, error) {
	user, err := s.store.Users().GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewAuthentication("user no longer exists")
		}
		return nil, apperrors.MapError(err)
	}
	return user.SectorID, nil
}

func (s *TicketService) requireActiveSector(ctx context.Context, sectorID string) error {
	sector, err := s.store.Sectors().GetByID(ctx, sectorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("sector does not exist", map[string]any{"sector_id": sectorID})
		}
		return apperrors.MapError(err)
	}
	if !sector.IsActive {
		return apperrors.NewValidationError("sector inactive", map[string]any{"sector_id": sectorID})
	}
	return nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func generateTicketCode() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func stringPreview(body string, max int) string {
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	return string(runes[:max]) + "..."
}

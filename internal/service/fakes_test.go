package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// memStore is an in-memory repository.DataStore. WithTx snapshots every table and restores it
// when fn fails.
type memStore struct {
	users        map[string]domain.User
	accounts     map[string]domain.Account
	sessions     map[string]domain.Session
	sessionOrder []string
	sectors      map[string]domain.Sector
	positions    map[string]domain.Position
	tickets      map[string]domain.Ticket
	events       []domain.TicketEvent
	seq          int

	// sessionUpdatesAffectNothing makes UpdateByID report zero affected rows.
	sessionUpdatesAffectNothing bool
	txCount                     int
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]domain.User{},
		accounts:  map[string]domain.Account{},
		sessions:  map[string]domain.Session{},
		sectors:   map[string]domain.Sector{},
		positions: map[string]domain.Position{},
		tickets:   map[string]domain.Ticket{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) Users() repository.UserRepository { return memUsers{m} }
func (m *memStore) Accounts() repository.AccountRepository { return memAccounts{m} }
func (m *memStore) Sessions() repository.SessionRepository { return memSessions{m} }
func (m *memStore) Sectors() repository.SectorRepository { return memSectors{m} }
func (m *memStore) Positions() repository.PositionRepository { return memPositions{m} }
func (m *memStore) Tickets() repository.TicketRepository { return memTickets{m} }
func (m *memStore) TicketEvents() repository.TicketEventRepository { return memEvents{m} }

func (m *memStore) WithTx(_ context.Context, fn func(tx repository.Repositories) error) error {
	m.txCount++
	snapshot := m.clone()
	if err := fn(m); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range m.users {
		c.users[k] = v
	}
	for k, v := range m.accounts {
		c.accounts[k] = v
	}
	for k, v := range m.sessions {
		c.sessions[k] = v
	}
	for k, v := range m.sectors {
		c.sectors[k] = v
	}
	for k, v := range m.positions {
		c.positions[k] = v
	}
	for k, v := range m.tickets {
		c.tickets[k] = v
	}
	c.sessionOrder = append([]string{}, m.sessionOrder...)
	c.events = append([]domain.TicketEvent{}, m.events...)
	return c
}

func (m *memStore) restore(c *memStore) {
	m.users, m.accounts, m.sessions = c.users, c.accounts, c.sessions
	m.sectors, m.positions, m.tickets = c.sectors, c.positions, c.tickets
	m.sessionOrder, m.events = c.sessionOrder, c.events
}

func (m *memStore) activeSessions(accountID string) []domain.Session {
	var out []domain.Session
	for _, id := range m.sessionOrder {
		if s := m.sessions[id]; s.AccountID == accountID && s.IsActive {
			out = append(out, s)
		}
	}
	return out
}

// users

type memUsers struct{ m *memStore }

func (r memUsers) view(u domain.User) *domain.User {
	for _, a := range r.m.accounts {
		if a.UserID == u.ID {
			u.IsBanned, u.CanCreateTicket, u.CanResolveTicket = a.IsBanned, a.CanCreateTicket, a.CanResolveTicket
		}
	}
	if p, ok := r.m.positions[u.PositionID]; ok {
		u.PositionName = p.Name
	}
	if u.SectorID != nil {
		if s, ok := r.m.sectors[*u.SectorID]; ok {
			name := s.Name
			u.SectorName = &name
		}
	}
	return &u
}

func (r memUsers) find(match func(domain.User) bool) (*domain.User, error) {
	for _, u := range r.m.users {
		if u.DeletedAt == nil && match(u) {
			return r.view(u), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memUsers) Create(_ context.Context, user *domain.User) error {
	user.ID = r.m.nextID("user")
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.m.users[user.ID] = *user
	return nil
}

func (r memUsers) Update(_ context.Context, user *domain.User) error {
	stored, ok := r.m.users[user.ID]
	if !ok || stored.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	stored.Name, stored.Email, stored.PositionID, stored.SectorID = user.Name, user.Email, user.PositionID, user.SectorID
	r.m.users[user.ID] = stored
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id })
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r memUsers) GetByRegister(_ context.Context, register string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Register == register })
}

func (r memUsers) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.m.users {
		if u.DeletedAt == nil {
			out = append(out, *r.view(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), nil
}

func (r memUsers) SoftDelete(_ context.Context, id string, at time.Time) error {
	u, ok := r.m.users[id]
	if !ok || u.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	u.DeletedAt = &at
	r.m.users[id] = u
	return nil
}

// accounts

type memAccounts struct{ m *memStore }

func (r memAccounts) Create(_ context.Context, account *domain.Account, rootPassword string) error {
	encrypted, err := auth.EncryptPassword(rootPassword, 4)
	if err != nil {
		return err
	}
	account.ID = r.m.nextID("acc")
	account.Hash = encrypted.HashedPassword
	account.CreatedAt = time.Now().UTC()
	account.UpdatedAt = account.CreatedAt
	r.m.accounts[account.ID] = *account
	return nil
}

func (r memAccounts) Update(_ context.Context, account *domain.Account) error {
	stored, ok := r.m.accounts[account.ID]
	if !ok || stored.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	r.m.accounts[account.ID] = *account
	return nil
}

func (r memAccounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	a, ok := r.m.accounts[id]
	if !ok || a.DeletedAt != nil {
		return nil, pgx.ErrNoRows
	}
	return &a, nil
}

func (r memAccounts) GetByUserID(_ context.Context, userID string) (*domain.Account, error) {
	for _, a := range r.m.accounts {
		if a.UserID == userID && a.DeletedAt == nil {
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memAccounts) SoftDeleteByUserID(_ context.Context, userID string, at time.Time) error {
	for id, a := range r.m.accounts {
		if a.UserID == userID && a.DeletedAt == nil {
			a.DeletedAt = &at
			r.m.accounts[id] = a
			return nil
		}
	}
	return pgx.ErrNoRows
}

// sessions

type memSessions struct{ m *memStore }

func (r memSessions) Create(_ context.Context, session *domain.Session) error {
	if session.IsActive && len(r.m.activeSessions(session.AccountID)) > 0 {
		return fmt.Errorf("duplicate active session for %s", session.AccountID)
	}
	session.ID = r.m.nextID("sess")
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	r.m.sessions[session.ID] = *session
	r.m.sessionOrder = append(r.m.sessionOrder, session.ID)
	return nil
}

func (r memSessions) FindByID(_ context.Context, id string) (*domain.Session, error) {
	s, ok := r.m.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &s, nil
}

func (r memSessions) last(accountID string, activeOnly bool) (*domain.Session, error) {
	var found *domain.Session
	for _, id := range r.m.sessionOrder {
		s := r.m.sessions[id]
		if s.AccountID != accountID || (activeOnly && !s.IsActive) {
			continue
		}
		if found == nil || !s.CreatedAt.Before(found.CreatedAt) {
			found = &s
		}
	}
	if found == nil {
		return nil, pgx.ErrNoRows
	}
	return found, nil
}

func (r memSessions) FindActiveByAccount(_ context.Context, accountID string) (*domain.Session, error) {
	return r.last(accountID, true)
}

func (r memSessions) FindLastByAccount(_ context.Context, accountID string) (*domain.Session, error) {
	return r.last(accountID, false)
}

func (r memSessions) UpdateByID(_ context.Context, session *domain.Session) (int64, error) {
	if r.m.sessionUpdatesAffectNothing {
		return 0, nil
	}
	if _, ok := r.m.sessions[session.ID]; !ok {
		return 0, nil
	}
	r.m.sessions[session.ID] = *session
	return 1, nil
}

func (r memSessions) CloseActiveByAccount(_ context.Context, accountID string, at time.Time) (int64, error) {
	var n int64
	for _, s := range r.m.activeSessions(accountID) {
		s.IsActive = false
		closedAt := at
		s.UpdatedAt = &closedAt
		r.m.sessions[s.ID] = s
		n++
	}
	return n, nil
}

func (r memSessions) ListByAccount(_ context.Context, accountID string, q repository.SessionListQuery) ([]domain.Session, error) {
	var out []domain.Session
	for _, id := range r.m.sessionOrder {
		if s := r.m.sessions[id]; s.AccountID == accountID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Ascending {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, q.Limit, q.Offset), nil
}

// organization

type memSectors struct{ m *memStore }

func (r memSectors) Create(_ context.Context, sector *domain.Sector) error {
	sector.ID = r.m.nextID("sector")
	r.m.sectors[sector.ID] = *sector
	return nil
}

func (r memSectors) Update(_ context.Context, sector *domain.Sector) error {
	if _, ok := r.m.sectors[sector.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.m.sectors[sector.ID] = *sector
	return nil
}

func (r memSectors) GetByID(_ context.Context, id string) (*domain.Sector, error) {
	s, ok := r.m.sectors[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &s, nil
}

func (r memSectors) List(_ context.Context, activeOnly bool) ([]domain.Sector, error) {
	var out []domain.Sector
	for _, s := range r.m.sectors {
		if !activeOnly || s.IsActive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memPositions struct{ m *memStore }

func (r memPositions) Create(_ context.Context, position *domain.Position) error {
	position.ID = r.m.nextID("pos")
	r.m.positions[position.ID] = *position
	return nil
}

func (r memPositions) Update(_ context.Context, position *domain.Position) error {
	if _, ok := r.m.positions[position.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.m.positions[position.ID] = *position
	return nil
}

func (r memPositions) GetByID(_ context.Context, id string) (*domain.Position, error) {
	p, ok := r.m.positions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

func (r memPositions) List(_ context.Context, sectorID *string) ([]domain.Position, error) {
	var out []domain.Position
	for _, p := range r.m.positions {
		if sectorID == nil || (p.SectorID != nil && *p.SectorID == *sectorID) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// tickets

type memTickets struct{ m *memStore }

func (r memTickets) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = r.m.nextID("ticket")
	ticket.CreatedAt = time.Now().UTC()
	ticket.UpdatedAt = ticket.CreatedAt
	r.m.tickets[ticket.ID] = *ticket
	return nil
}

func (r memTickets) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.m.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now().UTC()
	r.m.tickets[ticket.ID] = *ticket
	return nil
}

func (r memTickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	t, ok := r.m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (r memTickets) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range r.m.tickets {
		if v := filter.VisibleTo; v != nil {
			visible := t.OwnerID == v.UserID
			if v.Resolver {
				visible = visible || (t.ResolverID != nil && *t.ResolverID == v.UserID)
				visible = visible || (v.SectorID != nil && t.SectorID != nil && *t.SectorID == *v.SectorID)
			}
			if !visible {
				continue
			}
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, filter.Limit, filter.Offset), nil
}

func containsStatus(list []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

type memEvents struct{ m *memStore }

func (r memEvents) Create(_ context.Context, event *domain.TicketEvent) error {
	event.ID = r.m.nextID("event")
	event.CreatedAt = time.Now().UTC()
	r.m.events = append(r.m.events, *event)
	return nil
}

func (r memEvents) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketEvent, error) {
	var out []domain.TicketEvent
	for _, e := range r.m.events {
		if e.TicketID == ticketID {
			out = append(out, e)
		}
	}
	return out, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// seeding helpers

type seededIdentity struct {
	user    *domain.User
	account *domain.Account
}

func (m *memStore) seedSector(name string) *domain.Sector {
	sector := &domain.Sector{Name: name, IsActive: true}
	_ = memSectors{m}.Create(context.Background(), sector)
	return sector
}

func (m *memStore) seedPosition(name string, sectorID *string) *domain.Position {
	position := &domain.Position{Name: name, SectorID: sectorID, IsActive: true}
	_ = memPositions{m}.Create(context.Background(), position)
	return position
}

func (m *memStore) seedIdentity(email, register, password string, role domain.Role, sectorID *string, opts ...func(*domain.Account)) seededIdentity {
	ctx := context.Background()
	position := m.seedPosition("Analyst "+register, sectorID)
	user := &domain.User{Register: register, Name: "User " + register, Email: email, PositionID: position.ID, SectorID: sectorID}
	_ = memUsers{m}.Create(ctx, user)
	account := &domain.Account{UserID: user.ID, Role: role, CanCreateTicket: true}
	for _, opt := range opts {
		opt(account)
	}
	_ = memAccounts{m}.Create(ctx, account, password)
	return seededIdentity{user: user, account: account}
}

func asResolver(a *domain.Account) { a.CanResolveTicket = true }

func asBanned(a *domain.Account) { a.IsBanned = true }

func (id seededIdentity) caller(sessionID string) Caller {
	return Caller{
		UserID:           id.user.ID,
		AccountID:        id.account.ID,
		SessionID:        sessionID,
		Role:             id.account.Role,
		CanCreateTicket:  id.account.CanCreateTicket,
		CanResolveTicket: id.account.CanResolveTicket,
	}
}

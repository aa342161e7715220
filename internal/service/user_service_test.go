package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

type userFixture struct {
	store    *memStore
	svc      *UserService
	sector   *domain.Sector
	position *domain.Position
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	store := newMemStore()
	org := NewOrgService(OrgDependencies{SectorRepo: store.Sectors(), PositionRepo: store.Positions()})
	sector := store.seedSector("Support")
	position := store.seedPosition("Agent", &sector.ID)
	svc := NewUserService(UserDependencies{Store: store, Positions: org})
	svc.now = func() time.Time { return time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC) }
	return &userFixture{store: store, svc: svc, sector: sector, position: position}
}

func (fx *userFixture) input() CreateUserInput {
	return CreateUserInput{
		Register:   "R100",
		Name:       "Carla Mendes",
		Email:      "Carla@Example.com",
		Password:   "long-enough",
		PositionID: fx.position.ID,
	}
}

func TestCreateUserDefaults(t *testing.T) {
	fx := newUserFixture(t)

	identity, err := fx.svc.Create(context.Background(), fx.input())
	require.NoError(t, err)

	assert.Equal(t, "carla@example.com", identity.User.Email)
	assert.Equal(t, "Agent", identity.User.PositionName)
	require.NotNil(t, identity.User.SectorID)
	assert.Equal(t, fx.sector.ID, *identity.User.SectorID)
	assert.Equal(t, domain.RoleUser, identity.Account.Role)
	assert.True(t, identity.Account.CanCreateTicket)
	assert.False(t, identity.Account.CanResolveTicket)
	assert.True(t, auth.VerifyPassword("long-enough", identity.Account.Hash))
	assert.Equal(t, 1, fx.store.txCount)
}

func TestCreateUserValidation(t *testing.T) {
	fx := newUserFixture(t)
	inactive := fx.store.seedPosition("Retired", nil)
	inactive.IsActive = false
	fx.store.positions[inactive.ID] = *inactive

	tests := []struct {
		name   string
		mutate func(*CreateUserInput)
	}{
		{name: "empty register", mutate: func(in *CreateUserInput) { in.Register = " " }},
		{name: "long register", mutate: func(in *CreateUserInput) { in.Register = "R1234567890" }},
		{name: "missing name", mutate: func(in *CreateUserInput) { in.Name = "" }},
		{name: "bad email", mutate: func(in *CreateUserInput) { in.Email = "not-an-email" }},
		{name: "display name email", mutate: func(in *CreateUserInput) { in.Email = "Carla <carla@example.com>" }},
		{name: "short password", mutate: func(in *CreateUserInput) { in.Password = "short" }},
		{name: "unknown role", mutate: func(in *CreateUserInput) { in.Role = domain.Role("root") }},
		{name: "missing position", mutate: func(in *CreateUserInput) { in.PositionID = "" }},
		{name: "unknown position", mutate: func(in *CreateUserInput) { in.PositionID = "pos-missing" }},
		{name: "inactive position", mutate: func(in *CreateUserInput) { in.PositionID = inactive.ID }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := fx.input()
			tc.mutate(&in)
			_, err := fx.svc.Create(context.Background(), in)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
	assert.Empty(t, fx.store.users)
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	fx := newUserFixture(t)
	_, err := fx.svc.Create(context.Background(), fx.input())
	require.NoError(t, err)

	sameEmail := fx.input()
	sameEmail.Register = "R101"
	_, err = fx.svc.Create(context.Background(), sameEmail)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	sameRegister := fx.input()
	sameRegister.Email = "other@example.com"
	_, err = fx.svc.Create(context.Background(), sameRegister)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	assert.Len(t, fx.store.users, 1)
}

func TestGetUserNotFound(t *testing.T) {
	fx := newUserFixture(t)
	_, err := fx.svc.Get(context.Background(), "user-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProfile(t *testing.T) {
	fx := newUserFixture(t)
	seeded := fx.store.seedIdentity("dan@example.com", "R200", "long-enough", domain.RoleManager, &fx.sector.ID)

	identity, err := fx.svc.Profile(context.Background(), seeded.caller("sess-1"))
	require.NoError(t, err)
	assert.Equal(t, seeded.user.ID, identity.User.ID)
	assert.Equal(t, domain.RoleManager, identity.Account.Role)
}

func TestListUsersNeverNil(t *testing.T) {
	fx := newUserFixture(t)
	users, err := fx.svc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUpdateUserBanRevokesActiveSession(t *testing.T) {
	fx := newUserFixture(t)
	seeded := fx.store.seedIdentity("eva@example.com", "R300", "long-enough", domain.RoleUser, nil)
	session := &domain.Session{AccountID: seeded.account.ID, IsActive: true, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, fx.store.Sessions().Create(context.Background(), session))

	banned := true
	role := domain.RoleViewer
	identity, err := fx.svc.Update(context.Background(), seeded.user.ID, UpdateUserInput{IsBanned: &banned, Role: &role})
	require.NoError(t, err)

	assert.True(t, identity.Account.IsBanned)
	assert.Equal(t, domain.RoleViewer, identity.Account.Role)
	assert.True(t, identity.User.IsBanned)
	assert.Empty(t, fx.store.activeSessions(seeded.account.ID))
	closed := fx.store.sessions[session.ID]
	require.NotNil(t, closed.UpdatedAt)
	assert.Equal(t, fx.svc.now(), *closed.UpdatedAt)
}

func TestUpdateUserPositionMovesSector(t *testing.T) {
	fx := newUserFixture(t)
	seeded := fx.store.seedIdentity("fay@example.com", "R400", "long-enough", domain.RoleUser, nil)
	name := "  Fay Lima "

	identity, err := fx.svc.Update(context.Background(), seeded.user.ID, UpdateUserInput{PositionID: &fx.position.ID, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Fay Lima", identity.User.Name)
	require.NotNil(t, identity.User.SectorID)
	assert.Equal(t, fx.sector.ID, *identity.User.SectorID)
}

func TestUpdateUserRollsBackInvalidInput(t *testing.T) {
	fx := newUserFixture(t)
	seeded := fx.store.seedIdentity("gil@example.com", "R500", "long-enough", domain.RoleUser, nil)
	empty := " "

	_, err := fx.svc.Update(context.Background(), seeded.user.ID, UpdateUserInput{Name: &empty})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, "User R500", fx.store.users[seeded.user.ID].Name)

	_, err = fx.svc.Update(context.Background(), "user-missing", UpdateUserInput{Name: &empty})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteUserClosesSessions(t *testing.T) {
	fx := newUserFixture(t)
	seeded := fx.store.seedIdentity("hal@example.com", "R600", "long-enough", domain.RoleUser, nil)
	session := &domain.Session{AccountID: seeded.account.ID, IsActive: true, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, fx.store.Sessions().Create(context.Background(), session))

	require.NoError(t, fx.svc.Delete(context.Background(), seeded.user.ID))

	assert.NotNil(t, fx.store.users[seeded.user.ID].DeletedAt)
	assert.NotNil(t, fx.store.accounts[seeded.account.ID].DeletedAt)
	assert.Empty(t, fx.store.activeSessions(seeded.account.ID))

	_, err := fx.svc.Get(context.Background(), seeded.user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, fx.svc.Delete(context.Background(), seeded.user.ID), apperrors.ErrNotFound)
}

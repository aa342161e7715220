package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type sessionFixture struct {
	store     *memStore
	svc       *SessionService
	clock     *clock
	published []events.EventType
	identity  seededIdentity
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	fx := &sessionFixture{
		store: newMemStore(),
		clock: &clock{now: time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)},
	}
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.SubscribeAll(func(_ context.Context, e events.Event) error {
		fx.published = append(fx.published, e.Type)
		return nil
	})
	tokens := auth.NewTokenCodec("secret", "helpdesk").WithClock(fx.clock.Now)
	fx.svc = NewSessionService(config.AuthConfig{SessionLifetimeDays: 3}, SessionDependencies{
		Store:      fx.store,
		Tokens:     tokens,
		Dispatcher: dispatcher,
	})
	fx.svc.now = fx.clock.Now
	fx.identity = fx.store.seedIdentity("ana@example.com", "R001", "correct-horse", domain.RoleUser, nil)
	return fx
}

func (fx *sessionFixture) login(t *testing.T) *LoginResult {
	t.Helper()
	result, err := fx.svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	return result
}

func TestLoginFirstTimeOpensSession(t *testing.T) {
	fx := newSessionFixture(t)

	result := fx.login(t)

	assert.Len(t, strings.Split(result.AccessToken, "."), 3)
	assert.True(t, fx.clock.now.Add(72*time.Hour).Equal(result.ExpiresAt))
	require.NotNil(t, result.Session)
	assert.True(t, result.Session.IsActive)
	assert.Equal(t, fx.identity.account.ID, result.Session.AccountID)

	active := fx.store.activeSessions(fx.identity.account.ID)
	require.Len(t, active, 1)
	assert.Equal(t, result.Session.ID, active[0].ID)
	assert.Equal(t, []events.EventType{events.EventSessionOpened}, fx.published)
}

func TestLoginTokenCarriesSessionAndSnapshot(t *testing.T) {
	fx := newSessionFixture(t)
	result := fx.login(t)

	claims, err := auth.NewTokenCodec("secret", "helpdesk").WithClock(fx.clock.Now).Verify(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.Session.ID, claims.SessionID)
	assert.Equal(t, fx.identity.account.ID, claims.AccountID)
	assert.Equal(t, fx.identity.user.ID, claims.UserID())
	assert.Equal(t, "R001", claims.Register)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.True(t, claims.CanCreateTicket)
}

func TestLoginSupersedesActiveSession(t *testing.T) {
	fx := newSessionFixture(t)
	first := fx.login(t)
	fx.clock.Advance(time.Minute)

	second := fx.login(t)

	previous := fx.store.sessions[first.Session.ID]
	assert.False(t, previous.IsActive)
	require.NotNil(t, previous.UpdatedAt)
	assert.Equal(t, fx.clock.now, *previous.UpdatedAt)

	active := fx.store.activeSessions(fx.identity.account.ID)
	require.Len(t, active, 1)
	assert.Equal(t, second.Session.ID, active[0].ID)
	assert.NotEqual(t, first.Session.ID, second.Session.ID)
	assert.Equal(t, []events.EventType{
		events.EventSessionOpened,
		events.EventSessionSuperseded,
		events.EventSessionOpened,
	}, fx.published)
}

func TestLoginByRegister(t *testing.T) {
	fx := newSessionFixture(t)
	result, err := fx.svc.Login(context.Background(), LoginInput{Register: " R001 ", Password: "correct-horse"})
	require.NoError(t, err)
	assert.True(t, result.Session.IsActive)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	fx := newSessionFixture(t)

	_, err := fx.svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)

	_, err = fx.svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)

	_, err = fx.svc.Login(context.Background(), LoginInput{Password: "correct-horse"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	assert.Empty(t, fx.store.sessions)
}

func TestLoginRejectsBannedAccount(t *testing.T) {
	fx := newSessionFixture(t)
	fx.store.seedIdentity("bob@example.com", "R002", "correct-horse", domain.RoleUser, nil, asBanned)

	_, err := fx.svc.Login(context.Background(), LoginInput{Email: "bob@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Empty(t, fx.store.sessions)
}

func TestLoginFailsWhenPreviousSessionCannotBeClosed(t *testing.T) {
	fx := newSessionFixture(t)
	first := fx.login(t)
	fx.store.sessionUpdatesAffectNothing = true

	_, err := fx.svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "correct-horse"})

	assert.ErrorIs(t, err, apperrors.ErrSessionClose)
	assert.Len(t, fx.store.sessions, 1)
	assert.True(t, fx.store.sessions[first.Session.ID].IsActive)
}

func TestLogoutClosesLatestSession(t *testing.T) {
	fx := newSessionFixture(t)
	result := fx.login(t)
	fx.clock.Advance(time.Hour)

	require.NoError(t, fx.svc.Logout(context.Background(), fx.identity.account.ID, result.Session.ID))

	closed := fx.store.sessions[result.Session.ID]
	assert.False(t, closed.IsActive)
	require.NotNil(t, closed.UpdatedAt)
	assert.Equal(t, fx.clock.now, *closed.UpdatedAt)
	assert.Contains(t, fx.published, events.EventSessionClosed)
}

func TestLogoutOfInactiveSession(t *testing.T) {
	fx := newSessionFixture(t)
	result := fx.login(t)
	require.NoError(t, fx.svc.Logout(context.Background(), fx.identity.account.ID, result.Session.ID))
	before := fx.store.clone()

	err := fx.svc.Logout(context.Background(), fx.identity.account.ID, result.Session.ID)

	require.ErrorIs(t, err, apperrors.ErrInvalidSession)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Equal(t, "Session not valid or not exists", domainErr.Message)
	assert.Equal(t, before.sessions, fx.store.sessions)
}

func TestLogoutWithSupersededSessionKeepsNewerOne(t *testing.T) {
	fx := newSessionFixture(t)
	first := fx.login(t)
	fx.clock.Advance(time.Minute)
	second := fx.login(t)
	before := fx.store.clone()

	err := fx.svc.Logout(context.Background(), fx.identity.account.ID, first.Session.ID)

	require.ErrorIs(t, err, apperrors.ErrInvalidSession)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
	assert.Equal(t, before.sessions, fx.store.sessions)
	assert.True(t, fx.store.sessions[second.Session.ID].IsActive)
}

func TestLogoutOfExpiredSession(t *testing.T) {
	fx := newSessionFixture(t)
	result := fx.login(t)
	fx.clock.Advance(72 * time.Hour)

	err := fx.svc.Logout(context.Background(), fx.identity.account.ID, result.Session.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSession)
}

func TestLogoutWithoutSessions(t *testing.T) {
	fx := newSessionFixture(t)
	err := fx.svc.Logout(context.Background(), fx.identity.account.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLogoutUpdateAffectsNothing(t *testing.T) {
	fx := newSessionFixture(t)
	result := fx.login(t)
	fx.store.sessionUpdatesAffectNothing = true

	err := fx.svc.Logout(context.Background(), fx.identity.account.ID, result.Session.ID)
	assert.ErrorIs(t, err, apperrors.ErrUpdate)
}

func TestValidate(t *testing.T) {
	fx := newSessionFixture(t)
	result := fx.login(t)

	session, err := fx.svc.Validate(context.Background(), result.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Session.ID, session.ID)

	fx.clock.now = result.Session.ExpiresAt
	_, err = fx.svc.Validate(context.Background(), result.Session.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSession)

	_, err = fx.svc.Validate(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrInvalidSession)
}

func TestFindAllPagesCallerSessions(t *testing.T) {
	fx := newSessionFixture(t)
	var ids []string
	for i := 0; i < 12; i++ {
		ids = append(ids, fx.login(t).Session.ID)
		fx.clock.Advance(time.Minute)
	}
	latest := ids[len(ids)-1]
	caller := fx.identity.caller(latest)

	all, err := fx.svc.FindAll(context.Background(), caller, SessionQuery{})
	require.NoError(t, err)
	require.Len(t, all, 10)
	assert.Equal(t, latest, all[0].ID)

	asc, err := fx.svc.FindAll(context.Background(), caller, SessionQuery{Page: 3, Index: 1, Order: "ASC"})
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, ids[0], asc[0].ID)

	third, err := fx.svc.FindAll(context.Background(), caller, SessionQuery{Page: 4, Index: 2, Order: "asc"})
	require.NoError(t, err)
	require.Len(t, third, 4)
	assert.Equal(t, ids[8], third[0].ID)
}

func TestFindAllRequiresValidCallerSession(t *testing.T) {
	fx := newSessionFixture(t)
	first := fx.login(t)
	fx.clock.Advance(time.Minute)
	fx.login(t)

	_, err := fx.svc.FindAll(context.Background(), fx.identity.caller(first.Session.ID), SessionQuery{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestSessionListQuery(t *testing.T) {
	tests := []struct {
		name  string
		query SessionQuery
		want  repository.SessionListQuery
	}{
		{name: "defaults", query: SessionQuery{}, want: repository.SessionListQuery{Limit: 10}},
		{name: "index one is first page", query: SessionQuery{Page: 5, Index: 1}, want: repository.SessionListQuery{Limit: 5}},
		{name: "index scales offset", query: SessionQuery{Page: 5, Index: 3}, want: repository.SessionListQuery{Limit: 5, Offset: 15}},
		{name: "ascending", query: SessionQuery{Order: " asc "}, want: repository.SessionListQuery{Limit: 10, Ascending: true}},
		{name: "unknown order is descending", query: SessionQuery{Order: "sideways"}, want: repository.SessionListQuery{Limit: 10}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sessionListQuery(tc.query))
		})
	}
}

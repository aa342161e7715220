package service

import (
	"context"
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const (
	defaultSessionPage = 10

	closeReasonLogout     = "logout"
	closeReasonSuperseded = "superseded"
)

// SessionService owns the session lifecycle: login, logout and validity checks.
type SessionService struct {
	store        repository.DataStore
	tokens       *auth.TokenCodec
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	lifetimeDays int
	now          func() time.Time
}

// SessionDependencies bundles collaborators for the session service.
type SessionDependencies struct {
	Store      repository.DataStore
	Tokens     *auth.TokenCodec
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// LoginInput identifies the user by email or register.
type LoginInput struct {
	Email    string
	Register string
	Password string
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	Session     *domain.Session
	User        *domain.User
	Account     *domain.Account
}

// SessionQuery pages through the caller's sessions. Index 0 and 1 both select the first page.
type SessionQuery struct {
	Page  int
	Index int
	Order string
}

// NewSessionService constructs the service.
func NewSessionService(cfg config.AuthConfig, deps SessionDependencies) *SessionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	days := cfg.SessionLifetimeDays
	if days <= 0 {
		days = auth.DefaultSessionDays
	}
	return &SessionService{
		store:        deps.Store,
		tokens:       deps.Tokens,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
		lifetimeDays: days,
		now:          time.Now,
	}
}

// Login verifies the credentials and swaps the account's active session for a new one.
func (s *SessionService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, account, err := s.resolveCredentials(ctx, input)
	if err != nil {
		observability.AuthLoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return nil, err
	}

	now := s.now()
	var (
		created    *domain.Session
		superseded *domain.Session
		token      string
		expiresAt  time.Time
	)
	err = s.store.WithTx(ctx, func(tx repository.Repositories) error {
		sessions := tx.Sessions()

		active, err := sessions.FindActiveByAccount(ctx, account.ID)
		switch {
		case err == nil:
			closedAt := now
			active.IsActive = false
			active.UpdatedAt = &closedAt
			affected, err := sessions.UpdateByID(ctx, active)
			if err != nil {
				return err
			}
			if affected == 0 {
				return apperrors.NewSessionCloseError(active.ID)
			}
			superseded = active
		case errors.Is(err, pgx.ErrNoRows):
		default:
			return err
		}

		session := &domain.Session{
			AccountID: account.ID,
			ExpiresAt: now.Add(time.Duration(s.lifetimeDays) * 24 * time.Hour),
			IsActive:  true,
			CreatedAt: now,
		}
		if err := sessions.Create(ctx, session); err != nil {
			return err
		}

		token, expiresAt, err = s.tokens.Issue(claimsFor(user, account, session.ID), s.lifetimeDays)
		if err != nil {
			return err
		}
		created = session
		return nil
	})
	if err != nil {
		observability.AuthLoginsTotal.WithLabelValues("error").Inc()
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("another login for this account is in progress", nil)
		}
		return nil, apperrors.MapError(err)
	}

	observability.AuthLoginsTotal.WithLabelValues("success").Inc()
	if superseded != nil {
		observability.SessionsClosedTotal.WithLabelValues(closeReasonSuperseded).Inc()
		s.logger.Info("session superseded",
			zap.String("session_id", superseded.ID),
			zap.String("account_id", account.ID))
		s.publish(ctx, events.New(events.EventSessionSuperseded, superseded.ID, user.ID, now, events.SessionPayload{
			AccountID: account.ID,
			ExpiresAt: superseded.ExpiresAt,
			Reason:    closeReasonSuperseded,
		}))
	}
	s.logger.Info("session opened",
		zap.String("session_id", created.ID),
		zap.String("account_id", account.ID),
		zap.Time("expires_at", created.ExpiresAt))
	s.publish(ctx, events.New(events.EventSessionOpened, created.ID, user.ID, now, events.SessionPayload{
		AccountID: account.ID,
		ExpiresAt: created.ExpiresAt,
	}))

	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Session:     created,
		User:        user,
		Account:     account,
	}, nil
}

func (s *SessionService) resolveCredentials(ctx context.Context, input LoginInput) (*domain.User, *domain.Account, error) {
	email := strings.TrimSpace(input.Email)
	register := strings.TrimSpace(input.Register)
	if email == "" && register == "" {
		return nil, nil, apperrors.NewValidationError("email or register is required", nil)
	}
	if input.Password == "" {
		return nil, nil, apperrors.NewValidationError("password is required", nil)
	}

	var (
		user *domain.User
		err  error
	)
	if email != "" {
		user, err = s.store.Users().GetByEmail(ctx, email)
	} else {
		user, err = s.store.Users().GetByRegister(ctx, register)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewAuthentication("invalid credentials")
		}
		return nil, nil, apperrors.MapError(err)
	}

	account, err := s.store.Accounts().GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewAuthentication("invalid credentials")
		}
		return nil, nil, apperrors.MapError(err)
	}
	if !auth.VerifyPassword(input.Password, account.Hash) {
		return nil, nil, apperrors.NewAuthentication("invalid credentials")
	}
	if account.IsBanned {
		return nil, nil, apperrors.NewForbidden("account banned")
	}
	return user, account, nil
}

// Logout closes the session the caller's token points at. That session must be the account's
// most recent one and still valid; a superseded token never touches the newer session.
func (s *SessionService) Logout(ctx context.Context, accountID, sessionID string) error {
	sessions := s.store.Sessions()

	last, err := sessions.FindLastByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("session", map[string]any{"account_id": accountID})
		}
		return apperrors.MapError(err)
	}

	now := s.now()
	if last.ID != sessionID || !last.IsValid(now) {
		return apperrors.NewInvalidSession("")
	}

	last.IsActive = false
	last.UpdatedAt = &now
	affected, err := sessions.UpdateByID(ctx, last)
	if err != nil {
		return apperrors.MapError(err)
	}
	if affected == 0 {
		return apperrors.NewUpdateError("session")
	}

	observability.SessionsClosedTotal.WithLabelValues(closeReasonLogout).Inc()
	s.logger.Info("session closed", zap.String("session_id", last.ID), zap.String("account_id", accountID))
	s.publish(ctx, events.New(events.EventSessionClosed, last.ID, "", now, events.SessionPayload{
		AccountID: accountID,
		ExpiresAt: last.ExpiresAt,
		Reason:    closeReasonLogout,
	}))
	return nil
}

// Validate loads a session and checks it is active and unexpired. Nothing is cached.
func (s *SessionService) Validate(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.store.Sessions().FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidSession("")
		}
		return nil, apperrors.MapError(err)
	}
	if !session.IsValid(s.now()) {
		return nil, apperrors.NewInvalidSession("")
	}
	return session, nil
}

// FindAll lists the caller's sessions. The caller's own session must still be valid.
func (s *SessionService) FindAll(ctx context.Context, caller Caller, query SessionQuery) ([]domain.Session, error) {
	if _, err := s.Validate(ctx, caller.SessionID); err != nil {
		if errors.Is(err, apperrors.ErrInvalidSession) {
			return nil, apperrors.NewForbidden("session not valid")
		}
		return nil, err
	}

	list, err := s.store.Sessions().ListByAccount(ctx, caller.AccountID, sessionListQuery(query))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if list == nil {
		list = []domain.Session{}
	}
	return list, nil
}

func sessionListQuery(query SessionQuery) repository.SessionListQuery {
	page := query.Page
	if page <= 0 {
		page = defaultSessionPage
	}
	index := query.Index
	if index <= 1 {
		index = 0
	}
	return repository.SessionListQuery{
		Limit:     page,
		Offset:    index * page,
		Ascending: strings.EqualFold(strings.TrimSpace(query.Order), "asc"),
	}
}

func claimsFor(user *domain.User, account *domain.Account, sessionID string) auth.Claims {
	claims := auth.Claims{
		SessionID:        sessionID,
		AccountID:        account.ID,
		Register:         user.Register,
		Email:            user.Email,
		Name:             user.Name,
		Position:         user.PositionName,
		Role:             account.Role,
		IsBanned:         account.IsBanned,
		CanCreateTicket:  account.CanCreateTicket,
		CanResolveTicket: account.CanResolveTicket,
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID},
	}
	if user.SectorName != nil {
		claims.Sector = *user.SectorName
	}
	return claims
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrAuthentication):
		return "invalid_credentials"
	case errors.Is(err, apperrors.ErrForbidden):
		return "banned"
	case errors.Is(err, apperrors.ErrValidation):
		return "invalid_request"
	default:
		return "error"
	}
}

func (s *SessionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

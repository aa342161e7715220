package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/observability"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Claims  *Claims
	Session *domain.Session
	Account *domain.Account
	Role    domain.Role
}

// UserID returns the caller's identity id.
func (p *Principal) UserID() string {
	return p.Account.UserID
}

// AccountID returns the caller's credential id.
func (p *Principal) AccountID() string {
	return p.Account.ID
}

// SessionSource resolves the session a token points at.
type SessionSource interface {
	FindByID(ctx context.Context, id string) (*domain.Session, error)
}

// AccountSource resolves the current credential of a caller.
type AccountSource interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
}

// Guard runs authentication and role authorization for every non-public route.
type Guard struct {
	tokens   *TokenCodec
	sessions SessionSource
	accounts AccountSource
	policies *PolicyTable
	logger   *zap.Logger
	now      func() time.Time
}

// NewGuard constructs the guard chain.
func NewGuard(tokens *TokenCodec, sessions SessionSource, accounts AccountSource, policies *PolicyTable, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		tokens:   tokens,
		sessions: sessions,
		accounts: accounts,
		policies: policies,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle enforces the policy registered for the matched route.
func (g *Guard) Handle(c *fiber.Ctx) error {
	route := c.Route()
	policy := g.policies.Lookup(route.Method, route.Path)
	if policy.Public {
		return c.Next()
	}

	principal, err := g.authenticate(c, policy)
	if err != nil {
		return err
	}
	if err := g.authorize(principal, policy); err != nil {
		g.reject("role", zap.String("path", route.Path), zap.String("role", string(principal.Role)))
		return err
	}

	c.Locals(principalKey, principal)
	c.Locals(observability.AccountIDLocal, principal.AccountID())
	return c.Next()
}

func (g *Guard) authenticate(c *fiber.Ctx, policy RoutePolicy) (*Principal, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.TrimSpace(header) == "" {
		g.reject("missing_token")
		return nil, apperrors.NewAuthentication("missing authorization header")
	}

	claims, err := g.tokens.Verify(header)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			g.reject("expired_token")
			return nil, apperrors.NewAuthentication("token expired")
		}
		g.reject("invalid_token")
		return nil, apperrors.NewAuthentication("invalid token")
	}

	ctx := c.UserContext()
	session, err := g.sessions.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || apperrors.IsInvalidTextRepresentation(err) {
			g.reject("unknown_session")
			return nil, apperrors.NewAuthentication("session not found")
		}
		return nil, apperrors.MapError(err)
	}
	if session.AccountID != claims.AccountID || (!policy.ClosedSessionOK && !session.IsValid(g.now())) {
		g.reject("invalid_session", zap.String("session_id", session.ID))
		return nil, apperrors.NewAuthentication("session expired or closed")
	}

	account, err := g.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			g.reject("unknown_account")
			return nil, apperrors.NewAuthentication("account not found")
		}
		return nil, apperrors.MapError(err)
	}
	if account.IsBanned {
		g.reject("banned")
		return nil, apperrors.NewForbidden("account banned")
	}

	return &Principal{Claims: claims, Session: session, Account: account, Role: account.Role}, nil
}

func (g *Guard) authorize(principal *Principal, policy RoutePolicy) error {
	switch EvaluateRoles(principal.Role, policy.Allow, policy.Deny) {
	case DecisionAllow:
		return nil
	case DecisionDenyListed:
		return apperrors.NewForbidden("role denied for this resource")
	default:
		return apperrors.NewForbidden("role not allowed for this resource")
	}
}

func (g *Guard) reject(reason string, fields ...zap.Field) {
	observability.GuardRejectionsTotal.WithLabelValues(reason).Inc()
	g.logger.Debug("request rejected", append(fields, zap.String("reason", reason))...)
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// RequirePrincipal is PrincipalFromContext for handlers that sit behind the guard.
func RequirePrincipal(c *fiber.Ctx) (*Principal, error) {
	principal, ok := PrincipalFromContext(c)
	if !ok || principal == nil || principal.Account == nil {
		return nil, apperrors.NewAuthentication("authentication required")
	}
	return principal, nil
}

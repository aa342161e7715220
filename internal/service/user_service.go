package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const minPasswordLength = 8

// PositionLookup resolves positions for user assignment.
type PositionLookup interface {
	GetPosition(ctx context.Context, id string) (*domain.Position, error)
}

// UserService manages identities and their accounts.
type UserService struct {
	store     repository.DataStore
	positions PositionLookup
	logger    *zap.Logger
	now       func() time.Time
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	Store     repository.DataStore
	Positions PositionLookup
	Logger    *zap.Logger
}

// CreateUserInput describes a new identity and its account.
type CreateUserInput struct {
	Register         string
	Name             string
	Email            string
	Password         string
	PositionID       string
	SectorID         *string
	Role             domain.Role
	CanCreateTicket  *bool
	CanResolveTicket *bool
}

// UpdateUserInput updates the non-nil fields of an identity and its account.
type UpdateUserInput struct {
	Name             *string
	Email            *string
	PositionID       *string
	SectorID         *string
	Role             *domain.Role
	IsBanned         *bool
	CanCreateTicket  *bool
	CanResolveTicket *bool
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		store:     deps.Store,
		positions: deps.Positions,
		logger:    logger,
		now:       time.Now,
	}
}

// Create registers an identity and its account in one transaction.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.Identity, error) {
	register := strings.TrimSpace(input.Register)
	if register == "" || len(register) > domain.MaxRegisterLength {
		return nil, apperrors.NewValidationError("register must have 1 to 10 characters", map[string]any{"max": domain.MaxRegisterLength})
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password too short", map[string]any{"min": minPasswordLength})
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	position, err := s.lookupPosition(ctx, input.PositionID)
	if err != nil {
		return nil, err
	}
	sectorID := input.SectorID
	if sectorID == nil {
		sectorID = position.SectorID
	}

	if err := s.ensureUnique(ctx, email, register); err != nil {
		return nil, err
	}

	user := &domain.User{
		Register:   register,
		Name:       name,
		Email:      email,
		PositionID: position.ID,
		SectorID:   sectorID,
	}
	account := &domain.Account{
		Role:             role,
		CanCreateTicket:  boolOr(input.CanCreateTicket, true),
		CanResolveTicket: boolOr(input.CanResolveTicket, false),
	}

	var created *domain.User
	err = s.store.WithTx(ctx, func(tx repository.Repositories) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		account.UserID = user.ID
		if err := tx.Accounts().Create(ctx, account, input.Password); err != nil {
			return err
		}
		var err error
		created, err = tx.Users().GetByID(ctx, user.ID)
		return err
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("user created", zap.String("user_id", created.ID), zap.String("role", string(account.Role)))
	return &domain.Identity{User: created, Account: account}, nil
}

// Get returns one identity.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Profile returns the caller's identity and account.
func (s *UserService) Profile(ctx context.Context, caller Caller) (*domain.Identity, error) {
	user, err := s.Get(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	account, err := s.store.Accounts().GetByID(ctx, caller.AccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", map[string]any{"id": caller.AccountID})
		}
		return nil, apperrors.MapError(err)
	}
	return &domain.Identity{User: user, Account: account}, nil
}

// List pages through identities.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.store.Users().List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// Update changes profile fields, role and flags. Banning an account closes its active session.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*domain.Identity, error) {
	if input.Role != nil && !input.Role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": *input.Role})
	}
	var position *domain.Position
	if input.PositionID != nil {
		var err error
		if position, err = s.lookupPosition(ctx, *input.PositionID); err != nil {
			return nil, err
		}
	}

	var (
		updated *domain.User
		account *domain.Account
		revoked int64
	)
	err := s.store.WithTx(ctx, func(tx repository.Repositories) error {
		user, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		account, err = tx.Accounts().GetByUserID(ctx, id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return apperrors.NewValidationError("name is required", nil)
			}
			user.Name = name
		}
		if input.Email != nil {
			email, err := normalizeEmail(*input.Email)
			if err != nil {
				return err
			}
			user.Email = email
		}
		if position != nil {
			user.PositionID = position.ID
			if input.SectorID == nil {
				user.SectorID = position.SectorID
			}
		}
		if input.SectorID != nil {
			user.SectorID = input.SectorID
		}
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}

		wasBanned := account.IsBanned
		if input.Role != nil {
			account.Role = *input.Role
		}
		account.IsBanned = boolOr(input.IsBanned, account.IsBanned)
		account.CanCreateTicket = boolOr(input.CanCreateTicket, account.CanCreateTicket)
		account.CanResolveTicket = boolOr(input.CanResolveTicket, account.CanResolveTicket)
		if err := tx.Accounts().Update(ctx, account); err != nil {
			return err
		}
		if account.IsBanned && !wasBanned {
			if revoked, err = tx.Sessions().CloseActiveByAccount(ctx, account.ID, s.now()); err != nil {
				return err
			}
		}

		updated, err = tx.Users().GetByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}

	if revoked > 0 {
		observability.SessionsClosedTotal.WithLabelValues("banned").Add(float64(revoked))
		s.logger.Info("sessions revoked", zap.String("account_id", account.ID), zap.String("reason", "banned"))
	}
	return &domain.Identity{User: updated, Account: account}, nil
}

// Delete soft-deletes the identity and its account and closes its active session.
func (s *UserService) Delete(ctx context.Context, id string) error {
	now := s.now()
	var revoked int64
	err := s.store.WithTx(ctx, func(tx repository.Repositories) error {
		account, err := tx.Accounts().GetByUserID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Users().SoftDelete(ctx, id, now); err != nil {
			return err
		}
		if err := tx.Accounts().SoftDeleteByUserID(ctx, id, now); err != nil {
			return err
		}
		revoked, err = tx.Sessions().CloseActiveByAccount(ctx, account.ID, now)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	if revoked > 0 {
		observability.SessionsClosedTotal.WithLabelValues("user_deleted").Add(float64(revoked))
	}
	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

func (s *UserService) lookupPosition(ctx context.Context, id string) (*domain.Position, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("position is required", nil)
	}
	position, err := s.positions.GetPosition(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationError("position does not exist", map[string]any{"position_id": id})
		}
		return nil, err
	}
	if !position.IsActive {
		return nil, apperrors.NewValidationError("position inactive", map[string]any{"position_id": id})
	}
	return position, nil
}

func (s *UserService) ensureUnique(ctx context.Context, email, register string) error {
	users := s.store.Users()
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	if _, err := users.GetByRegister(ctx, register); err == nil {
		return apperrors.NewConflict("register already taken", map[string]any{"register": register})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", apperrors.NewValidationError("invalid email", nil)
	}
	return strings.ToLower(addr.Address), nil
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// AccountRepository persists credentials.
type AccountRepository interface {
	// Create hashes rootPassword into account.Hash and stamps the audit timestamps before inserting.
	Create(ctx context.Context, account *domain.Account, rootPassword string) error
	Update(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Account, error)
	SoftDeleteByUserID(ctx context.Context, userID string, at time.Time) error
}

type accountRepository struct {
	db         DBTX
	bcryptCost int
}

// NewAccountRepository instantiates the repository.
func NewAccountRepository(db DBTX, bcryptCost int) AccountRepository {
	return &accountRepository{db: db, bcryptCost: bcryptCost}
}

const accountColumns = `id, user_id, hash, role, is_banned, can_create_ticket, can_resolve_ticket, created_at, updated_at, deleted_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account, rootPassword string) error {
	encrypted, err := auth.EncryptPassword(rootPassword, r.bcryptCost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	account.Hash = encrypted.HashedPassword
	account.CreatedAt = now
	account.UpdatedAt = now

	const query = `
        INSERT INTO accounts (user_id, hash, role, is_banned, can_create_ticket, can_resolve_ticket, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id`

	return r.db.QueryRow(ctx, query,
		account.UserID,
		account.Hash,
		account.Role,
		account.IsBanned,
		account.CanCreateTicket,
		account.CanResolveTicket,
		account.CreatedAt,
		account.UpdatedAt,
	).Scan(&account.ID)
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	account.UpdatedAt = time.Now().UTC()
	const query = `
        UPDATE accounts
        SET role=$1, is_banned=$2, can_create_ticket=$3, can_resolve_ticket=$4, updated_at=$5
        WHERE id=$6 AND deleted_at IS NULL`

	cmd, err := r.db.Exec(ctx, query,
		account.Role,
		account.IsBanned,
		account.CanCreateTicket,
		account.CanResolveTicket,
		account.UpdatedAt,
		account.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1 AND deleted_at IS NULL`
	return scanAccount(r.db.QueryRow(ctx, query, id))
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE user_id=$1 AND deleted_at IS NULL`
	return scanAccount(r.db.QueryRow(ctx, query, userID))
}

func (r *accountRepository) SoftDeleteByUserID(ctx context.Context, userID string, at time.Time) error {
	const query = `UPDATE accounts SET deleted_at=$1, updated_at=$1 WHERE user_id=$2 AND deleted_at IS NULL`
	cmd, err := r.db.Exec(ctx, query, at, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.Hash,
		&account.Role,
		&account.IsBanned,
		&account.CanCreateTicket,
		&account.CanResolveTicket,
		&account.CreatedAt,
		&account.UpdatedAt,
		&account.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}

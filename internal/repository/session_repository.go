package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// SessionListQuery pages through an account's sessions ordered by creation time.
type SessionListQuery struct {
	Limit     int
	Offset    int
	Ascending bool
}

// SessionRepository persists login sessions. Sessions are never deleted.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	FindByID(ctx context.Context, id string) (*domain.Session, error)
	// FindActiveByAccount locks the row when called inside a transaction.
	FindActiveByAccount(ctx context.Context, accountID string) (*domain.Session, error)
	FindLastByAccount(ctx context.Context, accountID string) (*domain.Session, error)
	UpdateByID(ctx context.Context, session *domain.Session) (int64, error)
	CloseActiveByAccount(ctx context.Context, accountID string, at time.Time) (int64, error)
	ListByAccount(ctx context.Context, accountID string, query SessionListQuery) ([]domain.Session, error)
}

type sessionRepository struct {
	db DBTX
}

// NewSessionRepository returns a Postgres-backed implementation.
func NewSessionRepository(db DBTX) SessionRepository {
	return &sessionRepository{db: db}
}

const sessionColumns = `id, account_id, expires_at, is_active, created_at, updated_at`

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const query = `
        INSERT INTO sessions (account_id, expires_at, is_active, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id`

	return r.db.QueryRow(ctx, query,
		session.AccountID,
		session.ExpiresAt,
		session.IsActive,
		session.CreatedAt,
	).Scan(&session.ID)
}

func (r *sessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM sessions WHERE id=$1`
	return scanSession(r.db.QueryRow(ctx, query, id))
}

func (r *sessionRepository) FindActiveByAccount(ctx context.Context, accountID string) (*domain.Session, error) {
	const query = `
        SELECT ` + sessionColumns + `
        FROM sessions WHERE account_id=$1 AND is_active
        ORDER BY created_at DESC LIMIT 1
        FOR UPDATE`
	return scanSession(r.db.QueryRow(ctx, query, accountID))
}

func (r *sessionRepository) FindLastByAccount(ctx context.Context, accountID string) (*domain.Session, error) {
	const query = `
        SELECT ` + sessionColumns + `
        FROM sessions WHERE account_id=$1
        ORDER BY created_at DESC LIMIT 1`
	return scanSession(r.db.QueryRow(ctx, query, accountID))
}

func (r *sessionRepository) UpdateByID(ctx context.Context, session *domain.Session) (int64, error) {
	const query = `
        UPDATE sessions SET expires_at=$1, is_active=$2, updated_at=$3
        WHERE id=$4`
	cmd, err := r.db.Exec(ctx, query,
		session.ExpiresAt,
		session.IsActive,
		session.UpdatedAt,
		session.ID,
	)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *sessionRepository) CloseActiveByAccount(ctx context.Context, accountID string, at time.Time) (int64, error) {
	const query = `UPDATE sessions SET is_active=FALSE, updated_at=$1 WHERE account_id=$2 AND is_active`
	cmd, err := r.db.Exec(ctx, query, at, accountID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *sessionRepository) ListByAccount(ctx context.Context, accountID string, q SessionListQuery) ([]domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE account_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if q.Ascending {
		query = `SELECT ` + sessionColumns + ` FROM sessions WHERE account_id=$1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	}

	rows, err := r.db.Query(ctx, query, accountID, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var session domain.Session
	if err := row.Scan(
		&session.ID,
		&session.AccountID,
		&session.ExpiresAt,
		&session.IsActive,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &session, nil
}

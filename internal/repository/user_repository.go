package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// UserRepository defines persistence access for identities. Reads join the account flags and the
// position and sector names.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByRegister(ctx context.Context, register string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userSelect = `
        SELECT u.id, u.register, u.name, u.email, u.position_id, COALESCE(p.name, ''), u.sector_id, s.name,
               a.is_banned, a.can_create_ticket, a.can_resolve_ticket, u.created_at, u.updated_at, u.deleted_at
        FROM users u
        JOIN accounts a ON a.user_id = u.id
        LEFT JOIN positions p ON p.id = u.position_id
        LEFT JOIN sectors s ON s.id = u.sector_id
        WHERE u.deleted_at IS NULL`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
        INSERT INTO users (register, name, email, position_id, sector_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`

	return r.db.QueryRow(ctx, query,
		user.Register,
		user.Name,
		user.Email,
		user.PositionID,
		user.SectorID,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `
        UPDATE users SET name=$1, email=$2, position_id=$3, sector_id=$4, updated_at=$5
        WHERE id=$6 AND deleted_at IS NULL`

	cmd, err := r.db.Exec(ctx, query,
		user.Name,
		user.Email,
		user.PositionID,
		user.SectorID,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, userSelect+` AND u.id=$1`, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, userSelect+` AND LOWER(u.email)=LOWER($1)`, email))
}

func (r *userRepository) GetByRegister(ctx context.Context, register string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, userSelect+` AND u.register=$1`, register))
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, userSelect+` ORDER BY u.created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *userRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE users SET deleted_at=$1, updated_at=$1 WHERE id=$2 AND deleted_at IS NULL`
	cmd, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Register,
		&user.Name,
		&user.Email,
		&user.PositionID,
		&user.PositionName,
		&user.SectorID,
		&user.SectorName,
		&user.IsBanned,
		&user.CanCreateTicket,
		&user.CanResolveTicket,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

package repository

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// PositionRepository manages persistence for positions.
type PositionRepository interface {
	Create(ctx context.Context, position *domain.Position) error
	Update(ctx context.Context, position *domain.Position) error
	GetByID(ctx context.Context, id string) (*domain.Position, error)
	List(ctx context.Context, sectorID *string) ([]domain.Position, error)
}

type positionRepository struct {
	db DBTX
}

// NewPositionRepository builds the repository.
func NewPositionRepository(db DBTX) PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) Create(ctx context.Context, position *domain.Position) error {
	const query = `
        INSERT INTO positions (sector_id, name, description, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		position.SectorID,
		position.Name,
		position.Description,
		position.IsActive,
	).Scan(&position.ID, &position.CreatedAt, &position.UpdatedAt)
}

func (r *positionRepository) Update(ctx context.Context, position *domain.Position) error {
	const query = `
        UPDATE positions SET sector_id=$1, name=$2, description=$3, is_active=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		position.SectorID,
		position.Name,
		position.Description,
		position.IsActive,
		position.ID,
	).Scan(&position.UpdatedAt)
}

func (r *positionRepository) GetByID(ctx context.Context, id string) (*domain.Position, error) {
	const query = `
        SELECT id, sector_id, name, description, is_active, created_at, updated_at
        FROM positions WHERE id=$1`
	var position domain.Position
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&position.ID,
		&position.SectorID,
		&position.Name,
		&position.Description,
		&position.IsActive,
		&position.CreatedAt,
		&position.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &position, nil
}

func (r *positionRepository) List(ctx context.Context, sectorID *string) ([]domain.Position, error) {
	const query = `
        SELECT id, sector_id, name, description, is_active, created_at, updated_at
        FROM positions WHERE ($1::uuid IS NULL OR sector_id = $1::uuid)
        ORDER BY name`
	rows, err := r.db.Query(ctx, query, sectorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Position
	for rows.Next() {
		var position domain.Position
		if err := rows.Scan(
			&position.ID,
			&position.SectorID,
			&position.Name,
			&position.Description,
			&position.IsActive,
			&position.CreatedAt,
			&position.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, position)
	}
	return result, rows.Err()
}

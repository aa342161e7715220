package repository

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// SectorRepository manages sector persistence.
type SectorRepository interface {
	Create(ctx context.Context, sector *domain.Sector) error
	Update(ctx context.Context, sector *domain.Sector) error
	GetByID(ctx context.Context, id string) (*domain.Sector, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Sector, error)
}

type sectorRepository struct {
	db DBTX
}

// NewSectorRepository builds the repository.
func NewSectorRepository(db DBTX) SectorRepository {
	return &sectorRepository{db: db}
}

func (r *sectorRepository) Create(ctx context.Context, sector *domain.Sector) error {
	const query = `
        INSERT INTO sectors (name, description, is_active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		sector.Name,
		sector.Description,
		sector.IsActive,
	).Scan(&sector.ID, &sector.CreatedAt, &sector.UpdatedAt)
}

func (r *sectorRepository) Update(ctx context.Context, sector *domain.Sector) error {
	const query = `
        UPDATE sectors SET name=$1, description=$2, is_active=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		sector.Name,
		sector.Description,
		sector.IsActive,
		sector.ID,
	).Scan(&sector.UpdatedAt)
}

func (r *sectorRepository) GetByID(ctx context.Context, id string) (*domain.Sector, error) {
	const query = `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM sectors WHERE id=$1`
	var sector domain.Sector
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&sector.ID,
		&sector.Name,
		&sector.Description,
		&sector.IsActive,
		&sector.CreatedAt,
		&sector.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &sector, nil
}

func (r *sectorRepository) List(ctx context.Context, activeOnly bool) ([]domain.Sector, error) {
	const query = `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM sectors WHERE ($1 = FALSE OR is_active) ORDER BY name`
	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Sector
	for rows.Next() {
		var sector domain.Sector
		if err := rows.Scan(&sector.ID, &sector.Name, &sector.Description, &sector.IsActive, &sector.CreatedAt, &sector.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, sector)
	}
	return result, rows.Err()
}


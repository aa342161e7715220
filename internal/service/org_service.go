package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const maxOrgNameLength = 120

// OrgService manages sectors and positions.
type OrgService struct {
	sectors   repository.SectorRepository
	positions repository.PositionRepository
}

// OrgDependencies encapsulates repositories required for org management.
type OrgDependencies struct {
	SectorRepo   repository.SectorRepository
	PositionRepo repository.PositionRepository
}

// SectorInput creates a sector.
type SectorInput struct {
	Name        string
	Description string
}

// SectorPatch updates the non-nil fields of a sector.
type SectorPatch struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// PositionInput creates a position.
type PositionInput struct {
	SectorID    *string
	Name        string
	Description string
}

// PositionPatch updates the non-nil fields of a position.
type PositionPatch struct {
	SectorID    *string
	Name        *string
	Description *string
	IsActive    *bool
}

// NewOrgService constructs the service.
func NewOrgService(deps OrgDependencies) *OrgService {
	return &OrgService{
		sectors:   deps.SectorRepo,
		positions: deps.PositionRepo,
	}
}

// CreateSector creates a new active sector.
func (s *OrgService) CreateSector(ctx context.Context, input SectorInput) (*domain.Sector, error) {
	name, err := orgName(input.Name)
	if err != nil {
		return nil, err
	}
	sector := &domain.Sector{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		IsActive:    true,
	}
	if err := s.sectors.Create(ctx, sector); err != nil {
		return nil, apperrors.MapError(err)
	}
	return sector, nil
}

// UpdateSector applies a patch.
func (s *OrgService) UpdateSector(ctx context.Context, id string, patch SectorPatch) (*domain.Sector, error) {
	sector, err := s.GetSector(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if sector.Name, err = orgName(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Description != nil {
		sector.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.IsActive != nil {
		sector.IsActive = *patch.IsActive
	}
	if err := s.sectors.Update(ctx, sector); err != nil {
		return nil, apperrors.MapError(err)
	}
	return sector, nil
}

// GetSector loads one sector.
func (s *OrgService) GetSector(ctx context.Context, id string) (*domain.Sector, error) {
	sector, err := s.sectors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("sector", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return sector, nil
}

// ListSectors returns sectors, optionally including inactive ones.
func (s *OrgService) ListSectors(ctx context.Context, includeInactive bool) ([]domain.Sector, error) {
	sectors, err := s.sectors.List(ctx, !includeInactive)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return sectors, nil
}

// CreatePosition creates a position, optionally bound to an active sector.
func (s *OrgService) CreatePosition(ctx context.Context, input PositionInput) (*domain.Position, error) {
	name, err := orgName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveSector(ctx, input.SectorID); err != nil {
		return nil, err
	}
	position := &domain.Position{
		SectorID:    input.SectorID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		IsActive:    true,
	}
	if err := s.positions.Create(ctx, position); err != nil {
		return nil, apperrors.MapError(err)
	}
	return position, nil
}

// UpdatePosition applies a patch.
func (s *OrgService) UpdatePosition(ctx context.Context, id string, patch PositionPatch) (*domain.Position, error) {
	position, err := s.GetPosition(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.SectorID != nil {
		if err := s.requireActiveSector(ctx, patch.SectorID); err != nil {
			return nil, err
		}
		position.SectorID = patch.SectorID
	}
	if patch.Name != nil {
		if position.Name, err = orgName(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Description != nil {
		position.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.IsActive != nil {
		position.IsActive = *patch.IsActive
	}
	if err := s.positions.Update(ctx, position); err != nil {
		return nil, apperrors.MapError(err)
	}
	return position, nil
}

// GetPosition loads one position. It is the PositionLookup used by UserService.
func (s *OrgService) GetPosition(ctx context.Context, id string) (*domain.Position, error) {
	position, err := s.positions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("position", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return position, nil
}

// ListPositions returns positions, optionally of one sector.
func (s *OrgService) ListPositions(ctx context.Context, sectorID *string) ([]domain.Position, error) {
	positions, err := s.positions.List(ctx, sectorID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return positions, nil
}

func (s *OrgService) requireActiveSector(ctx context.Context, sectorID *string) error {
	if sectorID == nil {
		return nil
	}
	sector, err := s.sectors.GetByID(ctx, *sectorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("sector does not exist", map[string]any{"sector_id": *sectorID})
		}
		return apperrors.MapError(err)
	}
	if !sector.IsActive {
		return apperrors.NewValidationError("sector inactive", map[string]any{"sector_id": *sectorID})
	}
	return nil
}

func orgName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", apperrors.NewValidationError("name is required", nil)
	}
	if len(name) > maxOrgNameLength {
		return "", apperrors.NewValidationError("name too long", map[string]any{"max": maxOrgNameLength})
	}
	return name, nil
}

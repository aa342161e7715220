package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func TestSectorLifecycle(t *testing.T) {
	store := newMemStore()
	svc := NewOrgService(OrgDependencies{SectorRepo: store.Sectors(), PositionRepo: store.Positions()})
	ctx := context.Background()

	sector, err := svc.CreateSector(ctx, SectorInput{Name: "  Infrastructure ", Description: "servers"})
	require.NoError(t, err)
	assert.Equal(t, "Infrastructure", sector.Name)
	assert.True(t, sector.IsActive)

	inactive := false
	_, err = svc.UpdateSector(ctx, sector.ID, SectorPatch{IsActive: &inactive})
	require.NoError(t, err)

	active, err := svc.ListSectors(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.ListSectors(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.GetSector(ctx, "sector-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSectorNameValidation(t *testing.T) {
	store := newMemStore()
	svc := NewOrgService(OrgDependencies{SectorRepo: store.Sectors(), PositionRepo: store.Positions()})

	_, err := svc.CreateSector(context.Background(), SectorInput{Name: " "})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.CreateSector(context.Background(), SectorInput{Name: strings.Repeat("x", 121)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPositionRequiresActiveSector(t *testing.T) {
	store := newMemStore()
	svc := NewOrgService(OrgDependencies{SectorRepo: store.Sectors(), PositionRepo: store.Positions()})
	ctx := context.Background()
	sector := store.seedSector("Finance")
	closed := store.seedSector("Closed")
	closed.IsActive = false
	store.sectors[closed.ID] = *closed
	missing := "sector-missing"

	position, err := svc.CreatePosition(ctx, PositionInput{SectorID: &sector.ID, Name: "Analyst"})
	require.NoError(t, err)
	assert.True(t, position.IsActive)

	_, err = svc.CreatePosition(ctx, PositionInput{SectorID: &closed.ID, Name: "Clerk"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.UpdatePosition(ctx, position.ID, PositionPatch{SectorID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	listed, err := svc.ListPositions(ctx, &sector.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, position.ID, listed[0].ID)

	_, err = svc.GetPosition(ctx, "pos-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
	"github.com/spec-kit/helpdesk/pkg/util/respond"
)

// OrgHandler exposes sectors and positions.
type OrgHandler struct {
	org OrgService
}

// NewOrgHandler constructs handler.
func NewOrgHandler(org OrgService) *OrgHandler {
	return &OrgHandler{org: org}
}

// CreateSector handles POST /sectors.
func (h *OrgHandler) CreateSector(c *fiber.Ctx) error {
	var req dto.SectorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	sector, err := h.org.CreateSector(c.UserContext(), service.SectorInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return respond.Created(c, "sector created", sectorResponse(sector))
}

// UpdateSector handles PATCH /sectors/:id.
func (h *OrgHandler) UpdateSector(c *fiber.Ctx) error {
	id, err := pathID(c, "sector")
	if err != nil {
		return err
	}
	var req dto.SectorPatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	sector, err := h.org.UpdateSector(c.UserContext(), id, service.SectorPatch{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return respond.OK(c, "sector updated", sectorResponse(sector))
}

// ListSectors handles GET /sectors?includeInactive=true.
func (h *OrgHandler) ListSectors(c *fiber.Ctx) error {
	sectors, err := h.org.ListSectors(c.UserContext(), c.QueryBool("includeInactive", false))
	if err != nil {
		return err
	}
	out := make([]dto.SectorResponse, 0, len(sectors))
	for i := range sectors {
		out = append(out, sectorResponse(&sectors[i]))
	}
	return respond.OK(c, "sectors", out)
}

// CreatePosition handles POST /positions.
func (h *OrgHandler) CreatePosition(c *fiber.Ctx) error {
	var req dto.PositionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	position, err := h.org.CreatePosition(c.UserContext(), service.PositionInput{
		SectorID:    req.SectorID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return respond.Created(c, "position created", positionResponse(position))
}

// UpdatePosition handles PATCH /positions/:id.
func (h *OrgHandler) UpdatePosition(c *fiber.Ctx) error {
	id, err := pathID(c, "position")
	if err != nil {
		return err
	}
	var req dto.PositionPatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	position, err := h.org.UpdatePosition(c.UserContext(), id, service.PositionPatch{
		SectorID:    req.SectorID,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return respond.OK(c, "position updated", positionResponse(position))
}

// ListPositions handles GET /positions?sectorId=.
func (h *OrgHandler) ListPositions(c *fiber.Ctx) error {
	var sectorID *string
	if raw := c.Query("sectorId"); raw != "" {
		if _, err := uuid.Parse(raw); err != nil {
			return apperrors.NewValidationError("invalid sectorId", map[string]any{"sectorId": raw})
		}
		sectorID = &raw
	}
	positions, err := h.org.ListPositions(c.UserContext(), sectorID)
	if err != nil {
		return err
	}
	out := make([]dto.PositionResponse, 0, len(positions))
	for i := range positions {
		out = append(out, positionResponse(&positions[i]))
	}
	return respond.OK(c, "positions", out)
}

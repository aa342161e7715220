package dto

import "time"

// SectorRequest creates a sector.
type SectorRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SectorPatchRequest updates a sector.
type SectorPatchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// SectorResponse describes a sector.
type SectorResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PositionRequest creates a position.
type PositionRequest struct {
	SectorID    *string `json:"sectorId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
}

// PositionPatchRequest updates a position.
type PositionPatchRequest struct {
	SectorID    *string `json:"sectorId"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// PositionResponse describes a position.
type PositionResponse struct {
	ID          string    `json:"id"`
	SectorID    *string   `json:"sectorId,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

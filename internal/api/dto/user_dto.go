package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateUserRequest payload for POST /users.
type CreateUserRequest struct {
	Register         string      `json:"register"`
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	Password         string      `json:"password"`
	PositionID       string      `json:"positionId"`
	SectorID         *string     `json:"sectorId"`
	Role             domain.Role `json:"role"`
	CanCreateTicket  *bool       `json:"canCreateTicket"`
	CanResolveTicket *bool       `json:"canResolveTicket"`
}

// UpdateUserRequest payload for PATCH /users/:id. Absent fields are left unchanged.
type UpdateUserRequest struct {
	Name             *string      `json:"name"`
	Email            *string      `json:"email"`
	PositionID       *string      `json:"positionId"`
	SectorID         *string      `json:"sectorId"`
	Role             *domain.Role `json:"role"`
	IsBanned         *bool        `json:"isBanned"`
	CanCreateTicket  *bool        `json:"canCreateTicket"`
	CanResolveTicket *bool        `json:"canResolveTicket"`
}

// UserResponse is the public view of an identity. The hash never leaves the service.
type UserResponse struct {
	ID               string      `json:"id"`
	Register         string      `json:"register"`
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	PositionID       string      `json:"positionId"`
	Position         string      `json:"position,omitempty"`
	SectorID         *string     `json:"sectorId,omitempty"`
	Sector           *string     `json:"sector,omitempty"`
	Role             domain.Role `json:"role,omitempty"`
	IsBanned         bool        `json:"isBanned"`
	CanCreateTicket  bool        `json:"canCreateTicket"`
	CanResolveTicket bool        `json:"canResolveTicket"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

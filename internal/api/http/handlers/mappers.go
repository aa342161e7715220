package handlers

import (
	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
)

func userResponse(user *domain.User, account *domain.Account) dto.UserResponse {
	resp := dto.UserResponse{
		ID:               user.ID,
		Register:         user.Register,
		Name:             user.Name,
		Email:            user.Email,
		PositionID:       user.PositionID,
		Position:         user.PositionName,
		SectorID:         user.SectorID,
		Sector:           user.SectorName,
		IsBanned:         user.IsBanned,
		CanCreateTicket:  user.CanCreateTicket,
		CanResolveTicket: user.CanResolveTicket,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
	if account != nil {
		resp.Role = account.Role
		resp.IsBanned = account.IsBanned
		resp.CanCreateTicket = account.CanCreateTicket
		resp.CanResolveTicket = account.CanResolveTicket
	}
	return resp
}

func sessionResponse(session *domain.Session) dto.SessionResponse {
	if session == nil {
		return dto.SessionResponse{}
	}
	return dto.SessionResponse{
		ID:        session.ID,
		ExpiresAt: session.ExpiresAt,
		IsActive:  session.IsActive,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

func sectorResponse(sector *domain.Sector) dto.SectorResponse {
	return dto.SectorResponse{
		ID:          sector.ID,
		Name:        sector.Name,
		Description: sector.Description,
		IsActive:    sector.IsActive,
		CreatedAt:   sector.CreatedAt,
		UpdatedAt:   sector.UpdatedAt,
	}
}

func positionResponse(position *domain.Position) dto.PositionResponse {
	return dto.PositionResponse{
		ID:          position.ID,
		SectorID:    position.SectorID,
		Name:        position.Name,
		Description: position.Description,
		IsActive:    position.IsActive,
		CreatedAt:   position.CreatedAt,
		UpdatedAt:   position.UpdatedAt,
	}
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:          ticket.ID,
		Code:        ticket.Code,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		OwnerID:     ticket.OwnerID,
		ResolverID:  ticket.ResolverID,
		SectorID:    ticket.SectorID,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
		ClosedAt:    ticket.ClosedAt,
	}
}

func ticketEventResponse(event *domain.TicketEvent) dto.TicketEventResponse {
	return dto.TicketEventResponse{
		ID:         event.ID,
		Kind:       event.Kind,
		ActorID:    event.ActorID,
		FromStatus: event.FromStatus,
		ToStatus:   event.ToStatus,
		Note:       event.Note,
		CreatedAt:  event.CreatedAt,
	}
}

package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/pkg/util/respond"
)

const defaultTicketPageSize = 20

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	_, caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Create(c.UserContext(), caller, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		SectorID:    req.SectorID,
	})
	if err != nil {
		return err
	}
	return respond.Created(c, "ticket created", ticketResponse(ticket))
}

// List handles GET /tickets?status=&priority=&q=&limit=&offset=.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	_, caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.List(c.UserContext(), caller, parseTicketQuery(c))
	if err != nil {
		return err
	}
	out := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, ticketResponse(&tickets[i]))
	}
	return respond.OK(c, "tickets", out)
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "ticket")
	if err != nil {
		return err
	}
	_, caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.Get(c.UserContext(), caller, id)
	if err != nil {
		return err
	}
	return respond.OK(c, "ticket", ticketResponse(ticket))
}

// Events handles GET /tickets/:id/events.
func (h *TicketsHandler) Events(c *fiber.Ctx) error {
	id, err := pathID(c, "ticket")
	if err != nil {
		return err
	}
	_, caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	list, err := h.tickets.Events(c.UserContext(), caller, id)
	if err != nil {
		return err
	}
	out := make([]dto.TicketEventResponse, 0, len(list))
	for i := range list {
		out = append(out, ticketEventResponse(&list[i]))
	}
	return respond.OK(c, "ticket events", out)
}

// ChangeStatus handles POST /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	id, err := pathID(c, "ticket")
	if err != nil {
		return err
	}
	_, caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	var req dto.ChangeStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.ChangeStatus(c.UserContext(), caller, id, req.Status, req.Note)
	if err != nil {
		return err
	}
	return respond.OK(c, "ticket status changed", ticketResponse(ticket))
}

// Assign handles POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	id, err := pathID(c, "ticket")
	if err != nil {
		return err
	}
	_, caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Assign(c.UserContext(), caller, id, req.ResolverID)
	if err != nil {
		return err
	}
	return respond.OK(c, "ticket assigned", ticketResponse(ticket))
}

// Comment handles POST /tickets/:id/comments.
func (h *TicketsHandler) Comment(c *fiber.Ctx) error {
	id, err := pathID(c, "ticket")
	if err != nil {
		return err
	}
	_, caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	event, err := h.tickets.Comment(c.UserContext(), caller, id, req.Body)
	if err != nil {
		return err
	}
	return respond.Created(c, "comment added", ticketEventResponse(event))
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{
		Limit:  queryInt(c, "limit", defaultTicketPageSize),
		Offset: queryInt(c, "offset", 0),
	}
	for _, part := range queryList(c, "status") {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.ToLower(part)))
	}
	for _, part := range queryList(c, "priority") {
		filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.ToLower(part)))
	}
	if term := strings.TrimSpace(c.Query("q")); term != "" {
		filter.SearchTerm = &term
	}
	return filter
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/pkg/util/respond"
)

const defaultUserPageSize = 20

// UsersHandler exposes identity administration.
type UsersHandler struct {
	users UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	identity, err := h.users.Create(c.UserContext(), service.CreateUserInput{
		Register:         req.Register,
		Name:             req.Name,
		Email:            req.Email,
		Password:         req.Password,
		PositionID:       req.PositionID,
		SectorID:         req.SectorID,
		Role:             req.Role,
		CanCreateTicket:  req.CanCreateTicket,
		CanResolveTicket: req.CanResolveTicket,
	})
	if err != nil {
		return err
	}
	return respond.Created(c, "user created", userResponse(identity.User, identity.Account))
}

// List handles GET /users?limit=&offset=.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext(), queryInt(c, "limit", defaultUserPageSize), queryInt(c, "offset", 0))
	if err != nil {
		return err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i], nil))
	}
	return respond.OK(c, "users", out)
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "user")
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, "user", userResponse(user, nil))
}

// Update handles PATCH /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "user")
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	identity, err := h.users.Update(c.UserContext(), id, service.UpdateUserInput{
		Name:             req.Name,
		Email:            req.Email,
		PositionID:       req.PositionID,
		SectorID:         req.SectorID,
		Role:             req.Role,
		IsBanned:         req.IsBanned,
		CanCreateTicket:  req.CanCreateTicket,
		CanResolveTicket: req.CanResolveTicket,
	})
	if err != nil {
		return err
	}
	return respond.OK(c, "user updated", userResponse(identity.User, identity.Account))
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "user")
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return respond.NoContent(c)
}

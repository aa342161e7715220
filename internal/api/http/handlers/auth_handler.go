package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/pkg/util/respond"
)

// AuthHandler exposes login, logout, profile and the caller's session list.
type AuthHandler struct {
	sessions SessionService
	users    UserService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(sessions SessionService, users UserService) *AuthHandler {
	return &AuthHandler{sessions: sessions, users: users}
}

// Login handles POST /auth/login and POST /sessions.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.sessions.Login(c.UserContext(), service.LoginInput{
		Email:    req.Email,
		Register: req.Register,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return respond.OK(c, "logged in", dto.LoginResponse{
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
		Session:     sessionResponse(result.Session),
		User:        userResponse(result.User, result.Account),
	})
}

// Logout handles POST /auth/logout and POST /sessions/close.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	_, caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Logout(c.UserContext(), caller.AccountID, caller.SessionID); err != nil {
		return err
	}
	return respond.NoContent(c)
}

// Profile handles GET /auth/profile.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	principal, caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	identity, err := h.users.Profile(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return respond.OK(c, "profile", dto.ProfileResponse{
		User:    userResponse(identity.User, identity.Account),
		Session: sessionResponse(principal.Session),
	})
}

// Sessions handles GET /sessions?page=&index=&order=.
func (h *AuthHandler) Sessions(c *fiber.Ctx) error {
	_, caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	list, err := h.sessions.FindAll(c.UserContext(), caller, service.SessionQuery{
		Page:  queryInt(c, "page", 0),
		Index: queryInt(c, "index", 0),
		Order: c.Query("order"),
	})
	if err != nil {
		return err
	}
	return respond.OK(c, "sessions", sessionResponses(list))
}

func sessionResponses(list []domain.Session) []dto.SessionResponse {
	out := make([]dto.SessionResponse, 0, len(list))
	for i := range list {
		out = append(out, sessionResponse(&list[i]))
	}
	return out
}

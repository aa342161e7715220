package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// currentCaller builds the service caller from the principal the guard attached. Role and
// flags come from the reloaded account, not from the token snapshot.
func currentCaller(c *fiber.Ctx) (*auth.Principal, service.Caller, error) {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return nil, service.Caller{}, err
	}
	caller := service.Caller{
		UserID:           principal.UserID(),
		AccountID:        principal.AccountID(),
		Role:             principal.Role,
		CanCreateTicket:  principal.Account.CanCreateTicket,
		CanResolveTicket: principal.Account.CanResolveTicket,
	}
	if principal.Session != nil {
		caller.SessionID = principal.Session.ID
	}
	return principal, caller, nil
}

// pathID reads the :id route parameter. Ids are UUIDs, so anything else cannot name a row.
func pathID(c *fiber.Ctx, resource string) (string, error) {
	raw := c.Params("id")
	if _, err := uuid.Parse(raw); err != nil {
		return "", apperrors.NewNotFound(resource, map[string]any{"id": raw})
	}
	return raw, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	val := c.Query(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func queryList(c *fiber.Ctx, key string) []string {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

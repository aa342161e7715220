package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Users    *handlers.UsersHandler
	Org      *handlers.OrgHandler
	Tickets  *handlers.TicketsHandler
	Guard    *auth.Guard
	Policies *auth.PolicyTable
	Throttle fiber.Handler
	Metrics  prometheus.Gatherer
}

// routes registers each endpoint together with its access policy, so the guard always finds
// the policy of the route it runs on.
type routes struct {
	app      *fiber.App
	guard    fiber.Handler
	policies *auth.PolicyTable
}

func (r routes) add(method, path string, policy auth.RoutePolicy, chain ...fiber.Handler) {
	r.policies.Register(method, path, policy)
	r.app.Add(method, path, append([]fiber.Handler{r.guard}, chain...)...)
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	throttle := cfg.Throttle
	if throttle == nil {
		throttle = func(c *fiber.Ctx) error { return c.Next() }
	}
	r := routes{app: app, guard: cfg.Guard.Handle, policies: cfg.Policies}

	public := auth.Public()
	authenticated := auth.Authenticated()
	supervisors := auth.AllowRoles(domain.RoleAdmin, domain.RoleManager)
	admins := auth.AllowRoles(domain.RoleAdmin)
	ticketWriters := auth.RoutePolicy{
		Allow: []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleUser},
		Deny:  []domain.Role{domain.RoleGuest, domain.RoleViewer},
	}
	commenters := auth.RoutePolicy{
		Allow: []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleUser, domain.RoleViewer},
		Deny:  []domain.Role{domain.RoleGuest},
	}

	r.add(fiber.MethodGet, "/health/live", public, cfg.Health.Live)
	r.add(fiber.MethodGet, "/health/ready", public, cfg.Health.Ready)
	if cfg.Metrics != nil {
		r.add(fiber.MethodGet, "/metrics", public, adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics, promhttp.HandlerOpts{})))
	}

	r.add(fiber.MethodPost, "/auth/login", public, throttle, cfg.Auth.Login)
	r.add(fiber.MethodPost, "/auth/logout", authenticated.AllowClosedSession(), cfg.Auth.Logout)
	r.add(fiber.MethodGet, "/auth/profile", authenticated, cfg.Auth.Profile)

	r.add(fiber.MethodGet, "/sessions", supervisors, cfg.Auth.Sessions)
	r.add(fiber.MethodPost, "/sessions", public, throttle, cfg.Auth.Login)
	r.add(fiber.MethodPost, "/sessions/close", supervisors.AllowClosedSession(), cfg.Auth.Logout)

	r.add(fiber.MethodPost, "/users", admins, cfg.Users.Create)
	r.add(fiber.MethodGet, "/users", supervisors, cfg.Users.List)
	r.add(fiber.MethodGet, "/users/:id", supervisors, cfg.Users.Get)
	r.add(fiber.MethodPatch, "/users/:id", admins, cfg.Users.Update)
	r.add(fiber.MethodDelete, "/users/:id", admins, cfg.Users.Delete)

	r.add(fiber.MethodPost, "/sectors", admins, cfg.Org.CreateSector)
	r.add(fiber.MethodGet, "/sectors", authenticated, cfg.Org.ListSectors)
	r.add(fiber.MethodPatch, "/sectors/:id", admins, cfg.Org.UpdateSector)
	r.add(fiber.MethodPost, "/positions", admins, cfg.Org.CreatePosition)
	r.add(fiber.MethodGet, "/positions", authenticated, cfg.Org.ListPositions)
	r.add(fiber.MethodPatch, "/positions/:id", admins, cfg.Org.UpdatePosition)

	r.add(fiber.MethodPost, "/tickets", ticketWriters, cfg.Tickets.Create)
	r.add(fiber.MethodGet, "/tickets", authenticated, cfg.Tickets.List)
	r.add(fiber.MethodGet, "/tickets/:id", authenticated, cfg.Tickets.Get)
	r.add(fiber.MethodGet, "/tickets/:id/events", authenticated, cfg.Tickets.Events)
	r.add(fiber.MethodPost, "/tickets/:id/status", ticketWriters, cfg.Tickets.ChangeStatus)
	r.add(fiber.MethodPost, "/tickets/:id/assign", supervisors, cfg.Tickets.Assign)
	r.add(fiber.MethodPost, "/tickets/:id/comments", commenters, cfg.Tickets.Comment)
}

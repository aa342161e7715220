package auth

import (
	"strings"
	"sync"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// RoutePolicy is the declarative access metadata of one endpoint.
type RoutePolicy struct {
	Public bool
	Allow  []domain.Role
	Deny   []domain.Role
	// ClosedSessionOK lets a token whose session is no longer valid through to the handler.
	// Logout uses it so the service reports the session state itself.
	ClosedSessionOK bool
}

// Public marks an endpoint as reachable without a token.
func Public() RoutePolicy {
	return RoutePolicy{Public: true}
}

// Authenticated requires a valid session and admits every role.
func Authenticated() RoutePolicy {
	return RoutePolicy{}
}

// AllowRoles admits only the listed roles.
func AllowRoles(roles ...domain.Role) RoutePolicy {
	return RoutePolicy{Allow: roles}
}

// DenyRoles rejects the listed roles.
func DenyRoles(roles ...domain.Role) RoutePolicy {
	return RoutePolicy{Deny: roles}
}

// AllowClosedSession returns a copy of p that admits tokens of closed or expired sessions.
func (p RoutePolicy) AllowClosedSession() RoutePolicy {
	p.ClosedSessionOK = true
	return p
}

// PolicyTable maps a route (method and path pattern) to its policy.
// It is written while routes are registered and read by the guard on every request.
type PolicyTable struct {
	mu       sync.RWMutex
	policies map[string]RoutePolicy
}

// NewPolicyTable creates an empty table.
func NewPolicyTable() *PolicyTable {
	return &PolicyTable{policies: make(map[string]RoutePolicy)}
}

// Register records the policy for method and path.
func (t *PolicyTable) Register(method, path string, policy RoutePolicy) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.policies[routeKey(method, path)] = policy
}

// Lookup returns the policy for method and path. Unregistered routes get Authenticated.
func (t *PolicyTable) Lookup(method, path string) RoutePolicy {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if policy, ok := t.policies[routeKey(method, path)]; ok {
		return policy
	}
	return Authenticated()
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

package domain

import "strings"

// Role enumerates authorization levels carried by an account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
	RoleGuest   Role = "guest"
	RoleViewer  Role = "viewer"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:   {},
	RoleManager: {},
	RoleUser:    {},
	RoleGuest:   {},
	RoleViewer:  {},
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := knownRoles[r]
	return ok
}

// IsSupervisor is true for roles that see every ticket and session list.
func (r Role) IsSupervisor() bool {
	return r == RoleAdmin || r == RoleManager
}

// ParseRole normalizes user input into a Role.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	return role, role.Valid()
}

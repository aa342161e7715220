package auth

import (
	"github.com/spec-kit/helpdesk/internal/domain"
)

// Decision is the outcome of a role policy evaluation.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionDenyListed
	DecisionNotAllowed
)

// EvaluateRoles applies an endpoint's allow and deny lists to role.
// The allow list wins over the deny list, and a non-empty policy denies every role it does not allow.
func EvaluateRoles(role domain.Role, allow, deny []domain.Role) Decision {
	if len(allow) == 0 && len(deny) == 0 {
		return DecisionAllow
	}
	if containsRole(allow, role) {
		return DecisionAllow
	}
	if containsRole(deny, role) {
		return DecisionDenyListed
	}
	return DecisionNotAllowed
}

func containsRole(roles []domain.Role, role domain.Role) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}

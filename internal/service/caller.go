package service

import "github.com/spec-kit/helpdesk/internal/domain"

// Caller is the authenticated identity a service call acts for.
type Caller struct {
	UserID           string
	AccountID        string
	SessionID        string
	Role             domain.Role
	CanCreateTicket  bool
	CanResolveTicket bool
}

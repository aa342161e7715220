package domain

import "time"

// Session is one issued login. It is never hard-deleted; closing flips IsActive.
type Session struct {
	ID        string
	AccountID string
	ExpiresAt time.Time
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// IsValid reports whether the session is active and strictly before its expiry.
func (s *Session) IsValid(now time.Time) bool {
	return s != nil && s.IsActive && s.ExpiresAt.After(now)
}

package domain

import "time"

// Account is the credential of a user: password hash, role and the authoritative permission flags.
type Account struct {
	ID               string
	UserID           string
	Hash             string
	Role             Role
	IsBanned         bool
	CanCreateTicket  bool
	CanResolveTicket bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

// Identity pairs a user with its account.
type Identity struct {
	User    *User
	Account *Account
}

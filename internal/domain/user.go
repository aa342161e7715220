package domain

import "time"

// MaxRegisterLength bounds the business identifier of a user.
const MaxRegisterLength = 10

// User is the identity record of a person. Flags are read from the account, which owns them.
type User struct {
	ID               string
	Register         string
	Name             string
	Email            string
	PositionID       string
	PositionName     string
	SectorID         *string
	SectorName       *string
	IsBanned         bool
	CanCreateTicket  bool
	CanResolveTicket bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

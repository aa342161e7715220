package domain

import "time"

// Position is a job position, optionally bound to a sector.
type Position struct {
	ID          string
	SectorID    *string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

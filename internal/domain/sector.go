package domain

import "time"

// Sector represents a high-level organizational unit.
type Sector struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

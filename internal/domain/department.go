package domain

import "time"

// Department is the organizational unit a ticket is requested for.
type Department struct {
	ID        string
	Name      string
	HeadID    *string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

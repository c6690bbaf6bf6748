package domain

import "time"

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeStatus       TicketChangeType = "STATUS_CHANGE"
	ChangeTypeAssignment   TicketChangeType = "ASSIGNMENT_CHANGE"
	ChangeTypeResubmission TicketChangeType = "RESUBMISSION"
)

// TicketHistory is an immutable audit trail entry. ActorRole records the
// single role tag the actor committed under.
type TicketHistory struct {
	ID         string
	TicketID   string
	ActorID    *string
	ActorRole  Role
	ChangeType TicketChangeType
	Remark     string
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}

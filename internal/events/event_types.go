package events

import (
	"time"

	"github.com/spec-kit/request-workflow/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketResubmitted   EventType = "ticket_resubmitted"
	EventProgrammerAssigned  EventType = "programmer_assigned"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	EmployeeID string      `json:"employee_id"`
	Role       domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	DepartmentID   string                `json:"department_id"`
	RequestType    domain.RequestType    `json:"request_type"`
	HierarchyLevel domain.HierarchyLevel `json:"hierarchy_level"`
	ParentTicketID *string               `json:"parent_ticket_id,omitempty"`
	ProjectName    string                `json:"project_name"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	Action    domain.TicketAction `json:"action"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Remark    string              `json:"remark,omitempty"`
}

// TicketResubmittedPayload payload.
type TicketResubmittedPayload struct {
	Remark      string             `json:"remark,omitempty"`
	RequestType domain.RequestType `json:"request_type"`
}

// ProgrammerAssignedPayload payload.
type ProgrammerAssignedPayload struct {
	AssigneeID string `json:"assignee_id"`
	Remark     string `json:"remark,omitempty"`
}

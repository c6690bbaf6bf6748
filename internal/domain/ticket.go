package domain

import (
	"errors"
	"time"
)

// TicketStatus enumerates lifecycle states for service requests.
type TicketStatus string

const (
	TicketStatusOpen              TicketStatus = "OPEN"
	TicketStatusAssessed          TicketStatus = "ASSESSED"
	TicketStatusReturned          TicketStatus = "RETURNED"
	TicketStatusPendingODApproval TicketStatus = "PENDING_OD_APPROVAL"
	TicketStatusApproved          TicketStatus = "APPROVED"
	TicketStatusDisapproved       TicketStatus = "DISAPPROVED"
	TicketStatusCancelled         TicketStatus = "CANCELLED"
)

// IsTerminal reports whether no further lifecycle transition is possible.
// APPROVED still accepts programmer assignment as a side effect but is
// terminal for approval purposes.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusDisapproved || s == TicketStatusCancelled
}

// RequestType classifies what kind of work a ticket asks for.
type RequestType string

const (
	RequestTypeRequest     RequestType = "REQUEST"
	RequestTypeAdjustment  RequestType = "ADJUSTMENT"
	RequestTypeEnhancement RequestType = "ENHANCEMENT"
	RequestTypeTesting     RequestType = "TESTING"
)

// HierarchyLevel marks a ticket as an original request or a follow-up.
type HierarchyLevel string

const (
	HierarchyParent HierarchyLevel = "PARENT"
	HierarchyChild  HierarchyLevel = "CHILD"
)

// TicketAction identifies a lifecycle transition or side-channel operation.
type TicketAction string

const (
	ActionAssess           TicketAction = "assess"
	ActionAssessReturn     TicketAction = "assess_return"
	ActionApproveDH        TicketAction = "approve_dh"
	ActionApproveOD        TicketAction = "approve_od"
	ActionDisapprove       TicketAction = "disapprove"
	ActionResubmit         TicketAction = "resubmit"
	ActionCancel           TicketAction = "cancel"
	ActionAssignProgrammer TicketAction = "assign_programmer"
)

// Ticket is the aggregate for service requests moving through the
// multi-party approval lifecycle.
type Ticket struct {
	ID                   string
	ExternalKey          string
	RequestorID          string
	DepartmentID         string
	AssignedProgrammerID *string
	ProjectName          string
	Details              string
	Status               TicketStatus
	RequestType          RequestType
	HierarchyLevel       HierarchyLevel
	ParentTicketID       *string
	AttachmentIDs        []string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	ClosedAt             *time.Time
}

// Validate enforces the parent/child invariants: ParentTicketID is set if
// and only if the ticket is a CHILD, and a CHILD must be an adjustment or
// enhancement follow-up.
func (t *Ticket) Validate() error {
	switch t.HierarchyLevel {
	case HierarchyChild:
		if t.ParentTicketID == nil || *t.ParentTicketID == "" {
			return errors.New("child ticket requires parent ticket id")
		}
		if t.RequestType != RequestTypeAdjustment && t.RequestType != RequestTypeEnhancement {
			return errors.New("child ticket must be an adjustment or enhancement")
		}
	case HierarchyParent:
		if t.ParentTicketID != nil {
			return errors.New("parent ticket must not reference a parent")
		}
	default:
		return errors.New("unknown hierarchy level")
	}
	return nil
}

// TicketEdits carries the fields a requestor may change while resubmitting
// a returned ticket. Nil fields are left untouched.
type TicketEdits struct {
	ProjectName *string
	Details     *string
	RequestType *RequestType
}

// Empty reports whether no field would change.
func (e TicketEdits) Empty() bool {
	return e.ProjectName == nil && e.Details == nil && e.RequestType == nil
}

package workflow

import "github.com/spec-kit/request-workflow/internal/domain"

// DashboardActionKind is the single most relevant action for a ticket in
// a multi-ticket list.
type DashboardActionKind string

const (
	DashboardAssign  DashboardActionKind = "ASSIGN"
	DashboardAssess  DashboardActionKind = "ASSESS"
	DashboardApprove DashboardActionKind = "APPROVE"
	DashboardView    DashboardActionKind = "VIEW"
)

// DashboardPriority groups rows for dashboard sorting. It is a display
// concept only, not part of the workflow.
type DashboardPriority string

const (
	PriorityUrgent DashboardPriority = "urgent"
	PriorityHigh   DashboardPriority = "high"
	PriorityLow    DashboardPriority = "low"
)

// DashboardAction is the selected action plus its display label and
// grouping priority.
type DashboardAction struct {
	Kind     DashboardActionKind `json:"kind"`
	Label    string              `json:"label"`
	Priority DashboardPriority   `json:"priority"`
}

// SelectDashboardAction picks the action shown for one ticket row. The
// first matching role in the fixed priority order wins; a viewer holding
// several roles never evaluates lower-priority rules. Pure.
func SelectDashboardAction(ticket *domain.Ticket, roles domain.RoleSet, viewerID string) DashboardAction {
	for _, role := range domain.RolePriority {
		if !roles.Has(role) {
			continue
		}
		switch role {
		case domain.RoleMISSupervisor:
			return supervisorAction(ticket)
		case domain.RoleProgrammer:
			// Self-requested tickets are never self-assessable.
			if ticket.RequestorID == viewerID {
				return viewAction()
			}
			if ticket.Status == domain.TicketStatusOpen {
				return DashboardAction{Kind: DashboardAssess, Label: "Assess", Priority: PriorityHigh}
			}
			return viewAction()
		case domain.RoleDepartmentHead:
			if ticket.Status == domain.TicketStatusAssessed {
				return DashboardAction{Kind: DashboardApprove, Label: "Approve", Priority: PriorityHigh}
			}
			return viewAction()
		case domain.RoleOD:
			if ticket.Status == domain.TicketStatusPendingODApproval {
				return DashboardAction{Kind: DashboardApprove, Label: "Approve", Priority: PriorityHigh}
			}
			return viewAction()
		case domain.RoleRequestor:
			return viewAction()
		}
	}
	return viewAction()
}

func supervisorAction(ticket *domain.Ticket) DashboardAction {
	if ticket.Status == domain.TicketStatusApproved {
		return DashboardAction{Kind: DashboardAssign, Label: "Assign", Priority: PriorityHigh}
	}
	if ticket.Status == domain.TicketStatusReturned {
		return DashboardAction{Kind: DashboardAssess, Label: "Re-assess", Priority: PriorityUrgent}
	}
	if ticket.AssignedProgrammerID == nil || *ticket.AssignedProgrammerID == "" {
		return DashboardAction{Kind: DashboardAssess, Label: "Assess", Priority: PriorityHigh}
	}
	return viewAction()
}

func viewAction() DashboardAction {
	return DashboardAction{Kind: DashboardView, Label: "View", Priority: PriorityLow}
}

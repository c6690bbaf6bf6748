package workflow

import (
	"testing"

	"github.com/spec-kit/request-workflow/internal/domain"
)

func ticketWith(status domain.TicketStatus) *domain.Ticket {
	return &domain.Ticket{
		ID:          "T-1",
		RequestorID: "E1",
		Status:      status,
		RequestType: domain.RequestTypeRequest,
	}
}

func TestSelectDashboardAction(t *testing.T) {
	assigned := "P9"

	cases := []struct {
		name     string
		ticket   *domain.Ticket
		roles    domain.RoleSet
		viewerID string
		want     DashboardAction
	}{
		{
			name:     "supervisor sees assign on approved",
			ticket:   ticketWith(domain.TicketStatusApproved),
			roles:    roles(domain.RoleMISSupervisor),
			viewerID: "S1",
			want:     DashboardAction{Kind: DashboardAssign, Label: "Assign", Priority: PriorityHigh},
		},
		{
			name:     "supervisor sees re-assess on returned",
			ticket:   ticketWith(domain.TicketStatusReturned),
			roles:    roles(domain.RoleMISSupervisor),
			viewerID: "S1",
			want:     DashboardAction{Kind: DashboardAssess, Label: "Re-assess", Priority: PriorityUrgent},
		},
		{
			name:     "supervisor sees assess while unassigned",
			ticket:   ticketWith(domain.TicketStatusOpen),
			roles:    roles(domain.RoleMISSupervisor),
			viewerID: "S1",
			want:     DashboardAction{Kind: DashboardAssess, Label: "Assess", Priority: PriorityHigh},
		},
		{
			name: "supervisor sees view once assigned",
			ticket: func() *domain.Ticket {
				tk := ticketWith(domain.TicketStatusOpen)
				tk.AssignedProgrammerID = &assigned
				return tk
			}(),
			roles:    roles(domain.RoleMISSupervisor),
			viewerID: "S1",
			want:     DashboardAction{Kind: DashboardView, Label: "View", Priority: PriorityLow},
		},
		{
			name:     "supervisor outranks programmer",
			ticket:   ticketWith(domain.TicketStatusApproved),
			roles:    roles(domain.RoleMISSupervisor, domain.RoleProgrammer),
			viewerID: "S1",
			want:     DashboardAction{Kind: DashboardAssign, Label: "Assign", Priority: PriorityHigh},
		},
		{
			name:     "programmer cannot assess own ticket",
			ticket:   ticketWith(domain.TicketStatusOpen),
			roles:    roles(domain.RoleProgrammer),
			viewerID: "E1",
			want:     DashboardAction{Kind: DashboardView, Label: "View", Priority: PriorityLow},
		},
		{
			name:     "programmer assesses another requestor's open ticket",
			ticket:   ticketWith(domain.TicketStatusOpen),
			roles:    roles(domain.RoleProgrammer),
			viewerID: "E2",
			want:     DashboardAction{Kind: DashboardAssess, Label: "Assess", Priority: PriorityHigh},
		},
		{
			name:     "programmer views non-open ticket",
			ticket:   ticketWith(domain.TicketStatusAssessed),
			roles:    roles(domain.RoleProgrammer),
			viewerID: "E2",
			want:     DashboardAction{Kind: DashboardView, Label: "View", Priority: PriorityLow},
		},
		{
			name:     "department head approves assessed",
			ticket:   ticketWith(domain.TicketStatusAssessed),
			roles:    roles(domain.RoleDepartmentHead),
			viewerID: "H1",
			want:     DashboardAction{Kind: DashboardApprove, Label: "Approve", Priority: PriorityHigh},
		},
		{
			name:     "od approves pending od approval",
			ticket:   ticketWith(domain.TicketStatusPendingODApproval),
			roles:    roles(domain.RoleOD),
			viewerID: "O1",
			want:     DashboardAction{Kind: DashboardApprove, Label: "Approve", Priority: PriorityHigh},
		},
		{
			name:     "od views everything else",
			ticket:   ticketWith(domain.TicketStatusAssessed),
			roles:    roles(domain.RoleOD),
			viewerID: "O1",
			want:     DashboardAction{Kind: DashboardView, Label: "View", Priority: PriorityLow},
		},
		{
			name:     "requestor always views",
			ticket:   ticketWith(domain.TicketStatusOpen),
			roles:    roles(domain.RoleRequestor),
			viewerID: "E1",
			want:     DashboardAction{Kind: DashboardView, Label: "View", Priority: PriorityLow},
		},
		{
			name:     "no roles falls back to view",
			ticket:   ticketWith(domain.TicketStatusOpen),
			roles:    domain.RoleSet{},
			viewerID: "X1",
			want:     DashboardAction{Kind: DashboardView, Label: "View", Priority: PriorityLow},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectDashboardAction(tc.ticket, tc.roles, tc.viewerID)
			if got != tc.want {
				t.Fatalf("SelectDashboardAction() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestSelectDashboardActionIsPure(t *testing.T) {
	tk := ticketWith(domain.TicketStatusReturned)
	set := roles(domain.RoleMISSupervisor, domain.RoleOD)
	first := SelectDashboardAction(tk, set, "S1")
	for i := 0; i < 100; i++ {
		if got := SelectDashboardAction(tk, set, "S1"); got != first {
			t.Fatalf("call %d returned %+v, want %+v", i, got, first)
		}
	}
}

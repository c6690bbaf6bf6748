package workflow

import (
	"testing"

	"github.com/spec-kit/request-workflow/internal/domain"
)

func TestTransitionFor(t *testing.T) {
	cases := []struct {
		name   string
		from   domain.TicketStatus
		action domain.TicketAction
		wantTo domain.TicketStatus
		wantOK bool
	}{
		{"assess", domain.TicketStatusOpen, domain.ActionAssess, domain.TicketStatusAssessed, true},
		{"assess return", domain.TicketStatusOpen, domain.ActionAssessReturn, domain.TicketStatusReturned, true},
		{"dh approve", domain.TicketStatusAssessed, domain.ActionApproveDH, domain.TicketStatusPendingODApproval, true},
		{"dh disapprove", domain.TicketStatusAssessed, domain.ActionDisapprove, domain.TicketStatusDisapproved, true},
		{"od approve", domain.TicketStatusPendingODApproval, domain.ActionApproveOD, domain.TicketStatusApproved, true},
		{"od disapprove", domain.TicketStatusPendingODApproval, domain.ActionDisapprove, domain.TicketStatusDisapproved, true},
		{"resubmit", domain.TicketStatusReturned, domain.ActionResubmit, domain.TicketStatusOpen, true},
		{"cancel open", domain.TicketStatusOpen, domain.ActionCancel, domain.TicketStatusCancelled, true},
		{"cancel approved", domain.TicketStatusApproved, domain.ActionCancel, domain.TicketStatusCancelled, true},
		{"no cancel on disapproved", domain.TicketStatusDisapproved, domain.ActionCancel, "", false},
		{"no cancel on cancelled", domain.TicketStatusCancelled, domain.ActionCancel, "", false},
		{"no assess on assessed", domain.TicketStatusAssessed, domain.ActionAssess, "", false},
		{"no od approve before dh", domain.TicketStatusAssessed, domain.ActionApproveOD, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr, ok := TransitionFor(tc.from, tc.action)
			if ok != tc.wantOK {
				t.Fatalf("TransitionFor(%s, %s) ok = %v, want %v", tc.from, tc.action, ok, tc.wantOK)
			}
			if ok && tr.To != tc.wantTo {
				t.Fatalf("TransitionFor(%s, %s).To = %s, want %s", tc.from, tc.action, tr.To, tc.wantTo)
			}
		})
	}
}

func TestRemarkRequired(t *testing.T) {
	gated := []domain.TicketAction{
		domain.ActionDisapprove,
		domain.ActionAssessReturn,
		domain.ActionCancel,
		domain.ActionResubmit,
	}
	for _, action := range gated {
		if !RemarkRequired(action) {
			t.Errorf("RemarkRequired(%s) = false, want true", action)
		}
	}
	free := []domain.TicketAction{
		domain.ActionAssess,
		domain.ActionApproveDH,
		domain.ActionApproveOD,
		domain.ActionAssignProgrammer,
	}
	for _, action := range free {
		if RemarkRequired(action) {
			t.Errorf("RemarkRequired(%s) = true, want false", action)
		}
	}
}

func TestApprovalRowsRequireRequestType(t *testing.T) {
	// Approval rows are gated to REQUEST tickets. This documents observed
	// behavior rather than asserting it is the intended business rule.
	rows := []struct {
		from   domain.TicketStatus
		action domain.TicketAction
	}{
		{domain.TicketStatusAssessed, domain.ActionApproveDH},
		{domain.TicketStatusAssessed, domain.ActionDisapprove},
		{domain.TicketStatusPendingODApproval, domain.ActionApproveOD},
		{domain.TicketStatusPendingODApproval, domain.ActionDisapprove},
	}
	for _, row := range rows {
		tr, ok := TransitionFor(row.from, row.action)
		if !ok {
			t.Fatalf("missing transition %s/%s", row.from, row.action)
		}
		approver := roles(domain.RoleDepartmentHead, domain.RoleOD)
		if tr.Permits(approver, StageApproving, domain.RequestTypeAdjustment) {
			t.Errorf("%s/%s permitted for ADJUSTMENT, want refused", row.from, row.action)
		}
		if tr.Permits(approver, StageApproving, domain.RequestTypeTesting) {
			t.Errorf("%s/%s permitted for TESTING, want refused", row.from, row.action)
		}
		if !tr.Permits(approver, StageApproving, domain.RequestTypeRequest) {
			t.Errorf("%s/%s refused for REQUEST, want permitted", row.from, row.action)
		}
	}
}

func TestCancelPermitsAnyRole(t *testing.T) {
	tr, ok := TransitionFor(domain.TicketStatusOpen, domain.ActionCancel)
	if !ok {
		t.Fatal("missing cancel transition from OPEN")
	}
	if !tr.NeedsRemark {
		t.Error("cancel must require a remark")
	}
	if !tr.Permits(roles(domain.RoleRequestor), StageViewing, domain.RequestTypeTesting) {
		t.Error("cancel should be permitted for any role at any stage")
	}
}

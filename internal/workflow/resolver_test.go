package workflow

import (
	"testing"

	"github.com/spec-kit/request-workflow/internal/domain"
)

func roles(tags ...domain.Role) domain.RoleSet {
	set := domain.RoleSet{}
	for _, tag := range tags {
		set = set.With(tag)
	}
	return set
}

func TestResolveActions(t *testing.T) {
	cases := []struct {
		name        string
		stage       Stage
		roles       domain.RoleSet
		requestType domain.RequestType
		remarkStage RemarkStage
		want        ActionCapabilitySet
	}{
		{
			name:        "programmer assessing",
			stage:       StageAssessing,
			roles:       roles(domain.RoleProgrammer),
			requestType: domain.RequestTypeRequest,
			remarkStage: RemarkHidden,
			want:        ActionCapabilitySet{CanAssessTicket: true, CanReturnTicket: true},
		},
		{
			name:        "department head approving a request",
			stage:       StageApproving,
			roles:       roles(domain.RoleDepartmentHead),
			requestType: domain.RequestTypeRequest,
			remarkStage: RemarkHidden,
			want:        ActionCapabilitySet{CanApproveDH: true, CanDisapproveDH: true},
		},
		{
			// Approval gate is restricted to REQUEST tickets. Documented
			// behavior, preserved as observed: adjustments never reach
			// the department-head gate.
			name:        "department head approving an adjustment",
			stage:       StageApproving,
			roles:       roles(domain.RoleDepartmentHead),
			requestType: domain.RequestTypeAdjustment,
			remarkStage: RemarkHidden,
			want:        ActionCapabilitySet{},
		},
		{
			name:        "od approving a request",
			stage:       StageApproving,
			roles:       roles(domain.RoleOD),
			requestType: domain.RequestTypeRequest,
			remarkStage: RemarkHidden,
			want:        ActionCapabilitySet{CanApproveOD: true, CanDisapproveOD: true},
		},
		{
			name:        "od approving while a remark is being collected",
			stage:       StageApproving,
			roles:       roles(domain.RoleOD),
			requestType: domain.RequestTypeRequest,
			remarkStage: RemarkCollecting,
			want:        ActionCapabilitySet{},
		},
		{
			name:        "supervisor assigning",
			stage:       StageAssigning,
			roles:       roles(domain.RoleMISSupervisor),
			requestType: domain.RequestTypeRequest,
			remarkStage: RemarkHidden,
			want:        ActionCapabilitySet{CanAssignProgrammer: true},
		},
		{
			name:        "programmer assigning",
			stage:       StageAssigning,
			roles:       roles(domain.RoleProgrammer),
			requestType: domain.RequestTypeEnhancement,
			remarkStage: RemarkHidden,
			want:        ActionCapabilitySet{CanAssignProgrammer: true},
		},
		{
			name:        "requestor creating",
			stage:       StageCreate,
			roles:       roles(domain.RoleRequestor),
			requestType: domain.RequestTypeRequest,
			remarkStage: RemarkHidden,
			want:        ActionCapabilitySet{CanGenerate: true},
		},
		{
			name:        "viewer with no matching stage",
			stage:       StageViewing,
			roles:       roles(domain.RoleProgrammer, domain.RoleDepartmentHead, domain.RoleOD),
			requestType: domain.RequestTypeRequest,
			remarkStage: RemarkHidden,
			want:        ActionCapabilitySet{},
		},
		{
			name:        "multi-role viewer gets independent flags",
			stage:       StageApproving,
			roles:       roles(domain.RoleDepartmentHead, domain.RoleOD),
			requestType: domain.RequestTypeRequest,
			remarkStage: RemarkHidden,
			want:        ActionCapabilitySet{CanApproveDH: true, CanDisapproveDH: true, CanApproveOD: true, CanDisapproveOD: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveActions(tc.stage, tc.roles, tc.requestType, tc.remarkStage)
			if got != tc.want {
				t.Fatalf("ResolveActions() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestResolveActionsIsPure(t *testing.T) {
	set := roles(domain.RoleProgrammer, domain.RoleOD)
	first := ResolveActions(StageAssessing, set, domain.RequestTypeRequest, RemarkHidden)
	for i := 0; i < 100; i++ {
		if got := ResolveActions(StageAssessing, set, domain.RequestTypeRequest, RemarkHidden); got != first {
			t.Fatalf("call %d returned %+v, want %+v", i, got, first)
		}
	}
}

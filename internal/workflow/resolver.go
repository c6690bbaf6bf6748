package workflow

import "github.com/spec-kit/request-workflow/internal/domain"

// ActionCapabilitySet is the fixed record of transitions enabled for one
// detail-view resolution. Flags are independent, not mutually exclusive.
type ActionCapabilitySet struct {
	CanAssignProgrammer bool `json:"can_assign_programmer"`
	CanAssessTicket     bool `json:"can_assess_ticket"`
	CanReturnTicket     bool `json:"can_return_ticket"`
	CanApproveDH        bool `json:"can_approve_dh"`
	CanDisapproveDH     bool `json:"can_disapprove_dh"`
	CanApproveOD        bool `json:"can_approve_od"`
	CanDisapproveOD     bool `json:"can_disapprove_od"`
	CanGenerate         bool `json:"can_generate"`
}

// ResolveActions computes which transitions the viewer may trigger in the
// current detail-view interaction. Pure: identical inputs always produce
// identical output.
func ResolveActions(stage Stage, roles domain.RoleSet, requestType domain.RequestType, remarkStage RemarkStage) ActionCapabilitySet {
	assessing := stage == StageAssessing && roles.Has(domain.RoleProgrammer)

	approvingRequest := stage == StageApproving &&
		requestType == domain.RequestTypeRequest &&
		remarkStage == RemarkHidden
	dhApproving := approvingRequest && roles.Has(domain.RoleDepartmentHead)
	odApproving := approvingRequest && roles.Has(domain.RoleOD)

	return ActionCapabilitySet{
		CanAssignProgrammer: stage == StageAssigning &&
			(roles.Has(domain.RoleMISSupervisor) || roles.Has(domain.RoleProgrammer)),
		CanAssessTicket: assessing,
		CanReturnTicket: assessing,
		CanApproveDH:    dhApproving,
		CanDisapproveDH: dhApproving,
		CanApproveOD:    odApproving,
		CanDisapproveOD: odApproving,
		CanGenerate:     stage == StageCreate,
	}
}

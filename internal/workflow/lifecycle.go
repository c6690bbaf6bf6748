package workflow

import "github.com/spec-kit/request-workflow/internal/domain"

// Stage is the detail-view interaction mode, set once per navigation into
// the view. It is distinct from ticket status.
type Stage string

const (
	StageCreate       Stage = "CREATE"
	StageAssessing    Stage = "ASSESSING"
	StageApproving    Stage = "APPROVING"
	StageAssigning    Stage = "ASSIGNING_PROGRAMMER"
	StageViewing      Stage = "VIEWING"
	StageResubmitting Stage = "RESUBMITTING"
)

// RemarkStage tracks the remark-collection step of the two-phase commit
// protocol.
type RemarkStage string

const (
	RemarkHidden     RemarkStage = "HIDDEN"
	RemarkCollecting RemarkStage = "COLLECTING"
)

// Transition is a single allowed edge in the ticket lifecycle. A zero
// Actor means any role may perform it; a zero Stage means no interaction
// stage is required; an empty RequestTypes slice means any request type.
type Transition struct {
	From         domain.TicketStatus
	Action       domain.TicketAction
	To           domain.TicketStatus
	Actor        domain.Role
	Stage        Stage
	RequestTypes []domain.RequestType
	NeedsRemark  bool
}

// onlyRequests gates the department-head/OD approval rows to plain
// REQUEST tickets. Adjustment, enhancement and testing tickets never reach
// that gate; this restriction is preserved exactly as observed.
var onlyRequests = []domain.RequestType{domain.RequestTypeRequest}

var transitionTable = []Transition{
	{From: domain.TicketStatusOpen, Action: domain.ActionAssess, To: domain.TicketStatusAssessed,
		Actor: domain.RoleProgrammer, Stage: StageAssessing},
	{From: domain.TicketStatusOpen, Action: domain.ActionAssessReturn, To: domain.TicketStatusReturned,
		Actor: domain.RoleProgrammer, Stage: StageAssessing, NeedsRemark: true},

	{From: domain.TicketStatusAssessed, Action: domain.ActionApproveDH, To: domain.TicketStatusPendingODApproval,
		Actor: domain.RoleDepartmentHead, Stage: StageApproving, RequestTypes: onlyRequests},
	{From: domain.TicketStatusAssessed, Action: domain.ActionDisapprove, To: domain.TicketStatusDisapproved,
		Actor: domain.RoleDepartmentHead, Stage: StageApproving, RequestTypes: onlyRequests, NeedsRemark: true},

	{From: domain.TicketStatusPendingODApproval, Action: domain.ActionApproveOD, To: domain.TicketStatusApproved,
		Actor: domain.RoleOD, Stage: StageApproving, RequestTypes: onlyRequests},
	{From: domain.TicketStatusPendingODApproval, Action: domain.ActionDisapprove, To: domain.TicketStatusDisapproved,
		Actor: domain.RoleOD, Stage: StageApproving, RequestTypes: onlyRequests, NeedsRemark: true},

	{From: domain.TicketStatusReturned, Action: domain.ActionResubmit, To: domain.TicketStatusOpen,
		Actor: domain.RoleRequestor, NeedsRemark: true},

	{From: domain.TicketStatusOpen, Action: domain.ActionCancel, To: domain.TicketStatusCancelled, NeedsRemark: true},
	{From: domain.TicketStatusAssessed, Action: domain.ActionCancel, To: domain.TicketStatusCancelled, NeedsRemark: true},
	{From: domain.TicketStatusReturned, Action: domain.ActionCancel, To: domain.TicketStatusCancelled, NeedsRemark: true},
	{From: domain.TicketStatusPendingODApproval, Action: domain.ActionCancel, To: domain.TicketStatusCancelled, NeedsRemark: true},
	{From: domain.TicketStatusApproved, Action: domain.ActionCancel, To: domain.TicketStatusCancelled, NeedsRemark: true},
}

// remarkGated is the fixed set of actions that require a justification
// collected in a separate step before they commit.
var remarkGated = map[domain.TicketAction]bool{
	domain.ActionDisapprove:   true,
	domain.ActionAssessReturn: true,
	domain.ActionCancel:       true,
	domain.ActionResubmit:     true,
}

// RemarkRequired reports whether the action may only commit with a
// non-empty remark.
func RemarkRequired(action domain.TicketAction) bool {
	return remarkGated[action]
}

// TransitionFor returns the lifecycle edge for a status/action pair.
func TransitionFor(from domain.TicketStatus, action domain.TicketAction) (Transition, bool) {
	for _, tr := range transitionTable {
		if tr.From == from && tr.Action == action {
			return tr, true
		}
	}
	return Transition{}, false
}

// Permits checks a concrete invocation against a transition row: the
// actor must hold the required role, the interaction stage must match,
// and the request type gate must pass.
func (tr Transition) Permits(roles domain.RoleSet, stage Stage, requestType domain.RequestType) bool {
	if tr.Actor != "" && !roles.Has(tr.Actor) {
		return false
	}
	if tr.Stage != "" && tr.Stage != stage {
		return false
	}
	if len(tr.RequestTypes) > 0 {
		ok := false
		for _, rt := range tr.RequestTypes {
			if rt == requestType {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

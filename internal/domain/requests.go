package domain

// TransitionRequest is the single outbound commit produced by the
// transition coordinator and consumed exactly once by the submission
// collaborator. It is never retried automatically.
type TransitionRequest struct {
	TicketID      string
	Action        TicketAction
	TargetStatus  TicketStatus
	ActorID       string
	ActorRoleUsed Role
	Remark        string
	AttachmentIDs []string
	Edits         *TicketEdits
}

// AssignmentRequest is the side-channel request that assigns a programmer
// to an approved ticket without changing its status.
type AssignmentRequest struct {
	TicketID      string
	AssigneeID    string
	ActorID       string
	ActorRoleUsed Role
	Remark        string
}

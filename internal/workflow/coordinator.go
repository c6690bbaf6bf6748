package workflow

import (
	"context"
	"strings"
	"sync"

	"github.com/spec-kit/request-workflow/internal/domain"
)

// Submitter is the external submission collaborator. It consumes one
// request, commits it remotely, and returns a fresh ticket snapshot on
// success. The coordinator holds no optimistic state: the local snapshot
// only changes when the collaborator confirms.
type Submitter interface {
	SubmitTransition(ctx context.Context, req domain.TransitionRequest) (*domain.Ticket, error)
	SubmitAssignment(ctx context.Context, req domain.AssignmentRequest) (*domain.Ticket, error)
}

// AttachmentStager exposes the ids of not-yet-submitted attachments held
// by the staging collaborator for one interaction session.
type AttachmentStager interface {
	StagedIDs(ctx context.Context, sessionID string) ([]string, error)
}

// InteractionContext is the ephemeral state of one detail-view session.
// It is created when the view opens and discarded when the view closes or
// a transition commits.
type InteractionContext struct {
	Stage         Stage
	RemarkStage   RemarkStage
	PendingAction domain.TicketAction
}

// ImmediatePayload carries the extra inputs of non-remark-gated actions.
type ImmediatePayload struct {
	AssigneeID string
	Remark     string
}

// CoordinatorConfig bundles the inputs of one detail-view session.
type CoordinatorConfig struct {
	SessionID string
	Ticket    *domain.Ticket
	Roles     domain.RoleSet
	ViewerID  string
	Stage     Stage
	Submitter Submitter
	Stager    AttachmentStager
}

// Coordinator drives the remark-gated two-phase commit protocol for one
// detail-view session. At most one request may be in flight at a time;
// further submit attempts while one is unresolved are rejected, never
// queued.
type Coordinator struct {
	mu        sync.Mutex
	sessionID string
	ticket    domain.Ticket
	roles     domain.RoleSet
	viewerID  string
	ic        InteractionContext
	edits     *domain.TicketEdits
	inFlight  bool
	submitter Submitter
	stager    AttachmentStager
}

// NewCoordinator opens a session over a ticket snapshot. The snapshot and
// role set are treated as immutable inputs; a status change is only
// reflected after the submitter returns a fresh snapshot.
func NewCoordinator(cfg CoordinatorConfig) (*Coordinator, error) {
	if cfg.Ticket == nil {
		return nil, &ValidationError{Field: "ticket", Reason: "is required"}
	}
	if cfg.Submitter == nil {
		return nil, &ValidationError{Field: "submitter", Reason: "is required"}
	}
	if cfg.ViewerID == "" {
		return nil, &ValidationError{Field: "viewer_id", Reason: "is required"}
	}
	stage := cfg.Stage
	if stage == "" {
		stage = StageViewing
	}
	return &Coordinator{
		sessionID: cfg.SessionID,
		ticket:    *cfg.Ticket,
		roles:     cfg.Roles,
		viewerID:  cfg.ViewerID,
		ic:        InteractionContext{Stage: stage, RemarkStage: RemarkHidden},
		submitter: cfg.Submitter,
		stager:    cfg.Stager,
	}, nil
}

// Snapshot returns a copy of the ticket as last confirmed.
func (c *Coordinator) Snapshot() domain.Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticket
}

// Context returns the current interaction state.
func (c *Coordinator) Context() InteractionContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ic
}

// Processing reports whether a request is currently in flight.
func (c *Coordinator) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Capabilities resolves the enabled transitions for the current
// interaction state.
func (c *Coordinator) Capabilities() ActionCapabilitySet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ResolveActions(c.ic.Stage, c.roles, c.ticket.RequestType, c.ic.RemarkStage)
}

// BeginAction is phase 1 of the remark protocol. For a remark-gated
// action it records the pending action and switches to remark collection,
// producing no request and contacting no collaborator. Non-gated actions
// must go through SubmitImmediate instead.
func (c *Coordinator) BeginAction(action domain.TicketAction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return ErrSubmissionInFlight
	}
	if !RemarkRequired(action) {
		return &ValidationError{Field: "action", Reason: "does not require a remark; submit it directly"}
	}
	if err := c.authorize(action); err != nil {
		return err
	}
	c.ic.RemarkStage = RemarkCollecting
	c.ic.PendingAction = action
	return nil
}

// StageEdits records the field changes a requestor wants applied together
// with a resubmission. Only meaningful while resubmitting.
func (c *Coordinator) StageEdits(edits domain.TicketEdits) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ic.Stage != StageResubmitting {
		return &ValidationError{Field: "edits", Reason: "only allowed while resubmitting"}
	}
	c.edits = &edits
	return nil
}

// SubmitRemark is phase 2: it builds the single TransitionRequest from
// the pending action and supplied remark and hands it to the submitter.
// On failure the remark protocol resets so the caller must re-trigger
// phase 1; staged attachments are preserved for retry.
func (c *Coordinator) SubmitRemark(ctx context.Context, remark string) (*domain.Ticket, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if c.ic.RemarkStage != RemarkCollecting || c.ic.PendingAction == "" {
		c.mu.Unlock()
		return nil, ErrNoPendingAction
	}
	remark = strings.TrimSpace(remark)
	if remark == "" {
		c.mu.Unlock()
		return nil, &ValidationError{Field: "remark", Reason: "is required"}
	}
	action := c.ic.PendingAction
	row, ok := TransitionFor(c.ticket.Status, action)
	if !ok {
		c.mu.Unlock()
		return nil, &AuthorizationMismatchError{Action: action, Stage: c.ic.Stage, Status: c.ticket.Status}
	}
	req := domain.TransitionRequest{
		TicketID:      c.ticket.ID,
		Action:        action,
		TargetStatus:  row.To,
		ActorID:       c.viewerID,
		ActorRoleUsed: c.roles.AuditRole(),
		Remark:        remark,
	}
	if action == domain.ActionResubmit {
		req.Edits = c.edits
	}
	c.inFlight = true
	c.mu.Unlock()

	updated, err := c.submit(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	c.ic.RemarkStage = RemarkHidden
	c.ic.PendingAction = ""
	if err != nil {
		return nil, err
	}
	c.commit(updated)
	return updated, nil
}

// SubmitImmediate handles the non-remark-gated actions: assess, the two
// approvals, and programmer assignment. It produces exactly one request
// without a remark-collection phase.
func (c *Coordinator) SubmitImmediate(ctx context.Context, action domain.TicketAction, payload ImmediatePayload) (*domain.Ticket, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if RemarkRequired(action) {
		c.mu.Unlock()
		return nil, &ValidationError{Field: "action", Reason: "requires a remark; begin it first"}
	}
	if err := c.authorize(action); err != nil {
		c.mu.Unlock()
		return nil, err
	}

	if action == domain.ActionAssignProgrammer {
		if payload.AssigneeID == "" {
			c.mu.Unlock()
			return nil, &ValidationError{Field: "assignee_id", Reason: "is required"}
		}
		req := domain.AssignmentRequest{
			TicketID:      c.ticket.ID,
			AssigneeID:    payload.AssigneeID,
			ActorID:       c.viewerID,
			ActorRoleUsed: c.roles.AuditRole(),
			Remark:        strings.TrimSpace(payload.Remark),
		}
		c.inFlight = true
		c.mu.Unlock()

		updated, err := c.submitAssignment(ctx, req)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.inFlight = false
		if err != nil {
			return nil, err
		}
		c.commit(updated)
		return updated, nil
	}

	row, _ := TransitionFor(c.ticket.Status, action)
	req := domain.TransitionRequest{
		TicketID:      c.ticket.ID,
		Action:        action,
		TargetStatus:  row.To,
		ActorID:       c.viewerID,
		ActorRoleUsed: c.roles.AuditRole(),
		Remark:        strings.TrimSpace(payload.Remark),
	}
	c.inFlight = true
	c.mu.Unlock()

	updated, err := c.submit(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		return nil, err
	}
	c.commit(updated)
	return updated, nil
}

// submit resolves staged attachments and hands the request to the
// submission collaborator. Any failure is wrapped as a SubmissionError
// and surfaced unchanged; nothing is retried here.
func (c *Coordinator) submit(ctx context.Context, req domain.TransitionRequest) (*domain.Ticket, error) {
	if c.stager != nil && c.sessionID != "" {
		ids, err := c.stager.StagedIDs(ctx, c.sessionID)
		if err != nil {
			return nil, &SubmissionError{Err: err}
		}
		req.AttachmentIDs = ids
	}
	updated, err := c.submitter.SubmitTransition(ctx, req)
	if err != nil {
		return nil, &SubmissionError{Err: err}
	}
	return updated, nil
}

func (c *Coordinator) submitAssignment(ctx context.Context, req domain.AssignmentRequest) (*domain.Ticket, error) {
	updated, err := c.submitter.SubmitAssignment(ctx, req)
	if err != nil {
		return nil, &SubmissionError{Err: err}
	}
	return updated, nil
}

// commit adopts the confirmed snapshot and discards the interaction
// state of the completed action.
func (c *Coordinator) commit(updated *domain.Ticket) {
	if updated != nil {
		c.ticket = *updated
	}
	c.ic = InteractionContext{Stage: StageViewing, RemarkStage: RemarkHidden}
	c.edits = nil
}

// authorize refuses to build a request for an action whose resolved
// capability is false. Cancel and resubmit are not covered by capability
// flags; they are checked against the transition table alone.
func (c *Coordinator) authorize(action domain.TicketAction) error {
	mismatch := &AuthorizationMismatchError{Action: action, Stage: c.ic.Stage, Status: c.ticket.Status}
	caps := ResolveActions(c.ic.Stage, c.roles, c.ticket.RequestType, c.ic.RemarkStage)

	if action == domain.ActionAssignProgrammer {
		if !caps.CanAssignProgrammer || c.ticket.Status != domain.TicketStatusApproved {
			return mismatch
		}
		return nil
	}

	row, ok := TransitionFor(c.ticket.Status, action)
	if !ok || !row.Permits(c.roles, c.ic.Stage, c.ticket.RequestType) {
		return mismatch
	}

	switch action {
	case domain.ActionAssess:
		if !caps.CanAssessTicket {
			return mismatch
		}
	case domain.ActionAssessReturn:
		if !caps.CanReturnTicket {
			return mismatch
		}
	case domain.ActionApproveDH:
		if !caps.CanApproveDH {
			return mismatch
		}
	case domain.ActionApproveOD:
		if !caps.CanApproveOD {
			return mismatch
		}
	case domain.ActionDisapprove:
		switch c.ticket.Status {
		case domain.TicketStatusAssessed:
			if !caps.CanDisapproveDH {
				return mismatch
			}
		case domain.TicketStatusPendingODApproval:
			if !caps.CanDisapproveOD {
				return mismatch
			}
		default:
			return mismatch
		}
	}
	return nil
}

package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/request-workflow/internal/domain"
)

type fakeSubmitter struct {
	mu          sync.Mutex
	transitions []domain.TransitionRequest
	assignments []domain.AssignmentRequest
	err         error
	result      *domain.Ticket
	started     chan struct{}
	release     chan struct{}
}

func (f *fakeSubmitter) SubmitTransition(ctx context.Context, req domain.TransitionRequest) (*domain.Ticket, error) {
	f.mu.Lock()
	f.transitions = append(f.transitions, req)
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
		f.started = nil
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeSubmitter) SubmitAssignment(ctx context.Context, req domain.AssignmentRequest) (*domain.Ticket, error) {
	f.mu.Lock()
	f.assignments = append(f.assignments, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeSubmitter) transitionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transitions)
}

type fakeStager struct {
	ids []string
	err error
}

func (f *fakeStager) StagedIDs(ctx context.Context, sessionID string) ([]string, error) {
	return f.ids, f.err
}

func assessedRequest() *domain.Ticket {
	return &domain.Ticket{
		ID:             "T-1",
		ExternalKey:    "TCK-AAAA1111",
		RequestorID:    "E1",
		Status:         domain.TicketStatusAssessed,
		RequestType:    domain.RequestTypeRequest,
		HierarchyLevel: domain.HierarchyParent,
	}
}

func newTestCoordinator(t *testing.T, ticket *domain.Ticket, set domain.RoleSet, stage Stage, sub Submitter, stager AttachmentStager) *Coordinator {
	t.Helper()
	coord, err := NewCoordinator(CoordinatorConfig{
		SessionID: "sess-1",
		Ticket:    ticket,
		Roles:     set,
		ViewerID:  "H1",
		Stage:     stage,
		Submitter: sub,
		Stager:    stager,
	})
	require.NoError(t, err)
	return coord
}

func TestRemarkGateTwoPhase(t *testing.T) {
	updated := assessedRequest()
	updated.Status = domain.TicketStatusDisapproved
	sub := &fakeSubmitter{result: updated}
	coord := newTestCoordinator(t, assessedRequest(), roles(domain.RoleDepartmentHead), StageApproving, sub, nil)

	// Phase 1 produces no request and switches to remark collection.
	require.NoError(t, coord.BeginAction(domain.ActionDisapprove))
	assert.Equal(t, RemarkCollecting, coord.Context().RemarkStage)
	assert.Equal(t, domain.ActionDisapprove, coord.Context().PendingAction)
	assert.Equal(t, 0, sub.transitionCount())

	// Phase 2 produces exactly one request carrying the remark.
	got, err := coord.SubmitRemark(context.Background(), "reason")
	require.NoError(t, err)
	require.Equal(t, 1, sub.transitionCount())
	req := sub.transitions[0]
	assert.Equal(t, domain.ActionDisapprove, req.Action)
	assert.Equal(t, domain.TicketStatusDisapproved, req.TargetStatus)
	assert.Equal(t, "reason", req.Remark)
	assert.Equal(t, domain.RoleDepartmentHead, req.ActorRoleUsed)
	assert.Equal(t, domain.TicketStatusDisapproved, got.Status)
	assert.Equal(t, RemarkHidden, coord.Context().RemarkStage)
	assert.Empty(t, coord.Context().PendingAction)
}

func TestSubmitRemarkFailureResetsProtocol(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("conflict")}
	coord := newTestCoordinator(t, assessedRequest(), roles(domain.RoleDepartmentHead), StageApproving, sub, nil)

	require.NoError(t, coord.BeginAction(domain.ActionDisapprove))
	_, err := coord.SubmitRemark(context.Background(), "reason")

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, RemarkHidden, coord.Context().RemarkStage)
	assert.Empty(t, coord.Context().PendingAction)
	// Ticket snapshot is untouched, no optimistic state.
	assert.Equal(t, domain.TicketStatusAssessed, coord.Snapshot().Status)

	// The protocol must be re-triggered from phase 1.
	_, err = coord.SubmitRemark(context.Background(), "reason")
	assert.ErrorIs(t, err, ErrNoPendingAction)
}

func TestStagedAttachmentsSurviveFailure(t *testing.T) {
	stager := &fakeStager{ids: []string{"att-1", "att-2"}}
	sub := &fakeSubmitter{err: errors.New("transport down")}
	coord := newTestCoordinator(t, assessedRequest(), roles(domain.RoleDepartmentHead), StageApproving, sub, stager)

	require.NoError(t, coord.BeginAction(domain.ActionDisapprove))
	_, err := coord.SubmitRemark(context.Background(), "reason")
	require.Error(t, err)

	// Retry after re-triggering phase 1 still carries the staged ids.
	sub.err = nil
	sub.result = assessedRequest()
	require.NoError(t, coord.BeginAction(domain.ActionDisapprove))
	_, err = coord.SubmitRemark(context.Background(), "reason")
	require.NoError(t, err)
	require.Equal(t, 2, sub.transitionCount())
	assert.Equal(t, []string{"att-1", "att-2"}, sub.transitions[1].AttachmentIDs)
}

func TestBeginActionValidation(t *testing.T) {
	sub := &fakeSubmitter{}
	coord := newTestCoordinator(t, assessedRequest(), roles(domain.RoleDepartmentHead), StageApproving, sub, nil)

	var vErr *ValidationError
	assert.ErrorAs(t, coord.BeginAction(domain.ActionApproveDH), &vErr)

	var mismatch *AuthorizationMismatchError
	adjustment := assessedRequest()
	adjustment.RequestType = domain.RequestTypeAdjustment
	gated := newTestCoordinator(t, adjustment, roles(domain.RoleDepartmentHead), StageApproving, sub, nil)
	assert.ErrorAs(t, gated.BeginAction(domain.ActionDisapprove), &mismatch)
}

func TestSubmitRemarkRequiresText(t *testing.T) {
	sub := &fakeSubmitter{}
	coord := newTestCoordinator(t, assessedRequest(), roles(domain.RoleDepartmentHead), StageApproving, sub, nil)

	require.NoError(t, coord.BeginAction(domain.ActionDisapprove))
	_, err := coord.SubmitRemark(context.Background(), "   ")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	// A local validation failure keeps the protocol collecting.
	assert.Equal(t, RemarkCollecting, coord.Context().RemarkStage)
	assert.Equal(t, 0, sub.transitionCount())
}

func TestSubmitImmediate(t *testing.T) {
	open := assessedRequest()
	open.Status = domain.TicketStatusOpen
	assessed := assessedRequest()
	sub := &fakeSubmitter{result: assessed}
	coord := newTestCoordinator(t, open, roles(domain.RoleProgrammer), StageAssessing, sub, nil)

	got, err := coord.SubmitImmediate(context.Background(), domain.ActionAssess, ImmediatePayload{})
	require.NoError(t, err)
	require.Equal(t, 1, sub.transitionCount())
	assert.Equal(t, domain.TicketStatusAssessed, sub.transitions[0].TargetStatus)
	assert.Equal(t, domain.RoleProgrammer, sub.transitions[0].ActorRoleUsed)
	assert.Equal(t, domain.TicketStatusAssessed, got.Status)

	// Remark-gated actions must not bypass the protocol.
	var vErr *ValidationError
	_, err = coord.SubmitImmediate(context.Background(), domain.ActionCancel, ImmediatePayload{Remark: "nope"})
	assert.ErrorAs(t, err, &vErr)
}

func TestSubmitImmediateAssignment(t *testing.T) {
	approved := assessedRequest()
	approved.Status = domain.TicketStatusApproved
	sub := &fakeSubmitter{result: approved}
	coord := newTestCoordinator(t, approved, roles(domain.RoleMISSupervisor), StageAssigning, sub, nil)

	var vErr *ValidationError
	_, err := coord.SubmitImmediate(context.Background(), domain.ActionAssignProgrammer, ImmediatePayload{})
	require.ErrorAs(t, err, &vErr)

	_, err = coord.SubmitImmediate(context.Background(), domain.ActionAssignProgrammer, ImmediatePayload{AssigneeID: "P9"})
	require.NoError(t, err)
	require.Len(t, sub.assignments, 1)
	assert.Equal(t, "P9", sub.assignments[0].AssigneeID)
	assert.Empty(t, sub.assignments[0].Remark)

	// Assignment is only available while the ticket is approved.
	pending := assessedRequest()
	pending.Status = domain.TicketStatusPendingODApproval
	var mismatch *AuthorizationMismatchError
	blocked := newTestCoordinator(t, pending, roles(domain.RoleMISSupervisor), StageAssigning, sub, nil)
	_, err = blocked.SubmitImmediate(context.Background(), domain.ActionAssignProgrammer, ImmediatePayload{AssigneeID: "P9"})
	assert.ErrorAs(t, err, &mismatch)
}

func TestInFlightGuard(t *testing.T) {
	updated := assessedRequest()
	updated.Status = domain.TicketStatusDisapproved
	sub := &fakeSubmitter{
		result:  updated,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	started := sub.started
	coord := newTestCoordinator(t, assessedRequest(), roles(domain.RoleDepartmentHead), StageApproving, sub, nil)

	require.NoError(t, coord.BeginAction(domain.ActionDisapprove))

	done := make(chan error, 1)
	go func() {
		_, err := coord.SubmitRemark(context.Background(), "reason")
		done <- err
	}()

	<-started
	assert.True(t, coord.Processing())

	// A second submit while one is in flight is rejected, not queued.
	_, err := coord.SubmitRemark(context.Background(), "again")
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	_, err = coord.SubmitImmediate(context.Background(), domain.ActionAssess, ImmediatePayload{})
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.ErrorIs(t, coord.BeginAction(domain.ActionCancel), ErrSubmissionInFlight)

	close(sub.release)
	require.NoError(t, <-done)
	assert.False(t, coord.Processing())
	assert.Equal(t, 1, sub.transitionCount())
}

func TestAuditRolePrefersOD(t *testing.T) {
	pending := assessedRequest()
	pending.Status = domain.TicketStatusPendingODApproval
	updated := assessedRequest()
	updated.Status = domain.TicketStatusApproved
	sub := &fakeSubmitter{result: updated}
	coord := newTestCoordinator(t, pending, roles(domain.RoleDepartmentHead, domain.RoleOD), StageApproving, sub, nil)

	_, err := coord.SubmitImmediate(context.Background(), domain.ActionApproveOD, ImmediatePayload{})
	require.NoError(t, err)
	require.Equal(t, 1, sub.transitionCount())
	assert.Equal(t, domain.RoleOD, sub.transitions[0].ActorRoleUsed)
}

func TestStageEditsOnlyWhileResubmitting(t *testing.T) {
	returned := assessedRequest()
	returned.Status = domain.TicketStatusReturned
	reopened := assessedRequest()
	reopened.Status = domain.TicketStatusOpen
	sub := &fakeSubmitter{result: reopened}

	viewer := newTestCoordinator(t, returned, roles(domain.RoleRequestor), StageViewing, sub, nil)
	var vErr *ValidationError
	assert.ErrorAs(t, viewer.StageEdits(domain.TicketEdits{}), &vErr)

	name := "Payroll Revamp"
	coord, err := NewCoordinator(CoordinatorConfig{
		SessionID: "sess-2",
		Ticket:    returned,
		Roles:     roles(domain.RoleRequestor),
		ViewerID:  "E1",
		Stage:     StageResubmitting,
		Submitter: sub,
	})
	require.NoError(t, err)
	require.NoError(t, coord.StageEdits(domain.TicketEdits{ProjectName: &name}))
	require.NoError(t, coord.BeginAction(domain.ActionResubmit))

	_, err = coord.SubmitRemark(context.Background(), "fixed the estimate")
	require.NoError(t, err)
	require.Equal(t, 1, sub.transitionCount())
	req := sub.transitions[0]
	assert.Equal(t, domain.TicketStatusOpen, req.TargetStatus)
	require.NotNil(t, req.Edits)
	assert.Equal(t, "Payroll Revamp", *req.Edits.ProjectName)
}

package workflow

import (
	"errors"
	"fmt"

	"github.com/spec-kit/request-workflow/internal/domain"
)

// ErrSubmissionInFlight rejects a submit attempt while another request is
// still unresolved. The attempt is a no-op, never queued.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// ErrNoPendingAction rejects a remark submission when no remark-gated
// action was begun first.
var ErrNoPendingAction = errors.New("no pending action awaiting a remark")

// ValidationError is a local pre-submission failure: required input was
// missing or malformed. It never reaches the submission collaborator.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// AuthorizationMismatchError marks an action invocation whose resolved
// capability was false. Reaching this is a caller wiring bug: the caller
// should only offer actions the resolver reported as enabled.
type AuthorizationMismatchError struct {
	Action domain.TicketAction
	Stage  Stage
	Status domain.TicketStatus
}

func (e *AuthorizationMismatchError) Error() string {
	return fmt.Sprintf("action %q not permitted at stage %s, status %s", e.Action, e.Stage, e.Status)
}

// SubmissionError wraps a failure reported by the external submission
// collaborator. It is surfaced upward unchanged and never retried.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

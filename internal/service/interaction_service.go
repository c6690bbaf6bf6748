package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/staging"
	"github.com/spec-kit/request-workflow/internal/workflow"
	"github.com/spec-kit/request-workflow/pkg/util"
)

// InteractionService manages detail-view sessions. Each session owns one
// transition coordinator bound to the viewer who opened it; the session
// id doubles as the staging key for attachments uploaded while the view
// is open.
type InteractionService struct {
	mu       sync.RWMutex
	sessions map[string]*interactionSession

	tickets *TicketService
	stager  *staging.Store
	ttl     time.Duration
}

type interactionSession struct {
	coordinator *workflow.Coordinator
	viewerID    string
	expiresAt   time.Time
}

// NewInteractionService builds the session manager. Sessions expire after
// the staging TTL so coordinator state and staged attachments age out
// together.
func NewInteractionService(tickets *TicketService, stager *staging.Store, ttl time.Duration) *InteractionService {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &InteractionService{
		sessions: make(map[string]*interactionSession),
		tickets:  tickets,
		stager:   stager,
		ttl:      ttl,
	}
}

// SessionView is the client-facing snapshot of one session.
type SessionView struct {
	SessionID    string
	Ticket       domain.Ticket
	Context      workflow.InteractionContext
	Capabilities workflow.ActionCapabilitySet
	Dashboard    workflow.DashboardAction
	Processing   bool
}

// OpenSession loads the ticket and opens a coordinator over it in the
// requested interaction stage.
func (s *InteractionService) OpenSession(ctx context.Context, viewer *domain.Employee, ticketID string, stage workflow.Stage) (*SessionView, error) {
	ticket, _, err := s.tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	coordinator, err := workflow.NewCoordinator(workflow.CoordinatorConfig{
		SessionID: sessionID,
		Ticket:    ticket,
		Roles:     viewer.Roles,
		ViewerID:  viewer.ID,
		Stage:     stage,
		Submitter: s.tickets,
		Stager:    s.stager,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.evictExpiredLocked()
	s.sessions[sessionID] = &interactionSession{
		coordinator: coordinator,
		viewerID:    viewer.ID,
		expiresAt:   time.Now().Add(s.ttl),
	}
	s.mu.Unlock()

	return s.view(sessionID, coordinator, viewer), nil
}

// BeginAction starts the remark-collection phase for a gated action.
func (s *InteractionService) BeginAction(sessionID, viewerID string, action domain.TicketAction) (*workflow.InteractionContext, error) {
	sess, err := s.lookup(sessionID, viewerID)
	if err != nil {
		return nil, err
	}
	if err := sess.coordinator.BeginAction(action); err != nil {
		return nil, err
	}
	ic := sess.coordinator.Context()
	return &ic, nil
}

// SubmitRemark completes a pending gated action with its justification.
// On success the session is closed and staged attachments are cleared.
func (s *InteractionService) SubmitRemark(ctx context.Context, sessionID, viewerID, remark string) (*domain.Ticket, error) {
	sess, err := s.lookup(sessionID, viewerID)
	if err != nil {
		return nil, err
	}
	ticket, err := sess.coordinator.SubmitRemark(ctx, remark)
	if err != nil {
		return nil, err
	}
	s.closeSession(ctx, sessionID)
	return ticket, nil
}

// SubmitImmediate commits a non-remark-gated action in one step.
func (s *InteractionService) SubmitImmediate(ctx context.Context, sessionID, viewerID string, action domain.TicketAction, payload workflow.ImmediatePayload) (*domain.Ticket, error) {
	sess, err := s.lookup(sessionID, viewerID)
	if err != nil {
		return nil, err
	}
	ticket, err := sess.coordinator.SubmitImmediate(ctx, action, payload)
	if err != nil {
		return nil, err
	}
	s.closeSession(ctx, sessionID)
	return ticket, nil
}

// StageEdits records resubmission edits on the session.
func (s *InteractionService) StageEdits(sessionID, viewerID string, edits domain.TicketEdits) error {
	sess, err := s.lookup(sessionID, viewerID)
	if err != nil {
		return err
	}
	return sess.coordinator.StageEdits(edits)
}

// StageAttachment holds attachment metadata for the session until the
// next committed transition.
func (s *InteractionService) StageAttachment(ctx context.Context, sessionID, viewerID string, att staging.StagedAttachment) (string, error) {
	if _, err := s.lookup(sessionID, viewerID); err != nil {
		return "", err
	}
	att.UploadedBy = viewerID
	return s.stager.Stage(ctx, sessionID, att)
}

// GetSession returns the current view of a session.
func (s *InteractionService) GetSession(sessionID string, viewer *domain.Employee) (*SessionView, error) {
	sess, err := s.lookup(sessionID, viewer.ID)
	if err != nil {
		return nil, err
	}
	return s.view(sessionID, sess.coordinator, viewer), nil
}

// CloseSession discards the session and its staged attachments.
func (s *InteractionService) CloseSession(ctx context.Context, sessionID, viewerID string) error {
	if _, err := s.lookup(sessionID, viewerID); err != nil {
		return err
	}
	s.closeSession(ctx, sessionID)
	return nil
}

func (s *InteractionService) view(sessionID string, coordinator *workflow.Coordinator, viewer *domain.Employee) *SessionView {
	ticket := coordinator.Snapshot()
	return &SessionView{
		SessionID:    sessionID,
		Ticket:       ticket,
		Context:      coordinator.Context(),
		Capabilities: coordinator.Capabilities(),
		Dashboard:    workflow.SelectDashboardAction(&ticket, viewer.Roles, viewer.ID),
		Processing:   coordinator.Processing(),
	}
}

func (s *InteractionService) lookup(sessionID, viewerID string) (*interactionSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || time.Now().After(sess.expiresAt) {
		return nil, util.NewNotFound("interaction session", map[string]any{"session_id": sessionID})
	}
	if sess.viewerID != viewerID {
		return nil, util.NewForbidden("session belongs to another employee")
	}
	return sess, nil
}

func (s *InteractionService) closeSession(ctx context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if s.stager != nil {
		_ = s.stager.Clear(ctx, sessionID)
	}
}

func (s *InteractionService) evictExpiredLocked() {
	now := time.Now()
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, id)
		}
	}
}

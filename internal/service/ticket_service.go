package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/events"
	"github.com/spec-kit/request-workflow/internal/repository"
	"github.com/spec-kit/request-workflow/internal/staging"
	"github.com/spec-kit/request-workflow/internal/workflow"
	"github.com/spec-kit/request-workflow/pkg/util"
)

// TicketService coordinates ticket creation, listing and lifecycle
// commits. It is the submission collaborator behind the transition
// coordinator: every committed transition or assignment lands here.
type TicketService struct {
	tickets     repository.TicketRepository
	attachments repository.AttachmentRepository
	departments repository.DepartmentRepository
	employees   repository.EmployeeRepository
	history     repository.TicketHistoryRepository
	stager      *staging.Store
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	AttachmentRepo repository.AttachmentRepository
	DepartmentRepo repository.DepartmentRepository
	EmployeeRepo   repository.EmployeeRepository
	HistoryRepo    repository.TicketHistoryRepository
	Stager         *staging.Store
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes ticket creation payload. SelectedTicketID
// names an existing ticket the new one follows up on; together with the
// request type it determines parent/child placement.
type TicketCreateInput struct {
	DepartmentID     string
	ProjectName      string
	Details          string
	RequestType      domain.RequestType
	SelectedTicketID string
	AttachmentIDs    []string
}

// TicketListFilter describes listing filters for the tickets endpoint.
type TicketListFilter struct {
	RequestorID          *string
	DepartmentID         *string
	AssignedProgrammerID *string
	ParentTicketID       *string
	Statuses             []domain.TicketStatus
	RequestTypes         []domain.RequestType
	SearchTerm           *string
	CreatedFrom          *time.Time
	CreatedTo            *time.Time
	Limit                int
	Offset               int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		attachments: deps.AttachmentRepo,
		departments: deps.DepartmentRepo,
		employees:   deps.EmployeeRepo,
		history:     deps.HistoryRepo,
		stager:      deps.Stager,
		dispatcher:  deps.Dispatcher,
	}
}

// CreateTicket opens a new request in OPEN status. Hierarchy placement
// follows the selected-ticket rule: adjustments and enhancements created
// from an existing ticket become children of it, everything else is a
// parent.
func (s *TicketService) CreateTicket(ctx context.Context, requestor *domain.Employee, input TicketCreateInput) (*domain.Ticket, error) {
	dept, err := s.departments.GetByID(ctx, input.DepartmentID)
	if err != nil {
		return nil, util.NewNotFound("department", map[string]any{"department_id": input.DepartmentID})
	}
	if !dept.IsActive {
		return nil, util.NewValidationError("department is inactive", map[string]any{"department_id": dept.ID})
	}
	if strings.TrimSpace(input.ProjectName) == "" {
		return nil, util.NewValidationError("project name is required", nil)
	}

	ticket := &domain.Ticket{
		ExternalKey:  generateTicketKey(),
		RequestorID:  requestor.ID,
		DepartmentID: input.DepartmentID,
		ProjectName:  strings.TrimSpace(input.ProjectName),
		Details:      strings.TrimSpace(input.Details),
		Status:       domain.TicketStatusOpen,
		RequestType:  input.RequestType,
	}
	if ticket.RequestType == "" {
		ticket.RequestType = domain.RequestTypeRequest
	}

	if input.SelectedTicketID != "" {
		parent, err := s.tickets.GetByID(ctx, input.SelectedTicketID)
		if err != nil {
			return nil, util.NewNotFound("parent ticket", map[string]any{"ticket_id": input.SelectedTicketID})
		}
		workflow.ApplyHierarchy(ticket, parent.ID)
	} else {
		workflow.ApplyHierarchy(ticket, "")
	}

	if err := ticket.Validate(); err != nil {
		return nil, util.NewValidationError(err.Error(), nil)
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.persistStagedAttachments(ctx, ticket, requestor.ID, input.AttachmentIDs); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{EmployeeID: requestor.ID, Role: domain.RoleRequestor},
		Payload: events.TicketCreatedPayload{
			DepartmentID:   ticket.DepartmentID,
			RequestType:    ticket.RequestType,
			HierarchyLevel: ticket.HierarchyLevel,
			ParentTicketID: ticket.ParentTicketID,
			ProjectName:    ticket.ProjectName,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket with its attachment references.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, []domain.AttachmentReference, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	for _, att := range attachments {
		ticket.AttachmentIDs = append(ticket.AttachmentIDs, att.ID)
	}
	return ticket, attachments, nil
}

// ListTickets returns tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	return s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		RequestorID:          filter.RequestorID,
		DepartmentID:         filter.DepartmentID,
		AssignedProgrammerID: filter.AssignedProgrammerID,
		ParentTicketID:       filter.ParentTicketID,
		Statuses:             filter.Statuses,
		RequestTypes:         filter.RequestTypes,
		SearchTerm:           filter.SearchTerm,
		CreatedFrom:          filter.CreatedFrom,
		CreatedTo:            filter.CreatedTo,
		Limit:                filter.Limit,
		Offset:               filter.Offset,
	})
}

// DashboardRow pairs a ticket with the single action selected for the
// viewer on the multi-ticket dashboard.
type DashboardRow struct {
	Ticket domain.Ticket            `json:"ticket"`
	Action workflow.DashboardAction `json:"action"`
}

// Dashboard lists tickets with the per-row action resolved for the
// viewer's role set.
func (s *TicketService) Dashboard(ctx context.Context, viewer *domain.Employee, filter TicketListFilter) ([]DashboardRow, error) {
	tickets, err := s.ListTickets(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows := make([]DashboardRow, 0, len(tickets))
	for i := range tickets {
		rows = append(rows, DashboardRow{
			Ticket: tickets[i],
			Action: workflow.SelectDashboardAction(&tickets[i], viewer.Roles, viewer.ID),
		})
	}
	return rows, nil
}

// ListHistory returns the audit trail of a ticket.
func (s *TicketService) ListHistory(ctx context.Context, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.history.ListByTicket(ctx, ticketID, limit, offset)
}

// SubmitTransition commits one lifecycle transition. The request carries
// everything the coordinator resolved client-side; the server still
// revalidates the edge against the lifecycle table before persisting.
func (s *TicketService) SubmitTransition(ctx context.Context, req domain.TransitionRequest) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}

	row, ok := workflow.TransitionFor(ticket.Status, req.Action)
	if !ok {
		return nil, util.NewConflict("transition not allowed from current status", map[string]any{
			"status": ticket.Status,
			"action": req.Action,
		})
	}
	if row.To != req.TargetStatus {
		return nil, util.NewConflict("ticket changed since the action was resolved", map[string]any{
			"expected_status": req.TargetStatus,
			"actual_status":   row.To,
		})
	}
	if row.Actor != "" {
		actor, err := s.employees.GetByID(ctx, req.ActorID)
		if err != nil {
			return nil, util.NewNotFound("employee", map[string]any{"employee_id": req.ActorID})
		}
		if !actor.Roles.Has(row.Actor) {
			return nil, util.NewForbidden("actor lacks the role this transition requires")
		}
	}
	if len(row.RequestTypes) > 0 {
		allowed := false
		for _, rt := range row.RequestTypes {
			if rt == ticket.RequestType {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, util.NewConflict("request type is not eligible for this transition", map[string]any{
				"request_type": ticket.RequestType,
			})
		}
	}
	if req.Action == domain.ActionResubmit && ticket.RequestorID != req.ActorID {
		return nil, util.NewForbidden("only the requestor may resubmit this ticket")
	}
	if workflow.RemarkRequired(req.Action) && strings.TrimSpace(req.Remark) == "" {
		return nil, util.NewValidationError("remark is required for this action", map[string]any{"action": req.Action})
	}

	oldStatus := ticket.Status
	ticket.Status = row.To
	if ticket.Status.IsTerminal() {
		now := time.Now()
		ticket.ClosedAt = &now
	}

	resubmitted := req.Action == domain.ActionResubmit
	if resubmitted && req.Edits != nil {
		applyEdits(ticket, req.Edits)
		// Edits must not leave a child ticket with a request type the
		// hierarchy forbids.
		if err := ticket.Validate(); err != nil {
			return nil, util.NewValidationError(err.Error(), nil)
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.persistStagedAttachments(ctx, ticket, req.ActorID, req.AttachmentIDs); err != nil {
		return nil, err
	}

	changeType := domain.ChangeTypeStatus
	if resubmitted {
		changeType = domain.ChangeTypeResubmission
	}
	actorID := req.ActorID
	if err := s.history.Create(ctx, &domain.TicketHistory{
		TicketID:   ticket.ID,
		ActorID:    &actorID,
		ActorRole:  req.ActorRoleUsed,
		ChangeType: changeType,
		Remark:     req.Remark,
		OldValue:   map[string]any{"status": oldStatus},
		NewValue:   map[string]any{"status": ticket.Status},
	}); err != nil {
		return nil, err
	}

	eventType := events.EventTicketStatusChanged
	var payload any = events.TicketStatusChangedPayload{
		Action:    req.Action,
		OldStatus: oldStatus,
		NewStatus: ticket.Status,
		Remark:    req.Remark,
	}
	if resubmitted {
		eventType = events.EventTicketResubmitted
		payload = events.TicketResubmittedPayload{
			Remark:      req.Remark,
			RequestType: ticket.RequestType,
		}
	}
	s.publishEvent(ctx, events.Event{
		Type:     eventType,
		TicketID: ticket.ID,
		Actor:    events.Actor{EmployeeID: req.ActorID, Role: req.ActorRoleUsed},
		Payload:  payload,
	})
	return ticket, nil
}

// SubmitAssignment assigns a programmer to an approved ticket. The
// ticket status does not change.
func (s *TicketService) SubmitAssignment(ctx context.Context, req domain.AssignmentRequest) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketStatusApproved {
		return nil, util.NewConflict("only approved tickets accept programmer assignment", map[string]any{
			"status": ticket.Status,
		})
	}

	actor, err := s.employees.GetByID(ctx, req.ActorID)
	if err != nil {
		return nil, util.NewNotFound("employee", map[string]any{"employee_id": req.ActorID})
	}
	if !actor.Roles.Has(domain.RoleMISSupervisor) && !actor.Roles.Has(domain.RoleProgrammer) {
		return nil, util.NewForbidden("actor lacks the role required to assign a programmer")
	}

	assignee, err := s.employees.GetByID(ctx, req.AssigneeID)
	if err != nil {
		return nil, util.NewNotFound("employee", map[string]any{"employee_id": req.AssigneeID})
	}
	if !assignee.Roles.Has(domain.RoleProgrammer) {
		return nil, util.NewValidationError("assignee is not a programmer", map[string]any{"employee_id": assignee.ID})
	}

	var oldAssignee any
	if ticket.AssignedProgrammerID != nil {
		oldAssignee = *ticket.AssignedProgrammerID
	}
	assigneeID := assignee.ID
	ticket.AssignedProgrammerID = &assigneeID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	actorID := req.ActorID
	if err := s.history.Create(ctx, &domain.TicketHistory{
		TicketID:   ticket.ID,
		ActorID:    &actorID,
		ActorRole:  req.ActorRoleUsed,
		ChangeType: domain.ChangeTypeAssignment,
		Remark:     req.Remark,
		OldValue:   map[string]any{"assigned_programmer_id": oldAssignee},
		NewValue:   map[string]any{"assigned_programmer_id": assigneeID},
	}); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventProgrammerAssigned,
		TicketID: ticket.ID,
		Actor:    events.Actor{EmployeeID: req.ActorID, Role: req.ActorRoleUsed},
		Payload: events.ProgrammerAssignedPayload{
			AssigneeID: assigneeID,
			Remark:     req.Remark,
		},
	})
	return ticket, nil
}

// persistStagedAttachments resolves staged metadata into durable
// attachment rows and discards the consumed staging entries. Unresolvable
// ids are skipped: expired staging entries do not fail a commit.
func (s *TicketService) persistStagedAttachments(ctx context.Context, ticket *domain.Ticket, uploaderID string, stagedIDs []string) error {
	if len(stagedIDs) == 0 || s.stager == nil {
		return nil
	}
	staged, err := s.stager.Resolve(ctx, stagedIDs)
	if err != nil {
		return err
	}
	for _, att := range staged {
		uploadedBy := att.UploadedBy
		if uploadedBy == "" {
			uploadedBy = uploaderID
		}
		record := &domain.AttachmentReference{
			TicketID:   ticket.ID,
			StorageKey: att.StorageKey,
			FileName:   att.FileName,
			MimeType:   att.MimeType,
			SizeBytes:  att.SizeBytes,
			UploadedBy: uploadedBy,
		}
		if err := s.attachments.Create(ctx, record); err != nil {
			return err
		}
		ticket.AttachmentIDs = append(ticket.AttachmentIDs, record.ID)
	}
	return s.stager.Discard(ctx, stagedIDs)
}

func applyEdits(ticket *domain.Ticket, edits *domain.TicketEdits) {
	if edits.ProjectName != nil {
		ticket.ProjectName = strings.TrimSpace(*edits.ProjectName)
	}
	if edits.Details != nil {
		ticket.Details = strings.TrimSpace(*edits.Details)
	}
	if edits.RequestType != nil {
		ticket.RequestType = *edits.RequestType
	}
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-workflow/internal/api/dto"
	"github.com/spec-kit/request-workflow/internal/auth"
	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/service"
	"github.com/spec-kit/request-workflow/internal/staging"
	"github.com/spec-kit/request-workflow/internal/workflow"
	"github.com/spec-kit/request-workflow/pkg/util"
)

// SessionsHandler exposes the detail-view interaction protocol: open a
// session over a ticket, resolve capabilities, run the remark-gated
// two-phase commit and stage attachments.
type SessionsHandler struct {
	interactions *service.InteractionService
}

// NewSessionsHandler returns a new handler instance.
func NewSessionsHandler(interactions *service.InteractionService) *SessionsHandler {
	return &SessionsHandler{interactions: interactions}
}

// Open creates a session for the authenticated employee.
func (h *SessionsHandler) Open(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.OpenSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if req.TicketID == "" {
		return util.NewValidationError("ticket_id is required", nil)
	}

	view, err := h.interactions.OpenSession(c.UserContext(), principal.Employee, req.TicketID, req.Stage)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sessionResponse(view))
}

// Get returns the current session state.
func (h *SessionsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	view, err := h.interactions.GetSession(c.Params("id"), principal.Employee)
	if err != nil {
		return err
	}
	return c.JSON(sessionResponse(view))
}

// BeginAction starts the remark-collection phase for a gated action.
func (h *SessionsHandler) BeginAction(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.BeginActionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	ic, err := h.interactions.BeginAction(c.Params("id"), principal.Employee.ID, req.Action)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"stage":          ic.Stage,
		"remark_stage":   ic.RemarkStage,
		"pending_action": ic.PendingAction,
	})
}

// SubmitRemark completes the pending gated action.
func (h *SessionsHandler) SubmitRemark(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.SubmitRemarkRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	ticket, err := h.interactions.SubmitRemark(c.UserContext(), c.Params("id"), principal.Employee.ID, req.Remark)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketSummary(ticket))
}

// SubmitImmediate commits a non-remark-gated action in one step.
func (h *SessionsHandler) SubmitImmediate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.SubmitImmediateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	ticket, err := h.interactions.SubmitImmediate(c.UserContext(), c.Params("id"), principal.Employee.ID,
		req.Action, workflow.ImmediatePayload{AssigneeID: req.AssigneeID, Remark: req.Remark})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketSummary(ticket))
}

// StageEdits records resubmission edits on the session.
func (h *SessionsHandler) StageEdits(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.StageEditsRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	err := h.interactions.StageEdits(c.Params("id"), principal.Employee.ID, domain.TicketEdits{
		ProjectName: req.ProjectName,
		Details:     req.Details,
		RequestType: req.RequestType,
	})
	if err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StageAttachment stages attachment metadata for the session.
func (h *SessionsHandler) StageAttachment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.StageAttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if req.StorageKey == "" || req.FileName == "" {
		return util.NewValidationError("storage_key and file_name are required", nil)
	}

	stagedID, err := h.interactions.StageAttachment(c.UserContext(), c.Params("id"), principal.Employee.ID,
		staging.StagedAttachment{
			StorageKey: req.StorageKey,
			FileName:   req.FileName,
			MimeType:   req.MimeType,
			SizeBytes:  req.SizeBytes,
		})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.StageAttachmentResponse{StagedID: stagedID})
}

// Close discards the session and its staged attachments.
func (h *SessionsHandler) Close(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	if err := h.interactions.CloseSession(c.UserContext(), c.Params("id"), principal.Employee.ID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func sessionResponse(view *service.SessionView) dto.SessionResponse {
	return dto.SessionResponse{
		SessionID:     view.SessionID,
		Ticket:        dto.NewTicketSummary(&view.Ticket),
		Stage:         view.Context.Stage,
		RemarkStage:   view.Context.RemarkStage,
		PendingAction: view.Context.PendingAction,
		Capabilities:  view.Capabilities,
		Dashboard:     view.Dashboard,
		Processing:    view.Processing,
	}
}

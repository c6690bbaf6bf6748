package dto

import (
	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/workflow"
)

// OpenSessionRequest opens a detail-view session over a ticket.
type OpenSessionRequest struct {
	TicketID string         `json:"ticket_id"`
	Stage    workflow.Stage `json:"stage"`
}

// SessionResponse is the client-facing state of one session.
type SessionResponse struct {
	SessionID     string                       `json:"session_id"`
	Ticket        TicketSummary                `json:"ticket"`
	Stage         workflow.Stage               `json:"stage"`
	RemarkStage   workflow.RemarkStage         `json:"remark_stage"`
	PendingAction domain.TicketAction          `json:"pending_action,omitempty"`
	Capabilities  workflow.ActionCapabilitySet `json:"capabilities"`
	Dashboard     workflow.DashboardAction     `json:"dashboard_action"`
	Processing    bool                         `json:"processing"`
}

// BeginActionRequest starts the remark-collection phase.
type BeginActionRequest struct {
	Action domain.TicketAction `json:"action"`
}

// SubmitRemarkRequest completes a pending gated action.
type SubmitRemarkRequest struct {
	Remark string `json:"remark"`
}

// SubmitImmediateRequest commits a non-gated action in one step.
type SubmitImmediateRequest struct {
	Action     domain.TicketAction `json:"action"`
	AssigneeID string              `json:"assignee_id,omitempty"`
	Remark     string              `json:"remark,omitempty"`
}

// StageEditsRequest records resubmission edits on the session.
type StageEditsRequest struct {
	ProjectName *string             `json:"project_name"`
	Details     *string             `json:"details"`
	RequestType *domain.RequestType `json:"request_type"`
}

// StageAttachmentRequest stages attachment metadata for the session.
type StageAttachmentRequest struct {
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}

// StageAttachmentResponse returns the staged id.
type StageAttachmentResponse struct {
	StagedID string `json:"staged_id"`
}

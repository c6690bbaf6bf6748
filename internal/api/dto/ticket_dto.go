package dto

import (
	"time"

	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/workflow"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	DepartmentID     string             `json:"department_id"`
	ProjectName      string             `json:"project_name"`
	Details          string             `json:"details"`
	RequestType      domain.RequestType `json:"request_type"`
	SelectedTicketID string             `json:"selected_ticket_id,omitempty"`
	AttachmentIDs    []string           `json:"attachment_ids,omitempty"`
}

// TicketListQuery captures query filters for the tickets endpoint.
type TicketListQuery struct {
	RequestorID          *string
	DepartmentID         *string
	AssignedProgrammerID *string
	ParentTicketID       *string
	Statuses             []domain.TicketStatus
	RequestTypes         []domain.RequestType
	SearchTerm           *string
	CreatedFrom          *time.Time
	CreatedTo            *time.Time
	Page                 int
	PageSize             int
}

// TicketSummary response.
type TicketSummary struct {
	ID                   string                `json:"id"`
	ExternalKey          string                `json:"external_key"`
	RequestorID          string                `json:"requestor_id"`
	DepartmentID         string                `json:"department_id"`
	AssignedProgrammerID *string               `json:"assigned_programmer_id"`
	ProjectName          string                `json:"project_name"`
	Status               domain.TicketStatus   `json:"status"`
	RequestType          domain.RequestType    `json:"request_type"`
	HierarchyLevel       domain.HierarchyLevel `json:"hierarchy_level"`
	ParentTicketID       *string               `json:"parent_ticket_id"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Details     string               `json:"details"`
	ClosedAt    *time.Time           `json:"closed_at"`
	Attachments []AttachmentResponse `json:"attachments"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID         string `json:"id"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
	UploadedBy string `json:"uploaded_by,omitempty"`
}

// DashboardRowResponse pairs a ticket with its selected action.
type DashboardRowResponse struct {
	Ticket TicketSummary            `json:"ticket"`
	Action workflow.DashboardAction `json:"action"`
}

// HistoryEntryResponse is one audit trail entry.
type HistoryEntryResponse struct {
	ID         string                  `json:"id"`
	ActorID    *string                 `json:"actor_id"`
	ActorRole  domain.Role             `json:"actor_role"`
	ChangeType domain.TicketChangeType `json:"change_type"`
	Remark     string                  `json:"remark,omitempty"`
	OldValue   map[string]any          `json:"old_value"`
	NewValue   map[string]any          `json:"new_value"`
	CreatedAt  time.Time               `json:"created_at"`
}

// NewTicketSummary maps a domain ticket.
func NewTicketSummary(t *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:                   t.ID,
		ExternalKey:          t.ExternalKey,
		RequestorID:          t.RequestorID,
		DepartmentID:         t.DepartmentID,
		AssignedProgrammerID: t.AssignedProgrammerID,
		ProjectName:          t.ProjectName,
		Status:               t.Status,
		RequestType:          t.RequestType,
		HierarchyLevel:       t.HierarchyLevel,
		ParentTicketID:       t.ParentTicketID,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

// NewTicketDetail maps a domain ticket with attachments.
func NewTicketDetail(t *domain.Ticket, attachments []domain.AttachmentReference) TicketDetailResponse {
	detail := TicketDetailResponse{
		TicketSummary: NewTicketSummary(t),
		Details:       t.Details,
		ClosedAt:      t.ClosedAt,
		Attachments:   make([]AttachmentResponse, 0, len(attachments)),
	}
	for _, att := range attachments {
		detail.Attachments = append(detail.Attachments, AttachmentResponse{
			ID:         att.ID,
			FileName:   att.FileName,
			MimeType:   att.MimeType,
			SizeBytes:  att.SizeBytes,
			UploadedBy: att.UploadedBy,
		})
	}
	return detail
}

// NewHistoryEntry maps one audit entry.
func NewHistoryEntry(h *domain.TicketHistory) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:         h.ID,
		ActorID:    h.ActorID,
		ActorRole:  h.ActorRole,
		ChangeType: h.ChangeType,
		Remark:     h.Remark,
		OldValue:   h.OldValue,
		NewValue:   h.NewValue,
		CreatedAt:  h.CreatedAt,
	}
}

package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-workflow/internal/api/dto"
	"github.com/spec-kit/request-workflow/internal/auth"
	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/service"
	"github.com/spec-kit/request-workflow/pkg/util"
)

const defaultPageSize = 25

// TicketsHandler exposes ticket creation, listing and audit endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler returns a new handler instance.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// Create opens a new request ticket for the authenticated employee.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), principal.Employee, service.TicketCreateInput{
		DepartmentID:     req.DepartmentID,
		ProjectName:      req.ProjectName,
		Details:          req.Details,
		RequestType:      req.RequestType,
		SelectedTicketID: req.SelectedTicketID,
		AttachmentIDs:    req.AttachmentIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTicketSummary(ticket))
}

// List returns tickets matching query filters.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return util.NewUnauthorized("authentication required")
	}

	query := parseTicketListQuery(c)
	tickets, err := h.tickets.ListTickets(c.UserContext(), queryToFilter(query))
	if err != nil {
		return err
	}

	out := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		out = append(out, dto.NewTicketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"tickets": out, "page": query.Page, "page_size": query.PageSize})
}

// Mine lists the authenticated employee's own requests.
func (h *TicketsHandler) Mine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	query := parseTicketListQuery(c)
	query.RequestorID = &principal.Employee.ID
	tickets, err := h.tickets.ListTickets(c.UserContext(), queryToFilter(query))
	if err != nil {
		return err
	}

	out := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		out = append(out, dto.NewTicketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"tickets": out, "page": query.Page, "page_size": query.PageSize})
}

// Get returns full ticket detail with attachments.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return util.NewUnauthorized("authentication required")
	}

	ticket, attachments, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketDetail(ticket, attachments))
}

// History returns the audit trail of a ticket.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return util.NewUnauthorized("authentication required")
	}

	limit := c.QueryInt("page_size", defaultPageSize)
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	entries, err := h.tickets.ListHistory(c.UserContext(), c.Params("id"), limit, (page-1)*limit)
	if err != nil {
		return err
	}

	out := make([]dto.HistoryEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, dto.NewHistoryEntry(&entries[i]))
	}
	return c.JSON(fiber.Map{"history": out, "page": page, "page_size": limit})
}

// Dashboard lists tickets with the single action resolved per row for the
// viewer's role set.
func (h *TicketsHandler) Dashboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	query := parseTicketListQuery(c)
	rows, err := h.tickets.Dashboard(c.UserContext(), principal.Employee, queryToFilter(query))
	if err != nil {
		return err
	}

	out := make([]dto.DashboardRowResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.DashboardRowResponse{
			Ticket: dto.NewTicketSummary(&rows[i].Ticket),
			Action: rows[i].Action,
		})
	}
	return c.JSON(fiber.Map{"rows": out, "page": query.Page, "page_size": query.PageSize})
}

func parseTicketListQuery(c *fiber.Ctx) dto.TicketListQuery {
	query := dto.TicketListQuery{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", defaultPageSize),
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 || query.PageSize > 100 {
		query.PageSize = defaultPageSize
	}

	if v := c.Query("department_id"); v != "" {
		query.DepartmentID = &v
	}
	if v := c.Query("requestor_id"); v != "" {
		query.RequestorID = &v
	}
	if v := c.Query("assigned_programmer_id"); v != "" {
		query.AssignedProgrammerID = &v
	}
	if v := c.Query("parent_ticket_id"); v != "" {
		query.ParentTicketID = &v
	}
	if v := c.Query("search"); v != "" {
		query.SearchTerm = &v
	}
	for _, raw := range strings.Split(c.Query("status"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			query.Statuses = append(query.Statuses, domain.TicketStatus(strings.ToUpper(raw)))
		}
	}
	for _, raw := range strings.Split(c.Query("request_type"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			query.RequestTypes = append(query.RequestTypes, domain.RequestType(strings.ToUpper(raw)))
		}
	}
	if v := c.Query("created_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			query.CreatedFrom = &t
		}
	}
	if v := c.Query("created_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			query.CreatedTo = &t
		}
	}
	return query
}

func queryToFilter(q dto.TicketListQuery) service.TicketListFilter {
	return service.TicketListFilter{
		RequestorID:          q.RequestorID,
		DepartmentID:         q.DepartmentID,
		AssignedProgrammerID: q.AssignedProgrammerID,
		ParentTicketID:       q.ParentTicketID,
		Statuses:             q.Statuses,
		RequestTypes:         q.RequestTypes,
		SearchTerm:           q.SearchTerm,
		CreatedFrom:          q.CreatedFrom,
		CreatedTo:            q.CreatedTo,
		Limit:                q.PageSize,
		Offset:               (q.Page - 1) * q.PageSize,
	}
}

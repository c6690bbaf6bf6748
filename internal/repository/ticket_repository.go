package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/request-workflow/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
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

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByExternalKey(ctx context.Context, key string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, external_key, requestor_id, department_id, assigned_programmer_id,
               project_name, details, status, request_type, hierarchy_level, parent_ticket_id,
               created_at, updated_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, requestor_id, department_id, assigned_programmer_id,
            project_name, details, status, request_type, hierarchy_level, parent_ticket_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.RequestorID,
		ticket.DepartmentID,
		ticket.AssignedProgrammerID,
		ticket.ProjectName,
		ticket.Details,
		ticket.Status,
		ticket.RequestType,
		ticket.HierarchyLevel,
		ticket.ParentTicketID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET assigned_programmer_id=$1, project_name=$2, details=$3,
            status=$4, request_type=$5, closed_at=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.AssignedProgrammerID,
		ticket.ProjectName,
		ticket.Details,
		ticket.Status,
		ticket.RequestType,
		ticket.ClosedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf("SELECT %s FROM tickets WHERE id=$1", ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByExternalKey(ctx context.Context, key string) (*domain.Ticket, error) {
	query := fmt.Sprintf("SELECT %s FROM tickets WHERE external_key=$1", ticketColumns)
	return r.fetchSingle(ctx, query, key)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.RequestorID,
		&ticket.DepartmentID,
		&ticket.AssignedProgrammerID,
		&ticket.ProjectName,
		&ticket.Details,
		&ticket.Status,
		&ticket.RequestType,
		&ticket.HierarchyLevel,
		&ticket.ParentTicketID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequestorID != nil {
		args = append(args, *filter.RequestorID)
		clauses = append(clauses, fmt.Sprintf("requestor_id=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.AssignedProgrammerID != nil {
		args = append(args, *filter.AssignedProgrammerID)
		clauses = append(clauses, fmt.Sprintf("assigned_programmer_id=$%d", len(args)))
	}
	if filter.ParentTicketID != nil {
		args = append(args, *filter.ParentTicketID)
		clauses = append(clauses, fmt.Sprintf("parent_ticket_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.RequestTypes) > 0 {
		placeholders := make([]string, len(filter.RequestTypes))
		for i, rt := range filter.RequestTypes {
			args = append(args, rt)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("request_type IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(project_name) LIKE %s OR LOWER(details) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ExternalKey,
			&ticket.RequestorID,
			&ticket.DepartmentID,
			&ticket.AssignedProgrammerID,
			&ticket.ProjectName,
			&ticket.Details,
			&ticket.Status,
			&ticket.RequestType,
			&ticket.HierarchyLevel,
			&ticket.ParentTicketID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.ClosedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

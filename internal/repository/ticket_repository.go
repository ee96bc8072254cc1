package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ErrStaleTicket is returned when a ticket changed between read and write.
var ErrStaleTicket = errors.New("ticket was modified concurrently")

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// Update writes every mutable column, guarded by the updated_at value the caller read.
	Update(ctx context.Context, ticket *domain.Ticket, expectedUpdatedAt time.Time) error
	MarkOverdueSLAViolated(ctx context.Context, now time.Time) ([]string, error)
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) ([]string, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, subject, description, category, priority, status,
       requester_id, requester_name, requester_email, department, sub_department,
       assigned_to, rating, response_time, resolution_time, escalation_reason,
       escalation_date, sla_due_date, sla_violated, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (subject, description, category, priority, status, requester_id, requester_name,
            requester_email, department, sub_department, assigned_to, sla_due_date, sla_violated, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$14)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.RequesterID,
		ticket.RequesterName,
		ticket.RequesterEmail,
		ticket.Department,
		ticket.SubDepartment,
		ticket.AssignedTo,
		ticket.SLADueDate,
		ticket.SLAViolated,
		ticket.CreatedAt,
	).Scan(&ticket.ID)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return scanTicket(r.pool.QueryRow(ctx, query, id))
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket, expectedUpdatedAt time.Time) error {
	const query = `
        UPDATE tickets SET subject=$1, description=$2, category=$3, priority=$4, status=$5,
            department=$6, sub_department=$7, assigned_to=$8, rating=$9, response_time=$10,
            resolution_time=$11, escalation_reason=$12, escalation_date=$13, sla_due_date=$14,
            sla_violated=$15, updated_at=$16
        WHERE id=$17 AND updated_at=$18`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.Department,
		ticket.SubDepartment,
		ticket.AssignedTo,
		ticket.Rating,
		ticket.ResponseTime,
		ticket.ResolutionTime,
		ticket.EscalationReason,
		ticket.EscalationDate,
		ticket.SLADueDate,
		ticket.SLAViolated,
		ticket.UpdatedAt,
		ticket.ID,
		expectedUpdatedAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE id=$1)`, ticket.ID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pgx.ErrNoRows
	}
	return ErrStaleTicket
}

func (r *ticketRepository) MarkOverdueSLAViolated(ctx context.Context, now time.Time) ([]string, error) {
	const query = `
        UPDATE tickets SET sla_violated=TRUE, updated_at=$1
        WHERE status <> 'Closed' AND sla_violated=FALSE AND sla_due_date < $1
        RETURNING id`
	return collectIDs(r.pool.Query(ctx, query, now))
}

func (r *ticketRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	return collectIDs(r.pool.Query(ctx, `DELETE FROM tickets WHERE created_at < $1 RETURNING id`, cutoff))
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Status,
		&ticket.RequesterID,
		&ticket.RequesterName,
		&ticket.RequesterEmail,
		&ticket.Department,
		&ticket.SubDepartment,
		&ticket.AssignedTo,
		&ticket.Rating,
		&ticket.ResponseTime,
		&ticket.ResolutionTime,
		&ticket.EscalationReason,
		&ticket.EscalationDate,
		&ticket.SLADueDate,
		&ticket.SLAViolated,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func collectIDs(rows pgx.Rows, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

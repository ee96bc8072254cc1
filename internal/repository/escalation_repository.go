package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EscalationRepository records ticket escalations.
type EscalationRepository interface {
	Create(ctx context.Context, e *domain.Escalation) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Escalation, error)
}

type escalationRepository struct {
	pool *pgxpool.Pool
}

// NewEscalationRepository builds repository.
func NewEscalationRepository(pool *pgxpool.Pool) EscalationRepository {
	return &escalationRepository{pool: pool}
}

func (r *escalationRepository) Create(ctx context.Context, e *domain.Escalation) error {
	const query = `
        INSERT INTO escalations (ticket_id, reason, description, timeline, escalated_by, resolved, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		e.TicketID,
		e.Reason,
		e.Description,
		e.Timeline,
		e.EscalatedBy,
		e.Resolved,
		e.CreatedAt,
	).Scan(&e.ID)
}

func (r *escalationRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Escalation, error) {
	const query = `
        SELECT id, ticket_id, reason, description, timeline, escalated_by, resolved, created_at
        FROM escalations WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Escalation
	for rows.Next() {
		var e domain.Escalation
		if err := rows.Scan(
			&e.ID,
			&e.TicketID,
			&e.Reason,
			&e.Description,
			&e.Timeline,
			&e.EscalatedBy,
			&e.Resolved,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

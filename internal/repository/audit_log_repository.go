package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AuditLogRepository stores the append-only audit trail.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	// ListByTicket returns entries newest first. A nil since admits every entry; limit <= 0 means unbounded.
	ListByTicket(ctx context.Context, ticketID string, since *time.Time, limit int) ([]domain.AuditLog, error)
	DeleteByTicketIDs(ctx context.Context, ticketIDs []string) (int64, error)
}

type auditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository builds repository.
func NewAuditLogRepository(pool *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepository{pool: pool}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	const query = `
        INSERT INTO audit_logs (ticket_id, action, details, performed_by, performed_by_name, old_value, new_value, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.Action,
		entry.Details,
		entry.PerformedBy,
		entry.PerformedByName,
		entry.OldValue,
		entry.NewValue,
		entry.CreatedAt,
	).Scan(&entry.ID)
}

func (r *auditLogRepository) ListByTicket(ctx context.Context, ticketID string, since *time.Time, limit int) ([]domain.AuditLog, error) {
	query := `
        SELECT id, ticket_id, action, details, performed_by, performed_by_name, old_value, new_value, created_at
        FROM audit_logs WHERE ticket_id=$1`
	args := []any{ticketID}
	if since != nil {
		args = append(args, *since)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditLog
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Action,
			&entry.Details,
			&entry.PerformedBy,
			&entry.PerformedByName,
			&entry.OldValue,
			&entry.NewValue,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *auditLogRepository) DeleteByTicketIDs(ctx context.Context, ticketIDs []string) (int64, error) {
	if len(ticketIDs) == 0 {
		return 0, nil
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM audit_logs WHERE ticket_id = ANY($1::uuid[])`, ticketIDs)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

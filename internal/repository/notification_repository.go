package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, email string, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, email string, at time.Time) error
	MarkAllRead(ctx context.Context, email string, at time.Time) (int64, error)
	CountUnread(ctx context.Context, email string) (int, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (user_email, title, message, type, read, ticket_id, created_at)
        VALUES ($1,$2,$3,$4,FALSE,$5,$6)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		n.UserEmail,
		n.Title,
		n.Message,
		n.Type,
		n.TicketID,
		n.CreatedAt,
	).Scan(&n.ID)
}

func (r *notificationRepository) ListByUser(ctx context.Context, email string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, user_email, title, message, type, read, ticket_id, created_at, read_at
        FROM notifications
        WHERE user_email=$1 AND ($2 = FALSE OR read = FALSE)
        ORDER BY created_at DESC
        LIMIT $3`
	rows, err := r.pool.Query(ctx, query, email, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserEmail,
			&n.Title,
			&n.Message,
			&n.Type,
			&n.Read,
			&n.TicketID,
			&n.CreatedAt,
			&n.ReadAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, email string, at time.Time) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read=TRUE, read_at=COALESCE(read_at, $3) WHERE id=$1 AND user_email=$2`,
		id, email, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, email string, at time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read=TRUE, read_at=$2 WHERE user_email=$1 AND read=FALSE`, email, at)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, email string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_email=$1 AND read=FALSE`, email).Scan(&count)
	return count, err
}

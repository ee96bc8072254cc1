package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AttachmentRepository persists attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	GetByID(ctx context.Context, id string) (*domain.Attachment, error)
	Delete(ctx context.Context, id string) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error)
	// ListByTicketCreatedBefore returns the attachments of tickets created before cutoff.
	ListByTicketCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Attachment, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

const attachmentColumns = `id, ticket_id, file_name, file_size, file_type, uploaded_by, storage_key, file_url, created_at`

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO ticket_attachments (ticket_id, file_name, file_size, file_type, uploaded_by, storage_key, file_url, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		attachment.TicketID,
		attachment.FileName,
		attachment.FileSize,
		attachment.FileType,
		attachment.UploadedBy,
		attachment.StorageKey,
		attachment.FileURL,
		attachment.CreatedAt,
	).Scan(&attachment.ID)
}

func (r *attachmentRepository) GetByID(ctx context.Context, id string) (*domain.Attachment, error) {
	return scanAttachment(r.pool.QueryRow(ctx, `SELECT `+attachmentColumns+` FROM ticket_attachments WHERE id=$1`, id))
}

func (r *attachmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM ticket_attachments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	return collectAttachments(r.pool.Query(ctx,
		`SELECT `+attachmentColumns+` FROM ticket_attachments WHERE ticket_id=$1 ORDER BY created_at ASC`, ticketID))
}

func (r *attachmentRepository) ListByTicketCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Attachment, error) {
	const query = `
        SELECT a.id, a.ticket_id, a.file_name, a.file_size, a.file_type, a.uploaded_by, a.storage_key, a.file_url, a.created_at
        FROM ticket_attachments a
        JOIN tickets t ON t.id = a.ticket_id
        WHERE t.created_at < $1`
	return collectAttachments(r.pool.Query(ctx, query, cutoff))
}

func collectAttachments(rows pgx.Rows, err error) ([]domain.Attachment, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		attachment, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *attachment)
	}
	return result, rows.Err()
}

func scanAttachment(row pgx.Row) (*domain.Attachment, error) {
	var attachment domain.Attachment
	if err := row.Scan(
		&attachment.ID,
		&attachment.TicketID,
		&attachment.FileName,
		&attachment.FileSize,
		&attachment.FileType,
		&attachment.UploadedBy,
		&attachment.StorageKey,
		&attachment.FileURL,
		&attachment.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &attachment, nil
}

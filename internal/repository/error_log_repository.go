package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ErrorLogRepository records swallowed failures for later inspection.
type ErrorLogRepository interface {
	Create(ctx context.Context, entry *domain.ErrorLog) error
}

type errorLogRepository struct {
	pool *pgxpool.Pool
}

// NewErrorLogRepository builds repository.
func NewErrorLogRepository(pool *pgxpool.Pool) ErrorLogRepository {
	return &errorLogRepository{pool: pool}
}

func (r *errorLogRepository) Create(ctx context.Context, entry *domain.ErrorLog) error {
	payload := entry.Context
	if payload == nil {
		payload = map[string]any{}
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO error_logs (source, message, context, created_at) VALUES ($1,$2,$3,$4) RETURNING id`,
		entry.Source, entry.Message, payload, entry.CreatedAt,
	).Scan(&entry.ID)
}

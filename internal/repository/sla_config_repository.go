package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// SLAConfigRepository stores per-category SLA overrides.
type SLAConfigRepository interface {
	Get(ctx context.Context, category domain.Category, priority domain.TicketPriority) (*domain.SLAConfig, error)
	Upsert(ctx context.Context, cfg *domain.SLAConfig) error
	List(ctx context.Context) ([]domain.SLAConfig, error)
}

type slaConfigRepository struct {
	pool *pgxpool.Pool
}

// NewSLAConfigRepository builds repository.
func NewSLAConfigRepository(pool *pgxpool.Pool) SLAConfigRepository {
	return &slaConfigRepository{pool: pool}
}

func (r *slaConfigRepository) Get(ctx context.Context, category domain.Category, priority domain.TicketPriority) (*domain.SLAConfig, error) {
	const query = `
        SELECT id, category, priority, response_hours, resolution_hours, created_at, updated_at
        FROM sla_configs WHERE category=$1 AND priority=$2`
	return scanSLAConfig(r.pool.QueryRow(ctx, query, category, priority))
}

func (r *slaConfigRepository) Upsert(ctx context.Context, cfg *domain.SLAConfig) error {
	const query = `
        INSERT INTO sla_configs (category, priority, response_hours, resolution_hours)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (category, priority)
        DO UPDATE SET response_hours=EXCLUDED.response_hours, resolution_hours=EXCLUDED.resolution_hours, updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		cfg.Category,
		cfg.Priority,
		cfg.ResponseHours,
		cfg.ResolutionHours,
	).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
}

func (r *slaConfigRepository) List(ctx context.Context) ([]domain.SLAConfig, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, category, priority, response_hours, resolution_hours, created_at, updated_at
        FROM sla_configs ORDER BY category, priority`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLAConfig
	for rows.Next() {
		cfg, err := scanSLAConfig(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *cfg)
	}
	return result, rows.Err()
}

func scanSLAConfig(row pgx.Row) (*domain.SLAConfig, error) {
	var cfg domain.SLAConfig
	if err := row.Scan(
		&cfg.ID,
		&cfg.Category,
		&cfg.Priority,
		&cfg.ResponseHours,
		&cfg.ResolutionHours,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cfg, nil
}

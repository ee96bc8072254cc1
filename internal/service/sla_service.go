package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// SLABudget is the response and resolution allowance for a ticket, in hours.
type SLABudget struct {
	ResponseHours   int
	ResolutionHours int
}

const (
	fallbackResolutionHours = 24
	fallbackResponseHours   = 4
)

var defaultBudgets = map[domain.TicketPriority]SLABudget{
	domain.TicketPriorityCritical: {ResponseHours: 1, ResolutionHours: 4},
	domain.TicketPriorityHigh:     {ResponseHours: 2, ResolutionHours: 8},
	domain.TicketPriorityMedium:   {ResponseHours: 4, ResolutionHours: 24},
	domain.TicketPriorityLow:      {ResponseHours: 8, ResolutionHours: 72},
}

// DefaultBudget returns the priority-only budget used when no SLAConfig row matches.
func DefaultBudget(priority domain.TicketPriority) SLABudget {
	if budget, ok := defaultBudgets[priority]; ok {
		return budget
	}
	return SLABudget{ResponseHours: fallbackResponseHours, ResolutionHours: fallbackResolutionHours}
}

// SLAService computes SLA budgets and due dates.
type SLAService struct {
	configs repository.SLAConfigRepository
	logger  *zap.Logger
}

// NewSLAService creates the service. A nil repository means only defaults apply.
func NewSLAService(configs repository.SLAConfigRepository, logger *zap.Logger) *SLAService {
	return &SLAService{configs: configs, logger: observability.OrNop(logger)}
}

// Budget prefers a configured (category, priority) row and falls back to the default table.
func (s *SLAService) Budget(ctx context.Context, category domain.Category, priority domain.TicketPriority) SLABudget {
	if s.configs != nil {
		cfg, err := s.configs.Get(ctx, category, priority)
		switch {
		case err == nil:
			return SLABudget{ResponseHours: cfg.ResponseHours, ResolutionHours: cfg.ResolutionHours}
		case !errors.Is(err, pgx.ErrNoRows):
			s.logger.Warn("sla config lookup failed; using defaults",
				zap.String("category", string(category)),
				zap.String("priority", string(priority)),
				zap.Error(err),
			)
		}
	}
	return DefaultBudget(priority)
}

// DueDate returns now plus the resolution budget.
func (s *SLAService) DueDate(ctx context.Context, category domain.Category, priority domain.TicketPriority, now time.Time) time.Time {
	budget := s.Budget(ctx, category, priority)
	return now.Add(time.Duration(budget.ResolutionHours) * time.Hour)
}

// ListConfigs returns every configured override.
func (s *SLAService) ListConfigs(ctx context.Context) ([]domain.SLAConfig, error) {
	configs, err := s.configs.List(ctx)
	if err != nil {
		return nil, apperrors.NewDependencyError("postgres", err)
	}
	if configs == nil {
		configs = []domain.SLAConfig{}
	}
	return configs, nil
}

// UpsertConfig stores the override for a (category, priority) pair.
func (s *SLAService) UpsertConfig(ctx context.Context, cfg domain.SLAConfig) (*domain.SLAConfig, error) {
	if !cfg.Category.Valid() {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": cfg.Category})
	}
	if !cfg.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": cfg.Priority})
	}
	if cfg.ResponseHours <= 0 || cfg.ResolutionHours <= 0 {
		return nil, apperrors.NewValidationError("sla hours must be positive", nil)
	}
	if cfg.ResponseHours > cfg.ResolutionHours {
		return nil, apperrors.NewValidationError("response budget exceeds resolution budget", nil)
	}
	if err := s.configs.Upsert(ctx, &cfg); err != nil {
		return nil, apperrors.NewDependencyError("postgres", err)
	}
	return &cfg, nil
}

package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// SystemPerformer is recorded on audit rows written by background jobs.
const SystemPerformer = "system"

// AuditService appends and reads the ticket audit trail.
type AuditService struct {
	logs  repository.AuditLogRepository
	users repository.UserRepository
	diag  diagnostics
	now   func() time.Time
}

// AuditDependencies bundles repositories for the audit service.
type AuditDependencies struct {
	AuditRepo    repository.AuditLogRepository
	UserRepo     repository.UserRepository
	ErrorLogRepo repository.ErrorLogRepository
	Logger       *zap.Logger
	Now          func() time.Time
}

// AuditEntryInput describes one audit append.
type AuditEntryInput struct {
	TicketID    string
	Action      domain.AuditAction
	Details     string
	PerformedBy string
	OldValue    *string
	NewValue    *string
}

// NewAuditService constructs the service.
func NewAuditService(deps AuditDependencies) *AuditService {
	now := clockOrDefault(deps.Now)
	return &AuditService{
		logs:  deps.AuditRepo,
		users: deps.UserRepo,
		diag: diagnostics{
			errorLogs: deps.ErrorLogRepo,
			logger:    observability.OrNop(deps.Logger).Named("audit"),
			now:       now,
		},
		now: now,
	}
}

// Append validates the performer and inserts an immutable entry stamped with the server clock.
func (s *AuditService) Append(ctx context.Context, in AuditEntryInput) (*domain.AuditLog, error) {
	performer, err := resolveUser(ctx, s.users, in.PerformedBy)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.diag.record(ctx, "audit.append", err, auditContext(in))
		}
		return nil, err
	}
	return s.insert(ctx, in, performer.Email, performer.DisplayName())
}

// appendSystem writes an entry on behalf of the service itself; there is no user to validate.
func (s *AuditService) appendSystem(ctx context.Context, in AuditEntryInput) (*domain.AuditLog, error) {
	return s.insert(ctx, in, SystemPerformer, "System")
}

func (s *AuditService) insert(ctx context.Context, in AuditEntryInput, performer, performerName string) (*domain.AuditLog, error) {
	entry := &domain.AuditLog{
		TicketID:        in.TicketID,
		Action:          in.Action,
		Details:         in.Details,
		PerformedBy:     performer,
		PerformedByName: performerName,
		OldValue:        in.OldValue,
		NewValue:        in.NewValue,
		CreatedAt:       s.now(),
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		s.diag.record(ctx, "audit.append", err, auditContext(in))
		return nil, apperrors.NewDependencyError("postgres", err)
	}
	return entry, nil
}

// Query returns entries newest first, restricted by filter and capped by limit after ordering.
func (s *AuditService) Query(ctx context.Context, ticketID string, filter domain.AuditDateFilter, limit int) ([]domain.AuditLog, error) {
	since, ok := filter.Cutoff(s.now())
	if !ok {
		return nil, apperrors.NewValidationError("invalid date filter", map[string]any{"filter": filter})
	}
	if limit < 0 {
		return nil, apperrors.NewValidationError("limit must not be negative", map[string]any{"limit": limit})
	}
	if err := checkID("ticket", ticketID, map[string]any{"ticket_id": ticketID}); err != nil {
		return nil, err
	}
	entries, err := s.logs.ListByTicket(ctx, ticketID, since, limit)
	if err != nil {
		s.diag.record(ctx, "audit.query", err, map[string]any{"ticket_id": ticketID})
		return nil, apperrors.NewDependencyError("postgres", err)
	}
	if entries == nil {
		entries = []domain.AuditLog{}
	}
	return entries, nil
}

// Stats counts a ticket's entries per window from a single read at a single instant.
func (s *AuditService) Stats(ctx context.Context, ticketID string) (*domain.AuditStats, error) {
	if err := checkID("ticket", ticketID, map[string]any{"ticket_id": ticketID}); err != nil {
		return nil, err
	}
	now := s.now()
	entries, err := s.logs.ListByTicket(ctx, ticketID, nil, 0)
	if err != nil {
		s.diag.record(ctx, "audit.stats", err, map[string]any{"ticket_id": ticketID})
		return nil, apperrors.NewDependencyError("postgres", err)
	}

	today, _ := domain.AuditFilterToday.Cutoff(now)
	week, _ := domain.AuditFilter7Days.Cutoff(now)
	month, _ := domain.AuditFilter30Days.Cutoff(now)

	stats := &domain.AuditStats{ByAction: map[domain.AuditAction]int{}}
	for _, entry := range entries {
		stats.Total++
		stats.ByAction[entry.Action]++
		if !entry.CreatedAt.Before(*today) {
			stats.Today++
		}
		if !entry.CreatedAt.Before(*week) {
			stats.Last7Days++
		}
		if !entry.CreatedAt.Before(*month) {
			stats.Last30Days++
		}
	}
	return stats, nil
}

func auditContext(in AuditEntryInput) map[string]any {
	return map[string]any{
		"ticket_id":    in.TicketID,
		"action":       string(in.Action),
		"performed_by": in.PerformedBy,
	}
}

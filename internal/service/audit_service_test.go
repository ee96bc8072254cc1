package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const (
	auditTicketID = "6f1c2a9e-4b7d-4e2a-9c31-5d8e7f0a1b23"
	otherTicketID = "0d9e8f7a-6b5c-4d3e-8f1a-2b3c4d5e6f70"
)

func TestAppendRequiresKnownPerformer(t *testing.T) {
	h := newHarness(t)

	_, err := h.audit.Append(context.Background(), AuditEntryInput{
		TicketID:    auditTicketID,
		Action:      domain.AuditActionUpdated,
		PerformedBy: "stranger@example.com",
	})
	assert.True(t, apperrors.IsNotFound(err))
	assert.Empty(t, h.auditLogs.entries)
}

func TestAppendStampsServerClockAndPerformerName(t *testing.T) {
	h := newHarness(t)

	entry, err := h.audit.Append(context.Background(), AuditEntryInput{
		TicketID:    auditTicketID,
		Action:      domain.AuditActionStatusChanged,
		Details:     "Status changed",
		PerformedBy: " HR1@Example.com ",
	})
	require.NoError(t, err)
	assert.Equal(t, "hr1@example.com", entry.PerformedBy)
	assert.Equal(t, "hr1@example.com", entry.PerformedByName)
	assert.Equal(t, h.clock.Now(), entry.CreatedAt)
}

func TestAppendStoreFailureIsDependencyError(t *testing.T) {
	h := newHarness(t)
	h.auditLogs.createErr = errBoom

	_, err := h.audit.Append(context.Background(), AuditEntryInput{
		TicketID:    auditTicketID,
		Action:      domain.AuditActionUpdated,
		PerformedBy: "hr1@example.com",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDependency))
	assert.Equal(t, 1, h.errorLogs.count())
}

func TestQueryFiltersNewestFirst(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	appendAt := func(age time.Duration, action domain.AuditAction) {
		h.auditLogs.entries = append(h.auditLogs.entries, domain.AuditLog{
			ID:          string(action) + age.String(),
			TicketID:    auditTicketID,
			Action:      action,
			PerformedBy: "hr1@example.com",
			CreatedAt:   h.clock.Now().Add(-age),
		})
	}
	appendAt(40*24*time.Hour, domain.AuditActionCreated)
	appendAt(10*24*time.Hour, domain.AuditActionAssigned)
	appendAt(3*24*time.Hour, domain.AuditActionStatusChanged)
	appendAt(time.Minute, domain.AuditActionUpdated)

	all, err := h.audit.Query(ctx, auditTicketID, domain.AuditFilterAll, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, domain.AuditActionUpdated, all[0].Action)
	assert.Equal(t, domain.AuditActionCreated, all[3].Action)

	week, err := h.audit.Query(ctx, auditTicketID, domain.AuditFilter7Days, 0)
	require.NoError(t, err)
	assert.Len(t, week, 2)

	month, err := h.audit.Query(ctx, auditTicketID, domain.AuditFilter30Days, 1)
	require.NoError(t, err)
	require.Len(t, month, 1)
	assert.Equal(t, domain.AuditActionUpdated, month[0].Action)

	other, err := h.audit.Query(ctx, otherTicketID, "", 0)
	require.NoError(t, err)
	assert.NotNil(t, other)
	assert.Empty(t, other)

	_, err = h.audit.Query(ctx, auditTicketID, "yesterday", 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = h.audit.Query(ctx, "t-1", domain.AuditFilterAll, 0)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestStatsAgreesWithQueryPerWindow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	ages := []time.Duration{
		time.Minute,
		5 * time.Hour,
		10 * time.Hour,
		3 * 24 * time.Hour,
		7*24*time.Hour - time.Second,
		8 * 24 * time.Hour,
		29 * 24 * time.Hour,
		31 * 24 * time.Hour,
		40 * 24 * time.Hour,
	}
	for i, age := range ages {
		h.auditLogs.entries = append(h.auditLogs.entries, domain.AuditLog{
			ID:          age.String(),
			TicketID:    auditTicketID,
			Action:      []domain.AuditAction{domain.AuditActionUpdated, domain.AuditActionAssigned}[i%2],
			PerformedBy: "hr1@example.com",
			CreatedAt:   h.clock.Now().Add(-age),
		})
	}

	stats, err := h.audit.Stats(ctx, auditTicketID)
	require.NoError(t, err)

	windows := map[domain.AuditDateFilter]int{
		domain.AuditFilterAll:    stats.Total,
		domain.AuditFilterToday:  stats.Today,
		domain.AuditFilter7Days:  stats.Last7Days,
		domain.AuditFilter30Days: stats.Last30Days,
	}
	for filter, counted := range windows {
		entries, err := h.audit.Query(ctx, auditTicketID, filter, 0)
		require.NoError(t, err)
		assert.Len(t, entries, counted, "filter %s", filter)
	}

	byAction := 0
	for _, n := range stats.ByAction {
		byAction += n
	}
	assert.Equal(t, stats.Total, byAction)
	assert.Equal(t, len(ages), stats.Total)
}

func TestStatsCountsWindowsAndActions(t *testing.T) {
	h := newHarness(t)
	ticket := h.createTicket(t, domain.CategoryHR, domain.TicketPriorityLow)
	priority := domain.TicketPriorityHigh
	_, err := h.ticketsSv.Update(context.Background(), ticket.ID, TicketPatch{Priority: &priority}, "hr1@example.com")
	require.NoError(t, err)

	h.clock.Advance(10 * 24 * time.Hour)
	status := domain.TicketStatusInProgress
	_, err = h.ticketsSv.Update(context.Background(), ticket.ID, TicketPatch{Status: &status}, "hr1@example.com")
	require.NoError(t, err)

	stats, err := h.audit.Stats(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Today)
	assert.Equal(t, 1, stats.Last7Days)
	assert.Equal(t, 3, stats.Last30Days)
	assert.Equal(t, map[domain.AuditAction]int{
		domain.AuditActionCreated:       1,
		domain.AuditActionUpdated:       1,
		domain.AuditActionStatusChanged: 1,
	}, stats.ByAction)
}

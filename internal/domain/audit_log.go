package domain

import "time"

// AuditAction tags what an audit entry records.
type AuditAction string

const (
	AuditActionCreated           AuditAction = "created"
	AuditActionUpdated           AuditAction = "updated"
	AuditActionStatusChanged     AuditAction = "status_changed"
	AuditActionAssigned          AuditAction = "assigned"
	AuditActionEscalated         AuditAction = "escalated"
	AuditActionAttachmentAdded   AuditAction = "attachment_added"
	AuditActionAttachmentDeleted AuditAction = "attachment_deleted"
	AuditActionBulkDeleted       AuditAction = "bulk_deleted"
)

// AuditLog is an immutable audit trail entry.
type AuditLog struct {
	ID              string
	TicketID        string
	Action          AuditAction
	Details         string
	PerformedBy     string
	PerformedByName string
	OldValue        *string
	NewValue        *string
	CreatedAt       time.Time
}

// AuditDateFilter restricts audit queries by age.
type AuditDateFilter string

const (
	AuditFilterAll    AuditDateFilter = "all"
	AuditFilterToday  AuditDateFilter = "today"
	AuditFilter7Days  AuditDateFilter = "7days"
	AuditFilter30Days AuditDateFilter = "30days"
)

// Cutoff returns the earliest timestamp admitted by f at now, or nil for "all".
func (f AuditDateFilter) Cutoff(now time.Time) (*time.Time, bool) {
	var cutoff time.Time
	switch f {
	case AuditFilterAll, "":
		return nil, true
	case AuditFilterToday:
		y, m, d := now.Date()
		cutoff = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case AuditFilter7Days:
		cutoff = now.AddDate(0, 0, -7)
	case AuditFilter30Days:
		cutoff = now.AddDate(0, 0, -30)
	default:
		return nil, false
	}
	return &cutoff, true
}

// AuditStats summarizes a ticket's audit trail.
type AuditStats struct {
	Total      int
	Today      int
	Last7Days  int
	Last30Days int
	ByAction   map[AuditAction]int
}

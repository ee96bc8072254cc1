package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AuditLogResponse is one audit entry.
type AuditLogResponse struct {
	ID              string             `json:"id"`
	TicketID        string             `json:"ticket_id"`
	Action          domain.AuditAction `json:"action"`
	Details         string             `json:"details"`
	PerformedBy     string             `json:"performed_by"`
	PerformedByName string             `json:"performed_by_name"`
	OldValue        *string            `json:"old_value"`
	NewValue        *string            `json:"new_value"`
	CreatedAt       time.Time          `json:"created_at"`
}

// AuditStatsResponse summarizes a ticket's audit trail.
type AuditStatsResponse struct {
	Total      int                        `json:"total"`
	Today      int                        `json:"today"`
	Last7Days  int                        `json:"last7Days"`
	Last30Days int                        `json:"last30Days"`
	ByAction   map[domain.AuditAction]int `json:"byAction"`
}

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Type      domain.NotificationType `json:"type"`
	Read      bool                    `json:"read"`
	TicketID  *string                 `json:"ticket_id"`
	CreatedAt time.Time               `json:"created_at"`
	ReadAt    *time.Time              `json:"read_at"`
}

// SLAConfigRequest upserts one SLA override.
type SLAConfigRequest struct {
	Category        string `json:"category" validate:"required,category"`
	Priority        string `json:"priority" validate:"required,priority"`
	ResponseHours   int    `json:"response_hours" validate:"gt=0"`
	ResolutionHours int    `json:"resolution_hours" validate:"gt=0,gtefield=ResponseHours"`
}

// SLAConfigResponse is one SLA override.
type SLAConfigResponse struct {
	ID              string                `json:"id"`
	Category        domain.Category       `json:"category"`
	Priority        domain.TicketPriority `json:"priority"`
	ResponseHours   int                   `json:"response_hours"`
	ResolutionHours int                   `json:"resolution_hours"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// NewAuditLogResponse maps an audit entry.
func NewAuditLogResponse(e domain.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:              e.ID,
		TicketID:        e.TicketID,
		Action:          e.Action,
		Details:         e.Details,
		PerformedBy:     e.PerformedBy,
		PerformedByName: e.PerformedByName,
		OldValue:        e.OldValue,
		NewValue:        e.NewValue,
		CreatedAt:       e.CreatedAt,
	}
}

// NewNotificationResponse maps a notification.
func NewNotificationResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.Read,
		TicketID:  n.TicketID,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
}

// NewSLAConfigResponse maps an SLA override.
func NewSLAConfigResponse(c domain.SLAConfig) SLAConfigResponse {
	return SLAConfigResponse{
		ID:              c.ID,
		Category:        c.Category,
		Priority:        c.Priority,
		ResponseHours:   c.ResponseHours,
		ResolutionHours: c.ResolutionHours,
		UpdatedAt:       c.UpdatedAt,
	}
}

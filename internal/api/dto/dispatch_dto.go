package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// StatusNotification selects the chat-message path of the dispatch endpoint.
const StatusNotification = "Notification"

// DispatchRequest is the body accepted by the notification dispatch endpoint.
type DispatchRequest struct {
	TicketID         string   `json:"ticket_id" validate:"required"`
	EmployeeEmail    string   `json:"employee_email" validate:"omitempty,email"`
	HREmails         []string `json:"hr_emails" validate:"omitempty,dive,email"`
	Subject          string   `json:"subject" validate:"required"`
	Status           string   `json:"status" validate:"required"`
	EscalationReason string   `json:"escalation_reason"`
	EmployeeName     string   `json:"employee_name"`
	EmployeeID       string   `json:"employee_id"`
	Department       string   `json:"department"`
	Category         string   `json:"category" validate:"omitempty,category"`
	MessageContent   string   `json:"message_content" validate:"required_if=Status Notification"`
	SenderRole       string   `json:"sender_role" validate:"required_if=Status Notification"`
}

// EventType maps the request status onto a lifecycle event type.
func (r DispatchRequest) EventType() events.EventType {
	switch r.Status {
	case StatusNotification:
		return events.EventTicketMessage
	case string(domain.TicketStatusEscalated):
		return events.EventTicketEscalated
	default:
		return events.EventTicketUpdated
	}
}

// ToEvent converts the request into a gateway event.
func (r DispatchRequest) ToEvent(id string, at time.Time) events.Event {
	ev := events.Event{
		ID:               id,
		Type:             r.EventType(),
		Timestamp:        at,
		TicketID:         r.TicketID,
		Subject:          r.Subject,
		Category:         domain.Category(r.Category),
		EmployeeEmail:    domain.NormalizeEmail(r.EmployeeEmail),
		EmployeeName:     r.EmployeeName,
		EmployeeID:       r.EmployeeID,
		Department:       r.Department,
		EscalationReason: strings.TrimSpace(r.EscalationReason),
		MessageContent:   r.MessageContent,
		SenderRole:       domain.Role(r.SenderRole),
	}
	if ev.Type != events.EventTicketMessage {
		ev.Status = domain.TicketStatus(r.Status)
	}
	for _, email := range r.HREmails {
		ev.HREmails = append(ev.HREmails, domain.NormalizeEmail(email))
	}
	return ev
}

// DispatchResults reports delivery outcomes.
type DispatchResults struct {
	DMSent      []string `json:"dmSent"`
	WebhookSent bool     `json:"webhookSent"`
}

// DispatchResponse is the success body of the dispatch endpoint.
type DispatchResponse struct {
	Success bool            `json:"success"`
	Results DispatchResults `json:"results"`
}

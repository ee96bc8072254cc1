package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketUpdated   EventType = "ticket_updated"
	EventTicketEscalated EventType = "ticket_escalated"
	EventTicketMessage   EventType = "ticket_message"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventTicketCreated, EventTicketUpdated, EventTicketEscalated, EventTicketMessage:
		return true
	}
	return false
}

// Event is the ticket snapshot handed to external dispatch.
type Event struct {
	ID               string                `json:"id"`
	Type             EventType             `json:"type"`
	Timestamp        time.Time             `json:"timestamp"`
	TicketID         string                `json:"ticketId"`
	Subject          string                `json:"subject"`
	Status           domain.TicketStatus   `json:"status"`
	Category         domain.Category       `json:"category"`
	Priority         domain.TicketPriority `json:"priority,omitempty"`
	EmployeeEmail    string                `json:"employeeEmail"`
	EmployeeName     string                `json:"employeeName"`
	EmployeeID       string                `json:"employeeId"`
	Department       string                `json:"department,omitempty"`
	HREmails         []string              `json:"hrEmails,omitempty"`
	EscalationReason string                `json:"escalationReason,omitempty"`
	MessageContent   string                `json:"messageContent,omitempty"`
	SenderRole       domain.Role           `json:"senderRole,omitempty"`
}

// NewTicketEvent snapshots ticket into an event of type t.
func NewTicketEvent(id string, t EventType, ticket *domain.Ticket, at time.Time) Event {
	ev := Event{
		ID:            id,
		Type:          t,
		Timestamp:     at,
		TicketID:      ticket.ID,
		Subject:       ticket.Subject,
		Status:        ticket.Status,
		Category:      ticket.Category,
		Priority:      ticket.Priority,
		EmployeeEmail: ticket.RequesterEmail,
		EmployeeName:  ticket.RequesterName,
		EmployeeID:    ticket.RequesterID,
	}
	if ticket.Department != nil {
		ev.Department = *ticket.Department
	}
	if ticket.EscalationReason != nil {
		ev.EscalationReason = *ticket.EscalationReason
	}
	return ev
}

package domain

import (
	"math"
	"time"
)

// Category routes a ticket to the team that owns it.
type Category string

const (
	CategoryITInfrastructure Category = "IT Infrastructure"
	CategoryHR               Category = "HR"
	CategoryAdministration   Category = "Administration"
	CategoryAccounts         Category = "Accounts"
	CategoryOthers           Category = "Others"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryITInfrastructure,
	CategoryHR,
	CategoryAdministration,
	CategoryAccounts,
	CategoryOthers,
}

// Valid reports whether c is one of the closed category set.
func (c Category) Valid() bool {
	for _, candidate := range Categories {
		if c == candidate {
			return true
		}
	}
	return false
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusEscalated  TicketStatus = "Escalated"
	TicketStatusClosed     TicketStatus = "Closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusEscalated, TicketStatusClosed:
		return true
	}
	return false
}

// SystemTicketID is the reserved ticket id used for audit rows that describe bulk actions.
const SystemTicketID = "00000000-0000-0000-0000-000000000000"

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID               string
	Subject          string
	Description      string
	Category         Category
	Priority         TicketPriority
	Status           TicketStatus
	RequesterID      string
	RequesterName    string
	RequesterEmail   string
	Department       *string
	SubDepartment    *string
	AssignedTo       *string
	Rating           *int
	ResponseTime     *float64
	ResolutionTime   *float64
	EscalationReason *string
	EscalationDate   *time.Time
	SLADueDate       time.Time
	SLAViolated      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Attachments []Attachment
	Messages    []ChatMessage
}

// ElapsedHours returns hours between from and to rounded to two decimals.
func ElapsedHours(from, to time.Time) float64 {
	hours := to.Sub(from).Hours()
	if hours < 0 {
		hours = 0
	}
	return math.Round(hours*100) / 100
}

// AssigneeEmail returns the assignee or an empty string.
func (t *Ticket) AssigneeEmail() string {
	if t == nil || t.AssignedTo == nil {
		return ""
	}
	return *t.AssignedTo
}

// Clone returns a copy that does not share pointer fields with t.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	out := *t
	out.Department = cloneString(t.Department)
	out.SubDepartment = cloneString(t.SubDepartment)
	out.AssignedTo = cloneString(t.AssignedTo)
	out.EscalationReason = cloneString(t.EscalationReason)
	if t.Rating != nil {
		v := *t.Rating
		out.Rating = &v
	}
	if t.ResponseTime != nil {
		v := *t.ResponseTime
		out.ResponseTime = &v
	}
	if t.ResolutionTime != nil {
		v := *t.ResolutionTime
		out.ResolutionTime = &v
	}
	if t.EscalationDate != nil {
		v := *t.EscalationDate
		out.EscalationDate = &v
	}
	out.Attachments = append([]Attachment(nil), t.Attachments...)
	out.Messages = append([]ChatMessage(nil), t.Messages...)
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

package domain

import "time"

// Escalation records a raise in a ticket's urgency.
type Escalation struct {
	ID          string
	TicketID    string
	Reason      string
	Description string
	Timeline    string
	EscalatedBy string
	Resolved    bool
	CreatedAt   time.Time
}

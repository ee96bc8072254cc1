package domain

import "time"

// SLAConfig overrides the default SLA budget for one (category, priority) pair.
type SLAConfig struct {
	ID              string
	Category        Category
	Priority        TicketPriority
	ResponseHours   int
	ResolutionHours int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

package domain

import "time"

// ChatMessage is one append-only entry in a ticket's conversation.
type ChatMessage struct {
	ID          string
	TicketID    string
	SenderID    string
	SenderName  string
	SenderEmail string
	SenderRole  Role
	Message     string
	CreatedAt   time.Time
}

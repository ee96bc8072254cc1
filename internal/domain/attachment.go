package domain

import "time"

// Attachment stores metadata for a file uploaded to a ticket.
type Attachment struct {
	ID         string
	TicketID   string
	FileName   string
	FileSize   int64
	FileType   string
	UploadedBy string
	StorageKey string
	FileURL    string
	CreatedAt  time.Time
}

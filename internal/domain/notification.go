package domain

import "time"

// NotificationType is the severity shown to the recipient.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID        string
	UserEmail string
	Title     string
	Message   string
	Type      NotificationType
	Read      bool
	TicketID  *string
	CreatedAt time.Time
	ReadAt    *time.Time
}

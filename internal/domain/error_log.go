package domain

import "time"

// ErrorLog is a diagnostic record for failures that were not surfaced to the caller.
type ErrorLog struct {
	ID        string
	Source    string
	Message   string
	Context   map[string]any
	CreatedAt time.Time
}

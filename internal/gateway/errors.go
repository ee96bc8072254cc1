package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// StatusError is a non-2xx reply from the chat provider or a webhook.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Status, e.Body)
}

// RecipientError ties a direct-message failure to its recipient.
type RecipientError struct {
	Recipient string
	Err       error
}

func (e *RecipientError) Error() string {
	return fmt.Sprintf("direct message to %s: %v", e.Recipient, e.Err)
}

func (e *RecipientError) Unwrap() error { return e.Err }

// WebhookError ties a webhook failure to its category.
type WebhookError struct {
	Category domain.Category
	Err      error
}

func (e *WebhookError) Error() string {
	return fmt.Sprintf("webhook for %s: %v", e.Category, e.Err)
}

func (e *WebhookError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err carries an HTTP 429 reply.
func IsRateLimited(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Status == http.StatusTooManyRequests
}

func isNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound
}

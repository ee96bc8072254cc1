package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// NotificationService is the in-app notification store.
type NotificationService struct {
	notifications repository.NotificationRepository
	now           func() time.Time
}

// NotificationInput describes a notification to append.
type NotificationInput struct {
	UserEmail string
	Title     string
	Message   string
	Type      domain.NotificationType
	TicketID  *string
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, now func() time.Time) *NotificationService {
	return &NotificationService{notifications: notifications, now: clockOrDefault(now)}
}

// Notify appends an unread notification addressed to in.UserEmail.
func (s *NotificationService) Notify(ctx context.Context, in NotificationInput) (*domain.Notification, error) {
	email := domain.NormalizeEmail(in.UserEmail)
	if email == "" {
		return nil, apperrors.NewValidationError("notification recipient is required", nil)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperrors.NewValidationError("notification title is required", nil)
	}
	kind := in.Type
	switch kind {
	case domain.NotificationInfo, domain.NotificationSuccess, domain.NotificationWarning, domain.NotificationError:
	case "":
		kind = domain.NotificationInfo
	default:
		return nil, apperrors.NewValidationError("invalid notification type", map[string]any{"type": kind})
	}

	n := &domain.Notification{
		UserEmail: email,
		Title:     in.Title,
		Message:   in.Message,
		Type:      kind,
		TicketID:  in.TicketID,
		CreatedAt: s.now(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, apperrors.NewDependencyError("postgres", err)
	}
	return n, nil
}

// List returns a user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userEmail string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	items, err := s.notifications.ListByUser(ctx, domain.NormalizeEmail(userEmail), unreadOnly, limit)
	if err != nil {
		return nil, apperrors.NewDependencyError("postgres", err)
	}
	if items == nil {
		items = []domain.Notification{}
	}
	return items, nil
}

// UnreadCount returns how many of the user's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, userEmail string) (int, error) {
	count, err := s.notifications.CountUnread(ctx, domain.NormalizeEmail(userEmail))
	if err != nil {
		return 0, apperrors.NewDependencyError("postgres", err)
	}
	return count, nil
}

// MarkRead flips one notification to read. Ids owned by other users are reported as missing.
func (s *NotificationService) MarkRead(ctx context.Context, id, userEmail string) error {
	if err := checkID("notification", id, map[string]any{"notification_id": id}); err != nil {
		return err
	}
	if err := s.notifications.MarkRead(ctx, id, domain.NormalizeEmail(userEmail), s.now()); err != nil {
		return storeError("notification", err, map[string]any{"notification_id": id})
	}
	return nil
}

// MarkAllRead marks every unread notification for the user and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userEmail string) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, domain.NormalizeEmail(userEmail), s.now())
	if err != nil {
		return 0, apperrors.NewDependencyError("postgres", err)
	}
	return n, nil
}

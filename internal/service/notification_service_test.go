package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func TestNotifyDefaultsAndValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	n, err := h.notifier.Notify(ctx, NotificationInput{UserEmail: " Alice@Example.com", Title: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", n.UserEmail)
	assert.Equal(t, domain.NotificationInfo, n.Type)
	assert.False(t, n.Read)
	assert.Equal(t, h.clock.Now(), n.CreatedAt)

	_, err = h.notifier.Notify(ctx, NotificationInput{Title: "Hello"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = h.notifier.Notify(ctx, NotificationInput{UserEmail: "alice@example.com", Title: "Hello", Type: "urgent"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestMarkReadIsScopedToOwner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	n, err := h.notifier.Notify(ctx, NotificationInput{UserEmail: "alice@example.com", Title: "One"})
	require.NoError(t, err)
	_, err = h.notifier.Notify(ctx, NotificationInput{UserEmail: "alice@example.com", Title: "Two"})
	require.NoError(t, err)

	err = h.notifier.MarkRead(ctx, n.ID, "hr1@example.com")
	assert.True(t, apperrors.IsNotFound(err))

	h.clock.Advance(time.Minute)
	require.NoError(t, h.notifier.MarkRead(ctx, n.ID, "ALICE@example.com"))
	count, err := h.notifier.UnreadCount(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	unread, err := h.notifier.List(ctx, "alice@example.com", true, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "Two", unread[0].Title)

	all, err := h.notifier.List(ctx, "alice@example.com", false, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[1].ReadAt)
	assert.Equal(t, h.clock.Now(), *all[1].ReadAt)
}

func TestMarkAllRead(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		_, err := h.notifier.Notify(ctx, NotificationInput{UserEmail: "hr1@example.com", Title: title})
		require.NoError(t, err)
	}
	_, err := h.notifier.Notify(ctx, NotificationInput{UserEmail: "hr2@example.com", Title: "other"})
	require.NoError(t, err)

	n, err := h.notifier.MarkAllRead(ctx, "hr1@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = h.notifier.MarkAllRead(ctx, "hr1@example.com")
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := h.notifier.UnreadCount(ctx, "hr2@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestListReturnsEmptySlice(t *testing.T) {
	h := newHarness(t)
	items, err := h.notifier.List(context.Background(), "nobody@example.com", false, 10)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giglink_backend/internal/repositories"
	"giglink_backend/internal/services/dto"
	"giglink_backend/pkg/apperrors"
)

type capturedPush struct {
	userID  string
	event   string
	payload any
}

type fakePusher struct {
	mu     sync.Mutex
	pushes []capturedPush
}

func (f *fakePusher) PushToUser(userID, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, capturedPush{userID: userID, event: event, payload: payload})
}

func (f *fakePusher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushes)
}

func newNotificationTestEnv(t *testing.T, queueSize int) (NotificationService, repositories.NotificationRepository, *fakePusher) {
	t.Helper()

	db := setupTestDB(t)
	repo := repositories.NewNotificationRepository(db)
	pusher := &fakePusher{}
	return NewNotificationService(repo, pusher, queueSize), repo, pusher
}

func TestNotificationService_NotifyPersistsAndPushes(t *testing.T) {
	service, repo, pusher := newNotificationTestEnv(t, 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.Run(ctx)

	response, err := service.Notify("user-1", "booking.requested", "New booking request",
		"Aikerim sent you a booking request", "/requests",
		map[string]any{"booking_id": "booking-1"})
	require.NoError(t, err)
	require.NotEmpty(t, response.ID)
	assert.Nil(t, response.ReadAt)

	// Durable record exists regardless of push delivery.
	stored, err := repo.FindByID(response.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", stored.UserID)
	assert.Equal(t, "booking.requested", stored.Type)

	require.Eventually(t, func() bool { return pusher.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	pusher.mu.Lock()
	push := pusher.pushes[0]
	pusher.mu.Unlock()
	assert.Equal(t, "user-1", push.userID)
	assert.Equal(t, PushEventName, push.event)
	payload, ok := push.payload.(*dto.NotificationResponse)
	require.True(t, ok)
	assert.Equal(t, response.ID, payload.ID)
}

func TestNotificationService_QueueFullDropsPushKeepsRecord(t *testing.T) {
	// Worker not running: the 1-slot queue fills after the first Notify.
	service, repo, _ := newNotificationTestEnv(t, 1)

	first, err := service.Notify("user-1", "booking.requested", "t", "m", "", nil)
	require.NoError(t, err)
	second, err := service.Notify("user-1", "booking.requested", "t", "m", "", nil)
	require.NoError(t, err)

	// Both notifications are persisted even though one push was dropped.
	_, err = repo.FindByID(first.ID)
	require.NoError(t, err)
	_, err = repo.FindByID(second.ID)
	require.NoError(t, err)
}

func TestNotificationService_ListAndUnreadCount(t *testing.T) {
	service, _, _ := newNotificationTestEnv(t, 16)

	for i := 0; i < 5; i++ {
		_, err := service.Notify("user-1", "booking.requested", "t", fmt.Sprintf("m%d", i), "", nil)
		require.NoError(t, err)
	}
	_, err := service.Notify("user-2", "booking.requested", "t", "other", "", nil)
	require.NoError(t, err)

	list, err := service.GetUserNotifications("user-1", 3)
	require.NoError(t, err)
	assert.Len(t, list.Notifications, 3)
	assert.Equal(t, int64(5), list.UnreadCount)

	// Newest first.
	assert.Equal(t, "m4", list.Notifications[0].Message)
}

func TestNotificationService_LimitClamped(t *testing.T) {
	service, _, _ := newNotificationTestEnv(t, 64)

	for i := 0; i < 60; i++ {
		_, err := service.Notify("user-1", "booking.requested", "t", "m", "", nil)
		require.NoError(t, err)
	}

	list, err := service.GetUserNotifications("user-1", 0)
	require.NoError(t, err)
	assert.Len(t, list.Notifications, defaultNotificationLimit)

	list, err = service.GetUserNotifications("user-1", 500)
	require.NoError(t, err)
	assert.Len(t, list.Notifications, maxNotificationLimit)
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	service, repo, _ := newNotificationTestEnv(t, 16)

	created, err := service.Notify("user-1", "booking.requested", "t", "m", "", nil)
	require.NoError(t, err)

	// Only the owner may mark it read.
	err = service.MarkAsRead("user-2", created.ID)
	assertAppErrorCode(t, err, apperrors.CodeForbidden)

	require.NoError(t, service.MarkAsRead("user-1", created.ID))
	stored, err := repo.FindByID(created.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.ReadAt)

	// Marking twice leaves the original read timestamp.
	firstReadAt := *stored.ReadAt
	require.NoError(t, service.MarkAsRead("user-1", created.ID))
	stored, err = repo.FindByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, firstReadAt.Unix(), stored.ReadAt.Unix())

	err = service.MarkAsRead("user-1", "00000000-0000-0000-0000-000000000000")
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestNotificationService_MarkAllAsRead(t *testing.T) {
	service, _, _ := newNotificationTestEnv(t, 16)

	for i := 0; i < 3; i++ {
		_, err := service.Notify("user-1", "booking.requested", "t", "m", "", nil)
		require.NoError(t, err)
	}

	require.NoError(t, service.MarkAllAsRead("user-1"))

	list, err := service.GetUserNotifications("user-1", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), list.UnreadCount)
	for _, n := range list.Notifications {
		assert.NotNil(t, n.ReadAt)
	}
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"

	"giglink_backend/internal/logger"
	"giglink_backend/internal/models"
	"giglink_backend/internal/repositories"
	"giglink_backend/internal/services/dto"
	"giglink_backend/pkg/apperrors"
)

// PushEventName is the websocket event carrying a notification payload.
const PushEventName = "notification"

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 50
)

// LivePusher delivers an event to a user's live channel, if one is attached.
// Implemented by the websocket manager; delivery is best-effort and must
// never block.
type LivePusher interface {
	PushToUser(userID, event string, payload any)
}

type NotificationService interface {
	// Notify persists a notification and queues a best-effort live push.
	// The persisted record is the source of truth; the push may be dropped.
	Notify(userID, ntype, title, message, link string, data map[string]any) (*dto.NotificationResponse, error)

	GetUserNotifications(userID string, limit int) (*dto.NotificationListResponse, error)
	MarkAsRead(userID, notificationID string) error
	MarkAllAsRead(userID string) error

	// Factory methods for the booking lifecycle events.
	NotifyBookingRequested(professionalID, bookingID, clientName string) error
	NotifyBookingAccepted(clientID, bookingID, professionalName string) error
	NotifyTaskCompleted(clientID, bookingID string) error
	NotifyRatingReceived(userID, bookingID string, rating int) error
	NotifyRatingSubmitted(userID, bookingID string, rating int) error

	// Run drains the push queue until ctx is cancelled. Started once by the
	// application alongside the websocket manager.
	Run(ctx context.Context)
}

type pushJob struct {
	userID  string
	payload *dto.NotificationResponse
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	pusher           LivePusher
	queue            chan pushJob
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	pusher LivePusher,
	queueSize int,
) NotificationService {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &notificationService{
		notificationRepo: notificationRepo,
		pusher:           pusher,
		queue:            make(chan pushJob, queueSize),
	}
}

func (s *notificationService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("notification push worker stopped")
			return
		case job := <-s.queue:
			// At-most-once: no retry, no error surfaced to the producer.
			s.pusher.PushToUser(job.userID, PushEventName, job.payload)
		}
	}
}

func (s *notificationService) Notify(userID, ntype, title, message, link string, data map[string]any) (*dto.NotificationResponse, error) {
	var dataJSON datatypes.JSON
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal notification data: %w", err)
		}
		dataJSON = datatypes.JSON(raw)
	}

	notification := &models.Notification{
		UserID:  userID,
		Type:    ntype,
		Title:   title,
		Message: message,
		Link:    link,
		Data:    dataJSON,
	}

	// Durability first. A failed insert fails the whole Notify call; a failed
	// push never does.
	if err := s.notificationRepo.Create(notification); err != nil {
		return nil, err
	}

	response := buildNotificationResponse(notification)

	if s.pusher != nil {
		select {
		case s.queue <- pushJob{userID: userID, payload: response}:
		default:
			logger.Warn("notification push queue full, dropping push",
				"user_id", userID, "notification_id", notification.ID)
		}
	}

	return response, nil
}

func (s *notificationService) GetUserNotifications(userID string, limit int) (*dto.NotificationListResponse, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	notifications, err := s.notificationRepo.FindByUser(userID, limit)
	if err != nil {
		return nil, err
	}

	unread, err := s.notificationRepo.CountUnread(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, buildNotificationResponse(&notifications[i]))
	}

	return &dto.NotificationListResponse{
		Notifications: responses,
		UnreadCount:   unread,
	}, nil
}

func (s *notificationService) MarkAsRead(userID, notificationID string) error {
	notification, err := s.notificationRepo.FindByID(notificationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return apperrors.ErrNotFound(err, "notification")
		}
		return err
	}
	if notification.UserID != userID {
		return apperrors.ErrForbidden("notification", "Notification belongs to another user")
	}
	return s.notificationRepo.MarkAsRead(notificationID)
}

func (s *notificationService) MarkAllAsRead(userID string) error {
	return s.notificationRepo.MarkAllAsRead(userID)
}

// ---------------- Event factories ----------------

func (s *notificationService) NotifyBookingRequested(professionalID, bookingID, clientName string) error {
	_, err := s.Notify(
		professionalID,
		"booking.requested",
		"New booking request",
		fmt.Sprintf("%s sent you a booking request", clientName),
		"/requests",
		map[string]any{"booking_id": bookingID},
	)
	return err
}

func (s *notificationService) NotifyBookingAccepted(clientID, bookingID, professionalName string) error {
	_, err := s.Notify(
		clientID,
		"booking.accepted",
		"Booking accepted",
		fmt.Sprintf("%s accepted your booking request", professionalName),
		"/my-bookings",
		map[string]any{"booking_id": bookingID},
	)
	return err
}

func (s *notificationService) NotifyTaskCompleted(clientID, bookingID string) error {
	_, err := s.Notify(
		clientID,
		"task.completed",
		"Task completed",
		"Your booking was marked as completed. You can now rate the professional.",
		"/my-bookings",
		map[string]any{"booking_id": bookingID},
	)
	return err
}

func (s *notificationService) NotifyRatingReceived(userID, bookingID string, rating int) error {
	_, err := s.Notify(
		userID,
		"rating.received",
		"You received a rating",
		fmt.Sprintf("You were rated %d/5 on a completed booking", rating),
		"/profile",
		map[string]any{"booking_id": bookingID, "rating": rating},
	)
	return err
}

func (s *notificationService) NotifyRatingSubmitted(userID, bookingID string, rating int) error {
	_, err := s.Notify(
		userID,
		"rating.submitted",
		"Rating submitted",
		fmt.Sprintf("Your %d/5 rating was recorded", rating),
		"/my-bookings",
		map[string]any{"booking_id": bookingID, "rating": rating},
	)
	return err
}

func buildNotificationResponse(n *models.Notification) *dto.NotificationResponse {
	return &dto.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Data:      n.Data,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

package services

import (
	"errors"
	"net/http"
	"time"

	"giglink_backend/internal/logger"
	"giglink_backend/internal/models"
	"giglink_backend/internal/repositories"
	"giglink_backend/internal/services/dto"
	"giglink_backend/pkg/apperrors"
)

// versionRetryAttempts bounds the reload-and-retry loop on optimistic
// version conflicts. Guards are re-run against the fresh record on every
// attempt, so a transition that became illegal after the conflicting write
// (e.g. complete racing reject) is refused instead of retried.
const versionRetryAttempts = 3

type BookingService interface {
	Create(actor Actor, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	Respond(actor Actor, bookingID string, status models.BookingStatus) (*dto.BookingResponse, error)
	Complete(actor Actor, bookingID string) (*dto.BookingResponse, error)
	RateAsClient(actor Actor, bookingID string, rating int) (*dto.BookingResponse, *dto.UserRatingResponse, error)
	RateAsProfessional(actor Actor, bookingID string, rating int) (*dto.BookingResponse, *dto.UserRatingResponse, error)

	ListForClient(actor Actor) (*dto.BookingListResponse, error)
	ListForProfessional(actor Actor) (*dto.BookingListResponse, error)
}

type bookingService struct {
	bookingRepo   repositories.BookingRepository
	userRepo      repositories.UserRepository
	ratingService RatingService
	notifications NotificationService
}

func NewBookingService(
	bookingRepo repositories.BookingRepository,
	userRepo repositories.UserRepository,
	ratingService RatingService,
	notifications NotificationService,
) BookingService {
	return &bookingService{
		bookingRepo:   bookingRepo,
		userRepo:      userRepo,
		ratingService: ratingService,
		notifications: notifications,
	}
}

// ---------------- Operations ----------------

func (s *bookingService) Create(actor Actor, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	if actor.Role != models.UserRoleClient {
		return nil, apperrors.ErrForbidden("booking", "Only clients can create bookings")
	}
	if req.ProfessionalID == actor.ID {
		return nil, apperrors.NewBadRequestError("Cannot book yourself")
	}

	professional, err := s.userRepo.FindByID(req.ProfessionalID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err, "booking")
		}
		return nil, err
	}
	if professional.Role != models.UserRoleProfessional {
		return nil, apperrors.New(apperrors.CodeValidationFailed, "booking", "Target user is not a professional", http.StatusBadRequest)
	}

	booking := &models.Booking{
		ClientID:       actor.ID,
		ProfessionalID: req.ProfessionalID,
		Message:        req.Message,
		Attachment:     req.Attachment,
		Status:         models.BookingStatusPending,
		TaskStatus:     models.TaskStatusNone,
	}

	if err := s.bookingRepo.Create(booking); err != nil {
		return nil, err
	}

	s.fireNotification(func() error {
		return s.notifications.NotifyBookingRequested(booking.ProfessionalID, booking.ID, s.displayName(actor.ID))
	}, booking.ID, "booking.requested")

	return buildBookingResponse(booking), nil
}

func (s *bookingService) Respond(actor Actor, bookingID string, status models.BookingStatus) (*dto.BookingResponse, error) {
	booking, err := s.mutate(bookingID, func(b *models.Booking) (bool, error) {
		if err := applyResponse(b, actor, status, time.Now()); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	// The client is notified on accept, never on reject.
	if status == models.BookingStatusAccepted {
		s.fireNotification(func() error {
			return s.notifications.NotifyBookingAccepted(booking.ClientID, booking.ID, s.displayName(booking.ProfessionalID))
		}, booking.ID, "booking.accepted")
	}

	return buildBookingResponse(booking), nil
}

func (s *bookingService) Complete(actor Actor, bookingID string) (*dto.BookingResponse, error) {
	var mutated bool
	booking, err := s.mutate(bookingID, func(b *models.Booking) (bool, error) {
		changed, err := applyComplete(b, actor, time.Now())
		mutated = changed
		return changed, err
	})
	if err != nil {
		return nil, err
	}

	if mutated {
		s.fireNotification(func() error {
			return s.notifications.NotifyTaskCompleted(booking.ClientID, booking.ID)
		}, booking.ID, "task.completed")
	}

	return buildBookingResponse(booking), nil
}

func (s *bookingService) RateAsClient(actor Actor, bookingID string, rating int) (*dto.BookingResponse, *dto.UserRatingResponse, error) {
	booking, err := s.mutate(bookingID, func(b *models.Booking) (bool, error) {
		if err := applyClientRating(b, actor, rating, time.Now()); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, nil, err
	}

	ratedRating := s.aggregateAfterMutation(booking.ProfessionalID, rating, booking.ID)
	s.notifyAfterRating(booking.ProfessionalID, actor.ID, booking.ID, rating)
	return buildBookingResponse(booking), ratedRating, nil
}

func (s *bookingService) RateAsProfessional(actor Actor, bookingID string, rating int) (*dto.BookingResponse, *dto.UserRatingResponse, error) {
	booking, err := s.mutate(bookingID, func(b *models.Booking) (bool, error) {
		if err := applyProfessionalRating(b, actor, rating, time.Now()); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, nil, err
	}

	ratedRating := s.aggregateAfterMutation(booking.ClientID, rating, booking.ID)
	s.notifyAfterRating(booking.ClientID, actor.ID, booking.ID, rating)
	return buildBookingResponse(booking), ratedRating, nil
}

// ---------------- List views ----------------

func (s *bookingService) ListForClient(actor Actor) (*dto.BookingListResponse, error) {
	bookings, err := s.bookingRepo.FindByClient(actor.ID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.BookingListItem, 0, len(bookings))
	users := map[string]*models.User{}
	for i := range bookings {
		b := &bookings[i]
		item := &dto.BookingListItem{BookingResponse: *buildBookingResponse(b)}
		item.Counterparty = s.userSummary(users, b.ProfessionalID, b.Status == models.BookingStatusAccepted)
		items = append(items, item)
	}

	return &dto.BookingListResponse{Bookings: items, Total: len(items)}, nil
}

func (s *bookingService) ListForProfessional(actor Actor) (*dto.BookingListResponse, error) {
	bookings, err := s.bookingRepo.FindByProfessional(actor.ID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.BookingListItem, 0, len(bookings))
	users := map[string]*models.User{}
	for i := range bookings {
		b := &bookings[i]
		item := &dto.BookingListItem{BookingResponse: *buildBookingResponse(b)}
		item.Counterparty = s.userSummary(users, b.ClientID, b.Status == models.BookingStatusAccepted)
		item.CanRate = b.Status == models.BookingStatusAccepted &&
			b.IsCompleted() &&
			b.ProfessionalRating == nil
		items = append(items, item)
	}

	return &dto.BookingListResponse{Bookings: items, Total: len(items)}, nil
}

// ---------------- Internals ----------------

// mutate runs load -> guard+transition -> versioned persist, reloading and
// re-running the transition when another writer won the version race. fn
// returns changed=false for idempotent no-ops, which are not persisted.
func (s *bookingService) mutate(bookingID string, fn func(*models.Booking) (bool, error)) (*models.Booking, error) {
	for attempt := 0; ; attempt++ {
		booking, err := s.bookingRepo.FindByID(bookingID)
		if err != nil {
			if errors.Is(err, repositories.ErrBookingNotFound) {
				return nil, apperrors.ErrNotFound(err, "booking")
			}
			return nil, err
		}

		changed, err := fn(booking)
		if err != nil {
			return nil, err
		}
		if !changed {
			return booking, nil
		}

		err = s.bookingRepo.UpdateVersioned(booking)
		if err == nil {
			return booking, nil
		}
		if errors.Is(err, repositories.ErrVersionConflict) {
			if attempt+1 < versionRetryAttempts {
				continue
			}
			return nil, apperrors.ErrConflict("booking", "Booking was modified concurrently, please retry")
		}
		if errors.Is(err, repositories.ErrBookingNotFound) {
			return nil, apperrors.ErrNotFound(err, "booking")
		}
		return nil, err
	}
}

// aggregateAfterMutation applies the rating to the rated user's aggregate.
// The booking mutation has already committed, so a failure here is logged
// and swallowed rather than surfaced to the caller.
func (s *bookingService) aggregateAfterMutation(ratedUserID string, rating int, bookingID string) *dto.UserRatingResponse {
	ratingResp, err := s.ratingService.ApplyRating(ratedUserID, rating)
	if err != nil {
		logger.Error("rating aggregation failed after booking mutation",
			"booking_id", bookingID, "rated_user_id", ratedUserID, "error", err)
		return nil
	}
	return ratingResp
}

func (s *bookingService) notifyAfterRating(ratedUserID, raterUserID, bookingID string, rating int) {
	s.fireNotification(func() error {
		return s.notifications.NotifyRatingReceived(ratedUserID, bookingID, rating)
	}, bookingID, "rating.received")
	s.fireNotification(func() error {
		return s.notifications.NotifyRatingSubmitted(raterUserID, bookingID, rating)
	}, bookingID, "rating.submitted")
}

// fireNotification runs a notification side effect after the primary
// mutation. Failures are logged, never surfaced.
func (s *bookingService) fireNotification(fn func() error, bookingID, event string) {
	if err := fn(); err != nil {
		logger.Error("notification dispatch failed",
			"booking_id", bookingID, "event", event, "error", err)
	}
}

// displayName is best-effort; notifications fall back to a generic label
// rather than failing the operation.
func (s *bookingService) displayName(userID string) string {
	user, err := s.userRepo.FindByID(userID)
	if err != nil || user.Name == "" {
		return "A user"
	}
	return user.Name
}

func (s *bookingService) userSummary(cache map[string]*models.User, userID string, revealPhone bool) *dto.UserSummary {
	user, ok := cache[userID]
	if !ok {
		loaded, err := s.userRepo.FindByID(userID)
		if err != nil {
			return nil
		}
		cache[userID] = loaded
		user = loaded
	}

	summary := &dto.UserSummary{
		ID:          user.ID,
		Name:        user.Name,
		RatingAvg:   user.RatingAvg(),
		RatingCount: user.RatingCount,
	}
	if revealPhone {
		summary.Phone = user.Phone
	}
	return summary
}

func buildBookingResponse(b *models.Booking) *dto.BookingResponse {
	return &dto.BookingResponse{
		ID:                  b.ID,
		ClientID:            b.ClientID,
		ProfessionalID:      b.ProfessionalID,
		Message:             b.Message,
		Attachment:          b.Attachment,
		Status:              string(b.Status),
		TaskStatus:          string(b.TaskStatus),
		AcceptedAt:          b.AcceptedAt,
		CompletedAt:         b.CompletedAt,
		ClientRating:        b.ClientRating,
		ClientRatedAt:       b.ClientRatedAt,
		ProfessionalRating:  b.ProfessionalRating,
		ProfessionalRatedAt: b.ProfessionalRatedAt,
		CreatedAt:           b.CreatedAt,
	}
}

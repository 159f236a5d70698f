package services

import (
	"net/http"
	"time"

	"giglink_backend/internal/models"
	"giglink_backend/pkg/apperrors"
)

// Actor is the authenticated caller identity handed in by the transport
// layer. The core never issues or verifies credentials itself.
type Actor struct {
	ID   string
	Role models.UserRole
}

// Booking lifecycle transitions. Pure functions over *models.Booking: they
// validate the guard for the acting party and mutate the in-memory record,
// leaving persistence (and the optimistic version check) to the caller.
//
// States: pending/none -> accepted/pending -> accepted/completed (terminal
// for status), with rejected reachable from any non-completed state.

func applyResponse(b *models.Booking, actor Actor, status models.BookingStatus, now time.Time) error {
	if actor.ID != b.ProfessionalID {
		return apperrors.ErrForbidden("booking", "Only the assigned professional can respond to this booking")
	}

	if b.IsCompleted() {
		return apperrors.ErrInvalidTransition("booking", "Task already completed; status cannot be changed")
	}

	switch status {
	case models.BookingStatusAccepted:
		b.Status = models.BookingStatusAccepted
		b.TaskStatus = models.TaskStatusPending
		if b.AcceptedAt == nil {
			b.AcceptedAt = &now
		}
		b.CompletedAt = nil

	case models.BookingStatusRejected:
		// Rejection resets progress even if previously accepted.
		b.Status = models.BookingStatusRejected
		b.TaskStatus = models.TaskStatusNone
		b.AcceptedAt = nil
		b.CompletedAt = nil

	default:
		return apperrors.NewBadRequestError("Invalid status")
	}

	return nil
}

// applyComplete marks the task done. Returns changed=false when the booking
// is already completed (idempotent re-submission, no mutation).
func applyComplete(b *models.Booking, actor Actor, now time.Time) (changed bool, err error) {
	if actor.ID != b.ProfessionalID {
		return false, apperrors.ErrForbidden("booking", "Only the assigned professional can complete this booking")
	}

	if b.Status != models.BookingStatusAccepted {
		return false, apperrors.ErrInvalidTransition("booking", "Only accepted bookings can be completed")
	}

	if b.IsCompleted() {
		return false, nil
	}

	b.TaskStatus = models.TaskStatusCompleted
	b.CompletedAt = &now
	return true, nil
}

func applyClientRating(b *models.Booking, actor Actor, rating int, now time.Time) error {
	if actor.ID != b.ClientID {
		return apperrors.ErrForbidden("booking", "Only the booking's client can rate the professional")
	}
	if err := checkRatingAllowed(b, rating); err != nil {
		return err
	}
	if b.ClientRating != nil {
		return apperrors.ErrInvalidTransition("booking", "You already rated this booking")
	}

	b.ClientRating = &rating
	b.ClientRatedAt = &now
	return nil
}

func applyProfessionalRating(b *models.Booking, actor Actor, rating int, now time.Time) error {
	if actor.ID != b.ProfessionalID {
		return apperrors.ErrForbidden("booking", "Only the booking's professional can rate the client")
	}
	if err := checkRatingAllowed(b, rating); err != nil {
		return err
	}
	if b.ProfessionalRating != nil {
		return apperrors.ErrInvalidTransition("booking", "You already rated this booking")
	}

	b.ProfessionalRating = &rating
	b.ProfessionalRatedAt = &now
	return nil
}

func checkRatingAllowed(b *models.Booking, rating int) error {
	if rating < 1 || rating > 5 {
		return apperrors.New(apperrors.CodeValidationFailed, "booking", "Rating must be 1 to 5", http.StatusBadRequest)
	}
	if b.Status != models.BookingStatusAccepted || !b.IsCompleted() {
		return apperrors.ErrInvalidTransition("booking", "You can rate only after the task is completed")
	}
	return nil
}

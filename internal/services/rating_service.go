package services

import (
	"errors"
	"net/http"

	"giglink_backend/internal/repositories"
	"giglink_backend/internal/services/dto"
	"giglink_backend/pkg/apperrors"
)

type RatingService interface {
	// ApplyRating adds one received rating to the user's aggregate and
	// returns the resulting average and count. Called exactly once per
	// completed booking per direction.
	ApplyRating(userID string, rating int) (*dto.UserRatingResponse, error)
}

type ratingService struct {
	userRepo repositories.UserRepository
}

func NewRatingService(userRepo repositories.UserRepository) RatingService {
	return &ratingService{userRepo: userRepo}
}

func (s *ratingService) ApplyRating(userID string, rating int) (*dto.UserRatingResponse, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.New(apperrors.CodeValidationFailed, "rating", "Rating must be 1 to 5", http.StatusBadRequest)
	}

	// rating_sum and rating_count are bumped in one atomic statement; the
	// average is derived below from a fresh read. No read-modify-write, so
	// two ratings landing at once both count (no lost update).
	if err := s.userRepo.IncrementRating(userID, rating); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err, "rating")
		}
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	return &dto.UserRatingResponse{
		RatingAvg:   user.RatingAvg(),
		RatingCount: user.RatingCount,
	}, nil
}

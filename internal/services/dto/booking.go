package dto

import "time"

type CreateBookingRequest struct {
	ProfessionalID string `json:"professional_id" validate:"required,uuid4"`
	Message        string `json:"message" validate:"max=2000"`
	Attachment     string `json:"attachment"`
}

type RespondBookingRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

type RateBookingRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

type BookingResponse struct {
	ID             string `json:"id"`
	ClientID       string `json:"client_id"`
	ProfessionalID string `json:"professional_id"`
	Message        string `json:"message"`
	Attachment     string `json:"attachment,omitempty"`

	Status     string `json:"status"`
	TaskStatus string `json:"task_status"`

	AcceptedAt  *time.Time `json:"accepted_at"`
	CompletedAt *time.Time `json:"completed_at"`

	ClientRating        *int       `json:"client_rating"`
	ClientRatedAt       *time.Time `json:"client_rated_at"`
	ProfessionalRating  *int       `json:"professional_rating"`
	ProfessionalRatedAt *time.Time `json:"professional_rated_at"`

	CreatedAt time.Time `json:"created_at"`
}

// UserSummary is the counterparty card embedded in booking list items. The
// phone is present only when the booking has been accepted.
type UserSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	RatingAvg   float64 `json:"rating_avg"`
	RatingCount int64   `json:"rating_count"`
	Phone       string  `json:"phone,omitempty"`
}

type BookingListItem struct {
	BookingResponse
	Counterparty *UserSummary `json:"counterparty,omitempty"`

	// CanRate is set on the professional's view: accepted, completed and not
	// yet rated in this direction.
	CanRate bool `json:"can_rate"`
}

type BookingListResponse struct {
	Bookings []*BookingListItem `json:"bookings"`
	Total    int                `json:"total"`
}

type UserRatingResponse struct {
	RatingAvg   float64 `json:"rating_avg"`
	RatingCount int64   `json:"rating_count"`
}

package models

import "time"

// Booking is one request from a client to a professional, tracked through
// the accept/reject decision (Status), actual work progress (TaskStatus) and
// the one-shot mutual ratings after completion.
type Booking struct {
	BaseModel
	ClientID       string `gorm:"type:uuid;not null;index:idx_bookings_client" json:"client_id"`
	ProfessionalID string `gorm:"type:uuid;not null;index:idx_bookings_professional" json:"professional_id"`

	Message    string `json:"message"`
	Attachment string `json:"attachment"` // opaque file reference, never interpreted

	Status     BookingStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	TaskStatus TaskStatus    `gorm:"type:varchar(20);not null;default:'none';index" json:"task_status"`

	AcceptedAt  *time.Time `json:"accepted_at"`
	CompletedAt *time.Time `json:"completed_at"`

	ClientRating  *int       `gorm:"check:client_rating IS NULL OR (client_rating >= 1 AND client_rating <= 5)" json:"client_rating"`
	ClientRatedAt *time.Time `json:"client_rated_at"`

	ProfessionalRating  *int       `gorm:"check:professional_rating IS NULL OR (professional_rating >= 1 AND professional_rating <= 5)" json:"professional_rating"`
	ProfessionalRatedAt *time.Time `json:"professional_rated_at"`

	// Optimistic lock. Every mutation commits through
	// "WHERE id = ? AND version = ?" so interleaved writers cannot commit an
	// invalid transition on top of each other.
	Version int64 `gorm:"not null;default:0" json:"-"`
}

// IsCompleted reports whether the booking's work is done. Completed bookings
// never change status again.
func (b *Booking) IsCompleted() bool {
	return b.TaskStatus == TaskStatusCompleted
}

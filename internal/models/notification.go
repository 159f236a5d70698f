package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	BaseModel
	UserID  string `gorm:"type:uuid;not null;index:idx_notifications_user;index:idx_notifications_user_read,priority:1" json:"user_id"`
	Type    string `gorm:"not null" json:"type"` // e.g. "booking.accepted"
	Title   string `gorm:"not null" json:"title"`
	Message string `json:"message"`
	Link    string `json:"link"` // front-end navigation hint, e.g. "/my-bookings"

	// Data carries event references, e.g. {"booking_id": "..."}.
	Data datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`

	ReadAt *time.Time `gorm:"index:idx_notifications_user_read,priority:2" json:"read_at"`
}

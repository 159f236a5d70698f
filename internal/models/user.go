package models

import "math"

type User struct {
	BaseModel
	Name   string     `gorm:"not null" json:"name"`
	Email  string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone  string     `json:"phone,omitempty"`
	Role   UserRole   `gorm:"type:varchar(20);not null;index" json:"role"`
	Status UserStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`

	// Rating aggregate. The sum and the count are the source of truth and are
	// only ever changed by single-statement atomic increments; the average is
	// derived on read, so concurrent rating submissions cannot lose updates.
	RatingSum   int64 `gorm:"not null;default:0" json:"-"`
	RatingCount int64 `gorm:"not null;default:0" json:"rating_count"`
}

// RatingAvg returns the arithmetic mean of all received ratings, rounded to
// 2 decimals, or 0 when the user has never been rated.
func (u *User) RatingAvg() float64 {
	if u.RatingCount == 0 {
		return 0
	}
	avg := float64(u.RatingSum) / float64(u.RatingCount)
	return math.Round(avg*100) / 100
}

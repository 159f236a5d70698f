package database

import (
	"giglink_backend/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate creates/updates the schema for every model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Booking{},
		&models.Notification{},
	)
}

package repositories

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"giglink_backend/database"
	"giglink_backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)",
		strings.ReplaceAll(uuid.NewString(), "-", ""))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Name:   "Test User",
		Email:  fmt.Sprintf("user-%s@example.com", uuid.NewString()[:8]),
		Role:   role,
		Status: models.UserStatusApproved,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedBooking(t *testing.T, db *gorm.DB, clientID, professionalID string) *models.Booking {
	t.Helper()

	booking := &models.Booking{
		ClientID:       clientID,
		ProfessionalID: professionalID,
		Status:         models.BookingStatusPending,
		TaskStatus:     models.TaskStatusNone,
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

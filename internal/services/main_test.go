package services

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
	"giglink_backend/internal/repositories"
	"giglink_backend/internal/services/dto"
)

// setupTestDB opens a per-test in-memory SQLite database. Shared cache keeps
// the database alive across pooled connections; a single open connection
// serializes statements the way a real server would under row locks.
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

type bookingTestEnv struct {
	db               *gorm.DB
	bookingService   BookingService
	ratingService    RatingService
	notifications    NotificationService
	bookingRepo      repositories.BookingRepository
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
}

func newBookingTestEnv(t *testing.T) *bookingTestEnv {
	t.Helper()

	db := setupTestDB(t)
	userRepo := repositories.NewUserRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	ratingService := NewRatingService(userRepo)
	notificationService := NewNotificationService(notificationRepo, nil, 16)
	bookingService := NewBookingService(bookingRepo, userRepo, ratingService, notificationService)

	return &bookingTestEnv{
		db:               db,
		bookingService:   bookingService,
		ratingService:    ratingService,
		notifications:    notificationService,
		bookingRepo:      bookingRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
	}
}

func createTestUser(t *testing.T, db *gorm.DB, name string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Name:   name,
		Email:  fmt.Sprintf("%s-%s@example.com", strings.ToLower(name), uuid.NewString()[:8]),
		Phone:  "+77010000000",
		Role:   role,
		Status: models.UserStatusApproved,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func asActor(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// createAcceptedBooking drives a booking from request through accept via the
// service so the fixtures go through the same guards production does.
func (env *bookingTestEnv) createAcceptedBooking(t *testing.T, client, professional *models.User) string {
	t.Helper()

	created, err := env.bookingService.Create(asActor(client), &dto.CreateBookingRequest{
		ProfessionalID: professional.ID,
		Message:        "Need help with a task",
	})
	require.NoError(t, err)

	_, err = env.bookingService.Respond(asActor(professional), created.ID, models.BookingStatusAccepted)
	require.NoError(t, err)
	return created.ID
}

func (env *bookingTestEnv) createCompletedBooking(t *testing.T, client, professional *models.User) string {
	t.Helper()

	bookingID := env.createAcceptedBooking(t, client, professional)
	_, err := env.bookingService.Complete(asActor(professional), bookingID)
	require.NoError(t, err)
	return bookingID
}

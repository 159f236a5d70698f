package repositories

import (
	"errors"
	"time"

	"giglink_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrBookingNotFound = errors.New("booking not found")

	// ErrVersionConflict means another writer committed between our read and
	// our update. Callers reload and re-run the transition guards.
	ErrVersionConflict = errors.New("booking version conflict")
)

type BookingRepository interface {
	FindByID(id string) (*models.Booking, error)
	Create(booking *models.Booking) error

	// UpdateVersioned persists the booking only if its version column still
	// matches booking.Version, then bumps the version.
	UpdateVersioned(booking *models.Booking) error

	FindByClient(clientID string) ([]models.Booking, error)
	FindByProfessional(professionalID string) ([]models.Booking, error)
}

type BookingRepositoryImpl struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &BookingRepositoryImpl{db: db}
}

func (r *BookingRepositoryImpl) FindByID(id string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepositoryImpl) Create(booking *models.Booking) error {
	return r.db.Create(booking).Error
}

func (r *BookingRepositoryImpl) UpdateVersioned(booking *models.Booking) error {
	result := r.db.Model(&models.Booking{}).
		Where("id = ? AND version = ?", booking.ID, booking.Version).
		Updates(map[string]interface{}{
			"status":                booking.Status,
			"task_status":           booking.TaskStatus,
			"accepted_at":           booking.AcceptedAt,
			"completed_at":          booking.CompletedAt,
			"client_rating":         booking.ClientRating,
			"client_rated_at":       booking.ClientRatedAt,
			"professional_rating":   booking.ProfessionalRating,
			"professional_rated_at": booking.ProfessionalRatedAt,
			"version":               booking.Version + 1,
			"updated_at":            time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the row is gone or someone else won the version race.
		var exists int64
		if err := r.db.Model(&models.Booking{}).Where("id = ?", booking.ID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrBookingNotFound
		}
		return ErrVersionConflict
	}

	booking.Version++
	return nil
}

func (r *BookingRepositoryImpl) FindByClient(clientID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepositoryImpl) FindByProfessional(professionalID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.Where("professional_id = ?", professionalID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

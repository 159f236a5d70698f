package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giglink_backend/internal/models"
)

func TestBookingRepository_UpdateVersioned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookingRepository(db)
	client := seedUser(t, db, models.UserRoleClient)
	professional := seedUser(t, db, models.UserRoleProfessional)
	seeded := seedBooking(t, db, client.ID, professional.ID)

	booking, err := repo.FindByID(seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), booking.Version)

	now := time.Now()
	booking.Status = models.BookingStatusAccepted
	booking.TaskStatus = models.TaskStatusPending
	booking.AcceptedAt = &now

	require.NoError(t, repo.UpdateVersioned(booking))
	assert.Equal(t, int64(1), booking.Version)

	stored, err := repo.FindByID(seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusAccepted, stored.Status)
	assert.Equal(t, int64(1), stored.Version)
	require.NotNil(t, stored.AcceptedAt)
}

func TestBookingRepository_UpdateVersioned_Conflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookingRepository(db)
	client := seedUser(t, db, models.UserRoleClient)
	professional := seedUser(t, db, models.UserRoleProfessional)
	seeded := seedBooking(t, db, client.ID, professional.ID)

	// Two readers hold the same version.
	first, err := repo.FindByID(seeded.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(seeded.ID)
	require.NoError(t, err)

	first.Status = models.BookingStatusAccepted
	require.NoError(t, repo.UpdateVersioned(first))

	// The loser's stale version must not overwrite the winner's commit.
	second.Status = models.BookingStatusRejected
	err = repo.UpdateVersioned(second)
	require.ErrorIs(t, err, ErrVersionConflict)

	stored, err := repo.FindByID(seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusAccepted, stored.Status)
}

func TestBookingRepository_UpdateVersioned_Missing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookingRepository(db)

	err := repo.UpdateVersioned(&models.Booking{
		BaseModel: models.BaseModel{ID: "00000000-0000-0000-0000-000000000000"},
	})
	require.ErrorIs(t, err, ErrBookingNotFound)
}

func TestBookingRepository_FindByParty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookingRepository(db)
	client := seedUser(t, db, models.UserRoleClient)
	otherClient := seedUser(t, db, models.UserRoleClient)
	professional := seedUser(t, db, models.UserRoleProfessional)

	seedBooking(t, db, client.ID, professional.ID)
	seedBooking(t, db, otherClient.ID, professional.ID)

	mine, err := repo.FindByClient(client.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	incoming, err := repo.FindByProfessional(professional.ID)
	require.NoError(t, err)
	assert.Len(t, incoming, 2)

	none, err := repo.FindByClient(professional.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBookingRepository_FindByID_Missing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookingRepository(db)

	_, err := repo.FindByID("00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, ErrBookingNotFound)
}

package jobs

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"repairconnect-server/database"
	"repairconnect-server/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	url := os.Getenv("TEST_DB_URL")
	if url == "" {
		t.Skip("TEST_DB_URL not set, skipping database test")
	}

	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, db.Exec(
		"TRUNCATE users, provider_settings, service_requests, job_updates, invoices, notifications RESTART IDENTITY CASCADE",
	).Error)

	return db
}

func seedRequest(t *testing.T, db *gorm.DB, status models.ServiceRequestStatus, age time.Duration) models.ServiceRequest {
	t.Helper()

	request := models.ServiceRequest{
		CustomerID: 1,
		Title:      "old request",
		Category:   "plumbing",
		Status:     status,
	}
	require.NoError(t, db.Create(&request).Error)

	// UpdateColumn bypasses gorm's automatic updated_at handling
	require.NoError(t, db.Model(&request).
		UpdateColumn("updated_at", time.Now().Add(-age)).Error)

	require.NoError(t, db.Create(&models.JobUpdate{
		ServiceRequestID: request.ID,
		ProviderID:       2,
		Message:          "done and dusted",
	}).Error)
	require.NoError(t, db.Create(&models.Invoice{
		ServiceRequestID: request.ID,
		ProviderID:       2,
		CustomerID:       1,
		Amount:           10,
		Currency:         "USD",
	}).Error)

	return request
}

func TestSweepRemovesExpiredTerminalRequests(t *testing.T) {
	db := testDB(t)

	expired := seedRequest(t, db, models.StatusClosed, 48*time.Hour)
	expiredCancelled := seedRequest(t, db, models.StatusCancelled, 48*time.Hour)
	fresh := seedRequest(t, db, models.StatusClosed, time.Hour)
	active := seedRequest(t, db, models.StatusOngoing, 48*time.Hour)

	job := NewCleanupJob(db, 24, true)
	job.Sweep()

	var remaining []models.ServiceRequest
	require.NoError(t, db.Find(&remaining).Error)
	ids := make([]uint, 0, len(remaining))
	for _, r := range remaining {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []uint{fresh.ID, active.ID}, ids)

	// Children of the expired requests went with them
	var updateCount, invoiceCount int64
	db.Model(&models.JobUpdate{}).
		Where("service_request_id IN ?", []uint{expired.ID, expiredCancelled.ID}).
		Count(&updateCount)
	db.Model(&models.Invoice{}).
		Where("service_request_id IN ?", []uint{expired.ID, expiredCancelled.ID}).
		Count(&invoiceCount)
	assert.Zero(t, updateCount)
	assert.Zero(t, invoiceCount)
}

func TestSweepKeepsCancelledWhenExcluded(t *testing.T) {
	db := testDB(t)

	closed := seedRequest(t, db, models.StatusClosed, 48*time.Hour)
	cancelled := seedRequest(t, db, models.StatusCancelled, 48*time.Hour)

	job := NewCleanupJob(db, 24, false)
	job.Sweep()

	var remaining []models.ServiceRequest
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, cancelled.ID, remaining[0].ID)

	var gone models.ServiceRequest
	err := db.First(&gone, closed.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

package jobs

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"repairconnect-server/models"
)

const cleanupBatchSize = 100

// CleanupJob reclaims terminal service requests. Every hour (and once at
// startup) it hard-deletes requests that have been closed (and optionally
// cancelled) for longer than the retention window, together with their
// updates and invoices. Deletion runs in small id batches so the sweep
// never holds locks that block normal traffic.
type CleanupJob struct {
	db               *gorm.DB
	cron             *cron.Cron
	retention        time.Duration
	includeCancelled bool
}

func NewCleanupJob(db *gorm.DB, retentionHours int, includeCancelled bool) *CleanupJob {
	return &CleanupJob{
		db:               db,
		cron:             cron.New(),
		retention:        time.Duration(retentionHours) * time.Hour,
		includeCancelled: includeCancelled,
	}
}

// Start runs one sweep immediately, then hourly.
func (j *CleanupJob) Start() {
	j.Sweep()

	if _, err := j.cron.AddFunc("@hourly", j.Sweep); err != nil {
		log.Printf("❌ Failed to schedule cleanup job: %v", err)
		return
	}
	j.cron.Start()
	log.Println("🧹 Cleanup job started (hourly)")
}

func (j *CleanupJob) Stop() {
	j.cron.Stop()
	log.Println("🧹 Cleanup job stopped")
}

// Sweep deletes expired terminal requests in batches. A failing iteration
// logs and returns; the next tick tries again.
func (j *CleanupJob) Sweep() {
	statuses := []models.ServiceRequestStatus{models.StatusClosed}
	if j.includeCancelled {
		statuses = append(statuses, models.StatusCancelled)
	}
	cutoff := time.Now().Add(-j.retention)

	total := 0
	for {
		deleted, err := j.sweepBatch(statuses, cutoff)
		if err != nil {
			log.Printf("❌ Cleanup sweep failed: %v", err)
			return
		}
		total += deleted
		if deleted < cleanupBatchSize {
			break
		}
	}

	if total > 0 {
		log.Printf("🧹 Cleanup sweep removed %d archived requests", total)
	}
}

func (j *CleanupJob) sweepBatch(statuses []models.ServiceRequestStatus, cutoff time.Time) (int, error) {
	var ids []uint
	err := j.db.Model(&models.ServiceRequest{}).
		Where("status IN ? AND updated_at < ?", statuses, cutoff).
		Limit(cleanupBatchSize).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	// Children first, then the parents, inside one short transaction per
	// batch.
	err = j.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_request_id IN ?", ids).Delete(&models.JobUpdate{}).Error; err != nil {
			return err
		}
		if err := tx.Where("service_request_id IN ?", ids).Delete(&models.Invoice{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.ServiceRequest{}).Error
	})
	if err != nil {
		return 0, err
	}

	return len(ids), nil
}

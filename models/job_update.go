package models

import "time"

// JobUpdate is a progress note posted by the assigned provider. Immutable
// once created; removed only together with its parent request.
type JobUpdate struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	ServiceRequestID uint      `json:"service_request_id" gorm:"not null;index"`
	ProviderID       uint      `json:"provider_id" gorm:"not null"`
	Message          string    `json:"message" gorm:"type:text"`
	ImageURL         *string   `json:"image_url" gorm:"size:500"`
	CreatedAt        time.Time `json:"created_at"`
}

func (JobUpdate) TableName() string {
	return "job_updates"
}

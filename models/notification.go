package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types emitted by the job/invoice workflow.
const (
	NotificationStatusChange = "status_change"
	NotificationInvoice      = "invoice"
	NotificationInvoicePaid  = "invoice_paid"
	NotificationJobUpdate    = "job_update"
)

// Notification is an inbox entry for a user. Created exclusively as a side
// effect of job/invoice transitions via the notifier outbox; the only
// external mutation is mark-read.
type Notification struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	Type      string         `json:"type" gorm:"type:varchar(40);not null"`
	Payload   datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	Read      bool           `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

package models

import "time"

// Invoice is a billing instrument for one completed job. Provider and
// customer ids are denormalized from the parent request at creation time.
// A request may carry several invoices (partial billing); a paid invoice
// never becomes unpaid again.
type Invoice struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	ServiceRequestID uint       `json:"service_request_id" gorm:"not null;index"`
	ProviderID       uint       `json:"provider_id" gorm:"not null;index"`
	CustomerID       uint       `json:"customer_id" gorm:"not null;index"`
	Amount           float64    `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency         string     `json:"currency" gorm:"type:varchar(3);not null;default:'USD'"`
	Notes            string     `json:"notes" gorm:"type:text"`
	Paid             bool       `json:"paid" gorm:"not null;default:false"`
	PaidAt           *time.Time `json:"paid_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceCreate is the payload for POST /jobs/:id/invoices
type InvoiceCreate struct {
	Amount   *float64 `json:"amount" binding:"required"`
	Currency string   `json:"currency"`
	Notes    string   `json:"notes"`
}

package models

import (
	"time"
)

// ServiceRequestStatus represents the current status of a service request.
// All status mutations go through services.JobService.Transition, which
// consults the transition table; nothing else writes this column.
type ServiceRequestStatus string

const (
	StatusPending   ServiceRequestStatus = "pending"
	StatusTaken     ServiceRequestStatus = "taken"
	StatusOngoing   ServiceRequestStatus = "ongoing"
	StatusPaused    ServiceRequestStatus = "paused"
	StatusDone      ServiceRequestStatus = "done"
	StatusClosed    ServiceRequestStatus = "closed"
	StatusCancelled ServiceRequestStatus = "cancelled"
)

// KnownStatuses is the closed set of statuses a request can hold.
var KnownStatuses = []ServiceRequestStatus{
	StatusPending, StatusTaken, StatusOngoing, StatusPaused,
	StatusDone, StatusClosed, StatusCancelled,
}

func (s ServiceRequestStatus) Known() bool {
	for _, known := range KnownStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether the status ends the request lifecycle. Terminal
// requests are reclaimed by the cleanup sweep after the retention window.
func (s ServiceRequestStatus) Terminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// ServiceRequest represents one repair job submitted by a customer.
type ServiceRequest struct {
	ID                 uint                 `json:"id" gorm:"primaryKey"`
	CustomerID         uint                 `json:"customer_id" gorm:"not null;index"`
	Customer           User                 `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	AssignedProviderID *uint                `json:"assigned_provider_id" gorm:"index"`
	AssignedProvider   *User                `json:"assigned_provider,omitempty" gorm:"foreignKey:AssignedProviderID"`
	Title              string               `json:"title" gorm:"type:varchar(200);not null"`
	Category           string               `json:"category" gorm:"type:varchar(100);not null"`
	Description        string               `json:"description" gorm:"type:text"`
	PreferredAt        *time.Time           `json:"preferred_at"`
	Timezone           string               `json:"timezone" gorm:"type:varchar(64)"`
	Status             ServiceRequestStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`

	// Relationships. Updates and invoices are removed with their parent by
	// the cleanup sweep.
	Updates  []JobUpdate `json:"updates,omitempty" gorm:"foreignKey:ServiceRequestID;constraint:OnDelete:CASCADE"`
	Invoices []Invoice   `json:"invoices,omitempty" gorm:"foreignKey:ServiceRequestID;constraint:OnDelete:CASCADE"`
}

func (ServiceRequest) TableName() string {
	return "service_requests"
}

// ServiceRequestCreate is the payload for creating a service request
type ServiceRequestCreate struct {
	Title       string     `json:"title" binding:"required"`
	Category    string     `json:"category" binding:"required"`
	Description string     `json:"description"`
	PreferredAt *time.Time `json:"preferred_at"`
	Timezone    string     `json:"timezone"`
}

// ServiceRequestEdit is the payload for editing a pending request. Nil
// fields are left untouched. UpdatedAt, when supplied, is the client's last
// known updated_at and enables the optimistic-concurrency check.
type ServiceRequestEdit struct {
	Title       *string    `json:"title"`
	Category    *string    `json:"category"`
	Description *string    `json:"description"`
	PreferredAt *time.Time `json:"preferred_at"`
	Timezone    *string    `json:"timezone"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// StatusChangeRequest is the payload for PUT /jobs/:id/status
type StatusChangeRequest struct {
	Status string `json:"status" binding:"required"`
}

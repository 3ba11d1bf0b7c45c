package services

import (
	"errors"

	"gorm.io/gorm"

	"repairconnect-server/models"
	"repairconnect-server/types"
)

// UpdateService owns the provider-authored progress feed on a job. Posting
// an update is purely informational and never changes the request status.
type UpdateService struct {
	db       *gorm.DB
	notifier *Notifier
}

func NewUpdateService(db *gorm.DB, notifier *Notifier) *UpdateService {
	return &UpdateService{db: db, notifier: notifier}
}

// Post creates a progress note on a request. Only the assigned provider may
// post; the payload needs a message, an image reference, or both.
func (s *UpdateService) Post(actor models.User, requestID uint, message string, imageURL *string) (*models.JobUpdate, error) {
	if message == "" && (imageURL == nil || *imageURL == "") {
		return nil, types.NewValidationError("an update needs a message or an image")
	}

	var request models.ServiceRequest
	if err := s.db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Entity: "service request", ID: requestID}
		}
		return nil, err
	}

	if request.AssignedProviderID == nil || *request.AssignedProviderID != actor.ID {
		return nil, types.NewForbiddenError("only the assigned provider may post updates")
	}

	update := models.JobUpdate{
		ServiceRequestID: request.ID,
		ProviderID:       actor.ID,
		Message:          message,
		ImageURL:         imageURL,
	}

	if err := s.db.Create(&update).Error; err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"request_id": request.ID,
		"message":    message,
	}
	if imageURL != nil {
		payload["image_url"] = *imageURL
	}
	s.notifier.Enqueue(request.CustomerID, models.NotificationJobUpdate, payload)

	return &update, nil
}

// List returns the feed for a request, oldest first. Visible to the owner,
// the assigned provider, and admins.
func (s *UpdateService) List(actor models.User, requestID uint) ([]models.JobUpdate, error) {
	var request models.ServiceRequest
	if err := s.db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Entity: "service request", ID: requestID}
		}
		return nil, err
	}

	allowed := actor.IsAdmin() ||
		request.CustomerID == actor.ID ||
		(request.AssignedProviderID != nil && *request.AssignedProviderID == actor.ID)
	if !allowed {
		return nil, types.NewForbiddenError("you do not have access to this service request")
	}

	var updates []models.JobUpdate
	if err := s.db.Where("service_request_id = ?", requestID).Order("created_at ASC").Find(&updates).Error; err != nil {
		return nil, err
	}
	return updates, nil
}

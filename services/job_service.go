package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"repairconnect-server/models"
	"repairconnect-server/types"
)

// transitionTable lists every legal (role, from, to) triple for
// non-admin actors. Admins bypass the table entirely: any known target from
// any current status. Every status mutation in the server goes through
// Transition, so a transition missing here is unreachable.
var transitionTable = map[models.UserRole]map[models.ServiceRequestStatus][]models.ServiceRequestStatus{
	models.RoleProvider: {
		models.StatusPending: {models.StatusTaken},
		models.StatusTaken:   {models.StatusOngoing, models.StatusDone},
		models.StatusOngoing: {models.StatusPaused, models.StatusDone},
		models.StatusPaused:  {models.StatusOngoing},
		models.StatusDone:    {models.StatusClosed},
	},
	models.RoleCustomer: {
		models.StatusPending: {models.StatusCancelled},
		models.StatusTaken:   {models.StatusCancelled},
	},
}

// TransitionAllowed reports whether role may move a request from one status
// to another.
func TransitionAllowed(role models.UserRole, from, to models.ServiceRequestStatus) bool {
	if role == models.RoleAdmin {
		return to.Known()
	}
	for _, target := range transitionTable[role][from] {
		if target == to {
			return true
		}
	}
	return false
}

// JobService owns the service-request lifecycle.
type JobService struct {
	db       *gorm.DB
	notifier *Notifier
}

func NewJobService(db *gorm.DB, notifier *Notifier) *JobService {
	return &JobService{db: db, notifier: notifier}
}

// Create inserts a new pending request owned by customerID.
func (s *JobService) Create(customerID uint, in models.ServiceRequestCreate) (*models.ServiceRequest, error) {
	request := models.ServiceRequest{
		CustomerID:  customerID,
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		PreferredAt: in.PreferredAt,
		Timezone:    in.Timezone,
		Status:      models.StatusPending,
	}

	if err := s.db.Create(&request).Error; err != nil {
		return nil, err
	}

	log.Printf("🔧 Service request %d created by customer %d", request.ID, customerID)
	return &request, nil
}

// Get returns a request if the actor may see it: the owner, the assigned
// provider, any admin, or any provider while the request is still pending
// (so it can be claimed).
func (s *JobService) Get(actor models.User, requestID uint) (*models.ServiceRequest, error) {
	request, err := s.load(requestID)
	if err != nil {
		return nil, err
	}

	if !s.canView(actor, request) {
		return nil, types.NewForbiddenError("you do not have access to this service request")
	}

	return request, nil
}

func (s *JobService) canView(actor models.User, request *models.ServiceRequest) bool {
	if actor.IsAdmin() || request.CustomerID == actor.ID {
		return true
	}
	if actor.IsProvider() {
		if request.AssignedProviderID != nil && *request.AssignedProviderID == actor.ID {
			return true
		}
		return request.Status == models.StatusPending
	}
	return false
}

// ListMine returns the requests relevant to the actor's role: customers see
// the requests they own, providers the ones assigned to them, admins all.
func (s *JobService) ListMine(actor models.User) ([]models.ServiceRequest, error) {
	query := s.db.Preload("Customer").Preload("AssignedProvider").Order("created_at DESC")

	switch actor.Role {
	case models.RoleCustomer:
		query = query.Where("customer_id = ?", actor.ID)
	case models.RoleProvider:
		query = query.Where("assigned_provider_id = ?", actor.ID)
	case models.RoleAdmin:
		// no filter
	default:
		return nil, types.NewForbiddenError("unknown role %q", actor.Role)
	}

	var requests []models.ServiceRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// ListAvailable returns unclaimed pending requests for providers to browse.
func (s *JobService) ListAvailable() ([]models.ServiceRequest, error) {
	var requests []models.ServiceRequest
	err := s.db.Where("status = ? AND assigned_provider_id IS NULL", models.StatusPending).
		Preload("Customer").
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// Edit applies an owner edit to a pending request. Editable fields are
// title/category/description/preferred date; any status other than pending
// rejects the edit. When the client supplies its last known updated_at the
// edit also fails on a mismatch, as a conflict distinct from the status one.
func (s *JobService) Edit(actor models.User, requestID uint, edit models.ServiceRequestEdit) (*models.ServiceRequest, error) {
	request, err := s.load(requestID)
	if err != nil {
		return nil, err
	}

	if request.CustomerID != actor.ID {
		return nil, types.NewForbiddenError("only the request owner may edit it")
	}
	if request.Status != models.StatusPending {
		return nil, types.NewForbiddenError("request can only be edited while pending, current status is '%s'", request.Status)
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if edit.Title != nil {
		if *edit.Title == "" {
			return nil, types.NewValidationError("title cannot be empty")
		}
		updates["title"] = *edit.Title
	}
	if edit.Category != nil {
		if *edit.Category == "" {
			return nil, types.NewValidationError("category cannot be empty")
		}
		updates["category"] = *edit.Category
	}
	if edit.Description != nil {
		updates["description"] = *edit.Description
	}
	if edit.PreferredAt != nil {
		updates["preferred_at"] = *edit.PreferredAt
	}
	if edit.Timezone != nil {
		updates["timezone"] = *edit.Timezone
	}

	// Both preconditions are re-checked at write time: the status clause so
	// an edit racing a provider's take cannot land on a taken request, and
	// the updated_at clause (when the client supplied its last known value)
	// so two concurrent edits cannot both win.
	query := s.db.Model(&models.ServiceRequest{}).
		Where("id = ? AND status = ?", requestID, models.StatusPending)
	if edit.UpdatedAt != nil {
		query = query.Where("updated_at = ?", *edit.UpdatedAt)
	}
	result := query.Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if fresh, err := s.load(requestID); err == nil && fresh.Status != models.StatusPending {
			return nil, types.NewForbiddenError("request can only be edited while pending, current status is '%s'", fresh.Status)
		}
		return nil, types.NewStaleEditError()
	}

	return s.load(requestID)
}

// Transition moves a request to the target status on behalf of actor,
// enforcing the transition table and notifying the counterpart party.
func (s *JobService) Transition(actor models.User, requestID uint, target models.ServiceRequestStatus) (*models.ServiceRequest, error) {
	if !target.Known() {
		return nil, types.NewValidationError("unknown status %q", target)
	}

	request, err := s.load(requestID)
	if err != nil {
		return nil, err
	}

	if err := s.checkAuthority(actor, request, target); err != nil {
		return nil, err
	}

	if !TransitionAllowed(actor.Role, request.Status, target) {
		return nil, types.NewStatusConflictError(string(request.Status), string(target))
	}

	// A taken request always has an assigned provider, so the admin escape
	// hatch may not set the status without one.
	if actor.IsAdmin() && target == models.StatusTaken && request.AssignedProviderID == nil {
		return nil, types.NewValidationError("cannot set status 'taken' on a request with no assigned provider")
	}

	if err := s.applyTransition(actor, request, target); err != nil {
		return nil, err
	}

	s.notifyTransition(actor, request, target)

	log.Printf("🔁 Request %d: %s → %s by %s %d", requestID, request.Status, target, actor.Role, actor.ID)
	return s.load(requestID)
}

// checkAuthority rejects actors that are neither the assigned provider, the
// owning customer, nor an admin. Provider take attempts are left to the
// transition table, which is where an unrelated provider claims a pending
// request and where a late claimer is told which status beat them.
func (s *JobService) checkAuthority(actor models.User, request *models.ServiceRequest, target models.ServiceRequestStatus) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleProvider:
		// Take attempts always reach the transition table, so a rival
		// arriving after the claim sees a status conflict naming the status
		// that won, not a forbidden error.
		if target == models.StatusTaken {
			return nil
		}
		if request.AssignedProviderID == nil || *request.AssignedProviderID != actor.ID {
			return types.NewForbiddenError("you are not the assigned provider of this request")
		}
		return nil
	case models.RoleCustomer:
		if request.CustomerID != actor.ID {
			return types.NewForbiddenError("you are not the owner of this request")
		}
		return nil
	default:
		return types.NewForbiddenError("unknown role %q", actor.Role)
	}
}

// applyTransition performs the conditional write. The WHERE clause re-checks
// the status read above (and, for a take, that nobody got assigned first) so
// two racing actors are serialized at the storage layer: exactly one update
// matches, the other sees zero rows and gets a ConflictError.
func (s *JobService) applyTransition(actor models.User, request *models.ServiceRequest, target models.ServiceRequestStatus) error {
	updates := map[string]interface{}{
		"status":     target,
		"updated_at": time.Now(),
	}

	query := s.db.Model(&models.ServiceRequest{}).
		Where("id = ? AND status = ?", request.ID, request.Status)

	if target == models.StatusTaken && request.Status == models.StatusPending && actor.IsProvider() {
		query = query.Where("assigned_provider_id IS NULL")
		updates["assigned_provider_id"] = actor.ID
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		current := request.Status
		if fresh, err := s.load(request.ID); err == nil {
			current = fresh.Status
		}
		return types.NewStatusConflictError(string(current), string(target))
	}
	return nil
}

// notifyTransition enqueues the best-effort side effect: the counterpart
// party on normal transitions, both parties on an admin override.
func (s *JobService) notifyTransition(actor models.User, request *models.ServiceRequest, target models.ServiceRequestStatus) {
	payload := map[string]interface{}{
		"request_id": request.ID,
		"new_status": string(target),
		"actor_id":   actor.ID,
		"actor_role": string(actor.Role),
	}

	assignedProvider := request.AssignedProviderID
	if assignedProvider == nil && target == models.StatusTaken && actor.IsProvider() {
		id := actor.ID
		assignedProvider = &id
	}

	switch actor.Role {
	case models.RoleProvider:
		s.notifier.Enqueue(request.CustomerID, models.NotificationStatusChange, payload)
	case models.RoleCustomer:
		if assignedProvider != nil {
			s.notifier.Enqueue(*assignedProvider, models.NotificationStatusChange, payload)
		}
	case models.RoleAdmin:
		s.notifier.Enqueue(request.CustomerID, models.NotificationStatusChange, payload)
		if assignedProvider != nil {
			s.notifier.Enqueue(*assignedProvider, models.NotificationStatusChange, payload)
		}
	}
}

func (s *JobService) load(requestID uint) (*models.ServiceRequest, error) {
	var request models.ServiceRequest
	err := s.db.Preload("Customer").Preload("AssignedProvider").First(&request, requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Entity: "service request", ID: requestID}
		}
		return nil, err
	}
	return &request, nil
}

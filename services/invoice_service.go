package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"repairconnect-server/models"
	"repairconnect-server/types"
)

// InvoiceService owns the billing ledger attached to completed jobs.
type InvoiceService struct {
	db       *gorm.DB
	notifier *Notifier
}

func NewInvoiceService(db *gorm.DB, notifier *Notifier) *InvoiceService {
	return &InvoiceService{db: db, notifier: notifier}
}

// Create issues an invoice against a done request. Only the assigned
// provider may invoice, the amount must be positive, and the parent request
// must currently be done. Several invoices per request are allowed.
func (s *InvoiceService) Create(actor models.User, requestID uint, in models.InvoiceCreate) (*models.Invoice, error) {
	if in.Amount == nil || *in.Amount <= 0 {
		return nil, types.NewValidationError("amount must be a positive number")
	}

	var request models.ServiceRequest
	if err := s.db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Entity: "service request", ID: requestID}
		}
		return nil, err
	}

	if request.AssignedProviderID == nil || *request.AssignedProviderID != actor.ID {
		return nil, types.NewForbiddenError("only the assigned provider may invoice this request")
	}
	if request.Status != models.StatusDone {
		return nil, &types.ConflictError{
			Message:         "invoices can only be created for completed jobs",
			CurrentStatus:   string(request.Status),
			RequestedStatus: string(models.StatusDone),
		}
	}

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	invoice := models.Invoice{
		ServiceRequestID: request.ID,
		ProviderID:       *request.AssignedProviderID,
		CustomerID:       request.CustomerID,
		Amount:           *in.Amount,
		Currency:         currency,
		Notes:            in.Notes,
	}

	if err := s.db.Create(&invoice).Error; err != nil {
		return nil, err
	}

	s.notifier.Enqueue(invoice.CustomerID, models.NotificationInvoice, map[string]interface{}{
		"invoice_id": invoice.ID,
		"request_id": invoice.ServiceRequestID,
		"amount":     invoice.Amount,
		"currency":   invoice.Currency,
	})

	log.Printf("🧾 Invoice %d (%.2f %s) created for request %d by provider %d",
		invoice.ID, invoice.Amount, invoice.Currency, request.ID, actor.ID)
	return &invoice, nil
}

// MarkPaid flips an invoice to paid exactly once. actor may be the invoice's
// customer, its provider, or an admin; a nil actor is the payment gateway
// callback, which has already been authenticated by signature. Marking an
// already-paid invoice is a conflict; paid_at is set once and never changes.
func (s *InvoiceService) MarkPaid(actor *models.User, invoiceID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := s.db.First(&invoice, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Entity: "invoice", ID: invoiceID}
		}
		return nil, err
	}

	if actor != nil && !actor.IsAdmin() && actor.ID != invoice.CustomerID && actor.ID != invoice.ProviderID {
		return nil, types.NewForbiddenError("you are not a party to this invoice")
	}

	// Conditional update keeps mark-paid idempotence under concurrency: of
	// two simultaneous calls only one matches paid = false.
	now := time.Now()
	result := s.db.Model(&models.Invoice{}).
		Where("id = ? AND paid = ?", invoiceID, false).
		Updates(map[string]interface{}{"paid": true, "paid_at": now})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, &types.ConflictError{Message: "invoice is already paid"}
	}

	invoice.Paid = true
	invoice.PaidAt = &now

	s.notifier.Enqueue(invoice.ProviderID, models.NotificationInvoicePaid, map[string]interface{}{
		"invoice_id": invoice.ID,
		"request_id": invoice.ServiceRequestID,
		"amount":     invoice.Amount,
	})

	log.Printf("💰 Invoice %d marked paid", invoice.ID)
	return &invoice, nil
}

// List returns invoices scoped to the actor's role: providers the ones they
// issued, customers the ones addressed to them, admins all.
func (s *InvoiceService) List(actor models.User) ([]models.Invoice, error) {
	query := s.db.Order("created_at DESC")

	switch actor.Role {
	case models.RoleProvider:
		query = query.Where("provider_id = ?", actor.ID)
	case models.RoleCustomer:
		query = query.Where("customer_id = ?", actor.ID)
	case models.RoleAdmin:
		// no filter
	default:
		return nil, types.NewForbiddenError("unknown role %q", actor.Role)
	}

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Get returns an invoice visible to the actor.
func (s *InvoiceService) Get(actor models.User, invoiceID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := s.db.First(&invoice, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Entity: "invoice", ID: invoiceID}
		}
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != invoice.CustomerID && actor.ID != invoice.ProviderID {
		return nil, types.NewForbiddenError("you are not a party to this invoice")
	}
	return &invoice, nil
}

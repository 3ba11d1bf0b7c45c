package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"repairconnect-server/config"
	"repairconnect-server/models"
	"repairconnect-server/types"
)

// PaymentGateway is the capability interface for the external checkout
// collaborator. One implementation is selected at startup so the workflow
// never branches on whether a gateway is configured.
type PaymentGateway interface {
	Name() string
	CreateCheckout(ctx context.Context, invoice *models.Invoice) (string, error)
	VerifyCallback(payload []byte, signature string) bool
}

// NewPaymentGateway picks the gateway implementation from configuration:
// the real HTTP adapter when a gateway URL is set, the debug adapter only
// when explicitly flagged, otherwise a stub that reports checkout as
// unavailable.
func NewPaymentGateway(cfg config.PaymentConfig) PaymentGateway {
	if cfg.GatewayURL != "" {
		log.Printf("💳 Payment gateway enabled: %s", cfg.GatewayURL)
		return &externalGateway{
			url:    cfg.GatewayURL,
			secret: cfg.Secret,
			client: &http.Client{Timeout: 10 * time.Second},
		}
	}
	if cfg.Debug {
		log.Println("💳 Payment gateway in DEBUG mode, checkout links mark invoices paid directly")
		return newDebugGateway(cfg.DebugSecret)
	}
	log.Println("💳 No payment gateway configured, invoices must be marked paid manually")
	return &unavailableGateway{}
}

// externalGateway talks to the configured checkout endpoint. Calls are
// bounded by the client timeout; an unreachable gateway is a transient
// failure and never changes local state.
type externalGateway struct {
	url    string
	secret string
	client *http.Client
}

func (g *externalGateway) Name() string { return "external" }

func (g *externalGateway) CreateCheckout(ctx context.Context, invoice *models.Invoice) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"invoice_id": invoice.ID,
		"amount":     invoice.Amount,
		"currency":   invoice.Currency,
		"reference":  uuid.NewString(),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url+"/checkout", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &types.TransientError{Message: "payment gateway unreachable, try again or mark the invoice paid manually", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &types.TransientError{Message: "failed to read payment gateway response", Err: err}
	}
	if resp.StatusCode >= 400 {
		return "", &types.TransientError{
			Message: fmt.Sprintf("payment gateway returned %s, try again or mark the invoice paid manually", resp.Status),
		}
	}

	var parsed struct {
		CheckoutURL string `json:"checkout_url"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil || parsed.CheckoutURL == "" {
		return "", &types.TransientError{Message: "payment gateway returned an invalid response", Err: err}
	}

	return parsed.CheckoutURL, nil
}

// VerifyCallback checks the HMAC-SHA256 signature over the raw callback
// body. An unverifiable callback must be rejected, never applied.
func (g *externalGateway) VerifyCallback(payload []byte, signature string) bool {
	if g.secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// debugGateway hands out one-shot local links that mark the invoice paid
// directly. Only reachable when PAYMENT_DEBUG=true; an optional shared
// secret gates redemption on top of the flag.
type debugGateway struct {
	secret string
	mu     sync.Mutex
	tokens map[string]uint // token -> invoice id
}

func newDebugGateway(secret string) *debugGateway {
	return &debugGateway{secret: secret, tokens: make(map[string]uint)}
}

func (g *debugGateway) Name() string { return "debug" }

func (g *debugGateway) CreateCheckout(_ context.Context, invoice *models.Invoice) (string, error) {
	token := uuid.NewString()
	g.mu.Lock()
	g.tokens[token] = invoice.ID
	g.mu.Unlock()

	url := "/payments/debug/" + token
	if g.secret != "" {
		url += "?key=" + g.secret
	}
	return url, nil
}

func (g *debugGateway) VerifyCallback([]byte, string) bool { return false }

// redeem consumes a debug token, returning the invoice it belongs to.
func (g *debugGateway) redeem(token, key string) (uint, error) {
	if g.secret != "" && key != g.secret {
		return 0, types.NewForbiddenError("invalid debug payment key")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	invoiceID, ok := g.tokens[token]
	if !ok {
		return 0, &types.NotFoundError{Entity: "debug payment token"}
	}
	delete(g.tokens, token)
	return invoiceID, nil
}

// unavailableGateway is the default when nothing is configured. Checkout is
// refused with an explicit fallback instruction; callbacks never verify.
type unavailableGateway struct{}

func (g *unavailableGateway) Name() string { return "unavailable" }

func (g *unavailableGateway) CreateCheckout(context.Context, *models.Invoice) (string, error) {
	return "", &types.TransientError{
		Message: "no payment gateway is configured, mark the invoice paid manually once payment is received",
	}
}

func (g *unavailableGateway) VerifyCallback([]byte, string) bool { return false }

// PaymentService glues the gateway to the invoice ledger.
type PaymentService struct {
	gateway  PaymentGateway
	invoices *InvoiceService
}

func NewPaymentService(gateway PaymentGateway, invoices *InvoiceService) *PaymentService {
	return &PaymentService{gateway: gateway, invoices: invoices}
}

func (s *PaymentService) GatewayName() string {
	return s.gateway.Name()
}

// CreateCheckout validates the requester is a party to the invoice (or an
// admin) and returns an opaque redirect URL from the gateway.
func (s *PaymentService) CreateCheckout(ctx context.Context, actor models.User, invoiceID uint) (string, error) {
	invoice, err := s.invoices.Get(actor, invoiceID)
	if err != nil {
		return "", err
	}
	if invoice.Paid {
		return "", &types.ConflictError{Message: "invoice is already paid"}
	}
	return s.gateway.CreateCheckout(ctx, invoice)
}

// HandleCallback applies an authenticated gateway completion event. The
// signature is verified over the raw body before any state changes; the
// mark-paid path is the same one customers use, so idempotence holds.
func (s *PaymentService) HandleCallback(payload []byte, signature string) (*models.Invoice, error) {
	if !s.gateway.VerifyCallback(payload, signature) {
		return nil, types.NewForbiddenError("callback signature verification failed")
	}

	var event struct {
		InvoiceID uint `json:"invoice_id"`
	}
	if err := json.Unmarshal(payload, &event); err != nil || event.InvoiceID == 0 {
		return nil, types.NewValidationError("callback payload is missing invoice_id")
	}

	return s.invoices.MarkPaid(nil, event.InvoiceID)
}

// RedeemDebugCheckout marks an invoice paid through a debug link. Refused
// outright unless the debug gateway is the active implementation.
func (s *PaymentService) RedeemDebugCheckout(token, key string) (*models.Invoice, error) {
	debug, ok := s.gateway.(*debugGateway)
	if !ok {
		return nil, types.NewForbiddenError("debug payments are disabled")
	}
	invoiceID, err := debug.redeem(token, key)
	if err != nil {
		return nil, err
	}
	return s.invoices.MarkPaid(nil, invoiceID)
}

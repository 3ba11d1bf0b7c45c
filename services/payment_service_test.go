package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairconnect-server/config"
	"repairconnect-server/models"
	"repairconnect-server/types"
)

func testInvoice() *models.Invoice {
	return &models.Invoice{ID: 42, ServiceRequestID: 7, Amount: 120.50, Currency: "USD"}
}

func TestNewPaymentGatewaySelection(t *testing.T) {
	external := NewPaymentGateway(config.PaymentConfig{GatewayURL: "https://pay.example.com"})
	assert.Equal(t, "external", external.Name())

	debug := NewPaymentGateway(config.PaymentConfig{Debug: true})
	assert.Equal(t, "debug", debug.Name())

	// The URL wins over the debug flag
	both := NewPaymentGateway(config.PaymentConfig{GatewayURL: "https://pay.example.com", Debug: true})
	assert.Equal(t, "external", both.Name())

	none := NewPaymentGateway(config.PaymentConfig{})
	assert.Equal(t, "unavailable", none.Name())
}

func TestExternalGatewayCreateCheckout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"checkout_url": "https://pay.example.com/c/abc123"}`))
	}))
	defer server.Close()

	gateway := &externalGateway{url: server.URL, client: server.Client()}

	url, err := gateway.CreateCheckout(context.Background(), testInvoice())
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/c/abc123", url)
}

func TestExternalGatewayCreateCheckoutGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	gateway := &externalGateway{url: server.URL, client: server.Client()}

	_, err := gateway.CreateCheckout(context.Background(), testInvoice())
	var transient *types.TransientError
	require.ErrorAs(t, err, &transient)
}

func TestExternalGatewayCreateCheckoutUnreachable(t *testing.T) {
	gateway := &externalGateway{
		url:    "http://127.0.0.1:1",
		client: &http.Client{Timeout: 500 * time.Millisecond},
	}

	_, err := gateway.CreateCheckout(context.Background(), testInvoice())
	var transient *types.TransientError
	require.ErrorAs(t, err, &transient)
}

func TestExternalGatewayCreateCheckoutBadResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	gateway := &externalGateway{url: server.URL, client: server.Client()}

	_, err := gateway.CreateCheckout(context.Background(), testInvoice())
	var transient *types.TransientError
	require.ErrorAs(t, err, &transient)
}

func TestExternalGatewayVerifyCallback(t *testing.T) {
	secret := "callback-secret"
	gateway := &externalGateway{secret: secret}

	payload := []byte(`{"invoice_id": 42, "status": "paid"}`)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, gateway.VerifyCallback(payload, signature))
	assert.False(t, gateway.VerifyCallback(payload, "deadbeef"))
	assert.False(t, gateway.VerifyCallback([]byte(`tampered`), signature))
	assert.False(t, gateway.VerifyCallback(payload, ""))

	// No secret configured means nothing ever verifies
	unsigned := &externalGateway{}
	assert.False(t, unsigned.VerifyCallback(payload, signature))
}

func TestDebugGatewayRedeem(t *testing.T) {
	gateway := newDebugGateway("")

	url, err := gateway.CreateCheckout(context.Background(), testInvoice())
	require.NoError(t, err)
	require.Contains(t, url, "/payments/debug/")

	token := url[len("/payments/debug/"):]

	invoiceID, err := gateway.redeem(token, "")
	require.NoError(t, err)
	assert.Equal(t, uint(42), invoiceID)

	// Tokens are one-shot
	_, err = gateway.redeem(token, "")
	var notFound *types.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDebugGatewayRedeemWithSecret(t *testing.T) {
	gateway := newDebugGateway("hunter2")

	url, err := gateway.CreateCheckout(context.Background(), testInvoice())
	require.NoError(t, err)
	assert.Contains(t, url, "?key=hunter2")

	token := url[len("/payments/debug/") : len(url)-len("?key=hunter2")]

	_, err = gateway.redeem(token, "wrong")
	var forbidden *types.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	invoiceID, err := gateway.redeem(token, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, uint(42), invoiceID)
}

func TestUnavailableGateway(t *testing.T) {
	gateway := &unavailableGateway{}

	_, err := gateway.CreateCheckout(context.Background(), testInvoice())
	var transient *types.TransientError
	require.ErrorAs(t, err, &transient)

	assert.False(t, gateway.VerifyCallback([]byte(`{}`), "sig"))
}

func TestPaymentServiceRejectsUnverifiedCallback(t *testing.T) {
	svc := NewPaymentService(&unavailableGateway{}, nil)

	_, err := svc.HandleCallback([]byte(`{"invoice_id": 42}`), "sig")
	var forbidden *types.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
}

func TestPaymentServiceCallbackRequiresInvoiceID(t *testing.T) {
	gateway := &externalGateway{secret: "s"}
	svc := NewPaymentService(gateway, nil)

	payload := []byte(`{"status": "paid"}`)
	mac := hmac.New(sha256.New, []byte("s"))
	mac.Write(payload)
	signature := hex.EncodeToString(mac.Sum(nil))

	_, err := svc.HandleCallback(payload, signature)
	var validation *types.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestPaymentServiceDebugRedeemDisabled(t *testing.T) {
	svc := NewPaymentService(&unavailableGateway{}, nil)

	_, err := svc.RedeemDebugCheckout("some-token", "")
	var forbidden *types.ForbiddenError
	require.True(t, errors.As(err, &forbidden))
}

package routes

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// paymentCallback receives the gateway's asynchronous completion event.
// The signature is verified over the raw body before anything changes; an
// unverifiable callback is rejected, never applied.
func paymentCallback(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Failed to read callback body"})
		return
	}

	signature := c.GetHeader("X-Payment-Signature")

	invoice, err := svc.Payments.HandleCallback(payload, signature)
	if err != nil {
		log.Printf("⚠️ Payment callback rejected: %v", err)
		respondError(c, err)
		return
	}

	log.Printf("💰 Payment callback settled invoice %d", invoice.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "invoice_id": invoice.ID})
}

// redeemDebugPayment settles an invoice through a debug checkout link.
// Only works when the debug gateway is active; refused outright otherwise.
func redeemDebugPayment(c *gin.Context) {
	token := c.Param("token")
	key := c.Query("key")

	invoice, err := svc.Payments.RedeemDebugCheckout(token, key)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Invoice marked as paid (debug)",
		"invoice": invoice,
	})
}

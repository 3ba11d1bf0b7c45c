package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"repairconnect-server/middleware"
)

// listInvoices returns invoices scoped to the caller's role
func listInvoices(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	invoices, err := svc.Invoices.List(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"invoices":    invoices,
		"total_count": len(invoices),
	})
}

// payInvoice marks an invoice paid manually (customer confirmation,
// provider confirmation, or admin)
func payInvoice(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	invoice, err := svc.Invoices.MarkPaid(&user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Invoice marked as paid",
		"invoice": invoice,
	})
}

// createCheckout asks the payment gateway for a redirect URL for an invoice
func createCheckout(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	url, err := svc.Payments.CreateCheckout(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"checkout_url": url,
		"gateway":      svc.Payments.GatewayName(),
	})
}

package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"repairconnect-server/middleware"
)

// customerDashboard bundles the customer's requests and the invoices
// addressed to them.
func customerDashboard(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	requests, err := svc.Jobs.ListMine(user)
	if err != nil {
		respondError(c, err)
		return
	}

	invoices, err := svc.Invoices.List(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"service_requests": requests,
		"invoices":         invoices,
	})
}
